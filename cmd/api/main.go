package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/rostishop/pkg/config"
	"github.com/example/rostishop/pkg/discovery"
	"github.com/example/rostishop/pkg/events"
	"github.com/example/rostishop/pkg/repository"
	"github.com/example/rostishop/pkg/service"
	"github.com/example/rostishop/pkg/token"
	"github.com/example/rostishop/server"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting API server",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	ctx := context.Background()

	// MongoDB
	mongo, err := repository.NewMongo(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongo.Close(shutdownCtx)
	}()

	if err := mongo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Redis cache
	redis := repository.NewRedisCache(&cfg.Redis)
	defer redis.Close()
	if err := redis.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed, product cache disabled", zap.Error(err))
	}

	// RabbitMQ order events
	var publisher service.EventPublisher
	rmq, err := events.NewPublisher(&cfg.RabbitMQ)
	if err != nil {
		logger.Warn("RabbitMQ connection failed, continuing without order events", zap.Error(err))
	} else {
		defer rmq.Close()
		if err := rmq.Setup(); err != nil {
			logger.Warn("Failed to declare RabbitMQ topology", zap.Error(err))
		} else {
			publisher = rmq
		}
	}

	// Token maker
	maker, err := token.NewMaker(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("Failed to create token maker", zap.Error(err))
	}

	// Services
	authSvc := service.NewAuthService(mongo.Users(), maker, logger)
	orderSvc := service.NewOrderService(mongo.Orders(), publisher, logger, cfg.Orders.CancelWindow, cfg.Orders.ListLimit)
	productSvc := service.NewProductService(mongo.Products(), redis, logger)
	contactSvc := service.NewContactService(mongo.Contacts())

	// Service discovery
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		sd = nil
	}

	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if sd != nil {
		if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		}
	}

	// HTTP server
	srv := server.New(cfg, logger, authSvc, orderSvc, productSvc, contactSvc, mongo, redis)
	srv.SetupRoutes()

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			srvErr <- err
		}
	}()

	logger.Info("API server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	if sd != nil {
		if err := sd.Deregister(ctx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}

	logger.Info("Server stopped")
}
