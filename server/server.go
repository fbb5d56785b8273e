package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/rostishop/pkg/config"
	"github.com/example/rostishop/pkg/service"
)

// Pinger is implemented by the mongo and redis clients for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	auth     *service.AuthService
	orders   *service.OrderService
	products *service.ProductService
	contacts *service.ContactService
	mongo    Pinger
	redis    Pinger
}

func New(cfg *config.Config, logger *zap.Logger, auth *service.AuthService, orders *service.OrderService, products *service.ProductService, contacts *service.ContactService, mongo, redis Pinger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	router.Use(prometheusMiddleware())

	return &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		auth:     auth,
		orders:   orders,
		products: products,
		contacts: contacts,
		mongo:    mongo,
		redis:    redis,
	}
}

func (s *Server) SetupRoutes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.GET("/me", s.requireAuth(), s.me)

		admin := auth.Group("/admin", s.requireAuth(), s.requireAdmin())
		{
			admin.GET("/users", s.listUsers)
			admin.PATCH("/users/:id/role", s.changeRole)
		}
	}

	products := s.router.Group("/products")
	{
		products.GET("", s.listProducts)
		products.GET("/:id", s.getProduct)
		products.GET("/admin/list", s.requireAuth(), s.requireAdmin(), s.adminListProducts)
		products.POST("", s.requireAuth(), s.requireAdmin(), s.createProduct)
		products.PUT("/:id", s.requireAuth(), s.requireAdmin(), s.updateProduct)
		products.DELETE("/:id", s.requireAuth(), s.requireAdmin(), s.deleteProduct)
	}

	orders := s.router.Group("/orders")
	{
		orders.POST("", s.createOrder)
		orders.GET("", s.listOrdersByEmail)
		orders.GET("/:id", s.getOrder)
		orders.PATCH("/:id/cancel", s.cancelOrder)

		admin := orders.Group("/admin", s.requireAuth(), s.requireAdmin())
		{
			admin.GET("/list", s.adminListOrders)
			admin.PATCH("/list/:id/status", s.adminSetOrderStatus)
		}
	}

	s.router.POST("/contact", s.submitContact)

	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("API server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine for httptest-based tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.mongo.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": err.Error()})
		return
	}

	status := gin.H{"status": "ok"}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			status["redis"] = "down"
		}
	}
	c.JSON(http.StatusOK, status)
}
