package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/rostishop/pkg/errs"
	"github.com/example/rostishop/pkg/models"
)

type OrderStore struct {
	coll *mongo.Collection
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) (*models.Order, error) {
	res, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return nil, errs.Internal("failed to create order", err)
	}

	created := *order
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid
	}
	return &created, nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("order not found")
		}
		return nil, errs.Internal("failed to load order", err)
	}
	return &order, nil
}

func (s *OrderStore) ListByEmail(ctx context.Context, email string, limit int64) ([]models.Order, error) {
	return s.list(ctx, bson.M{"user_email": email}, limit)
}

func (s *OrderStore) List(ctx context.Context, status models.OrderStatus, limit int64) ([]models.Order, error) {
	query := bson.M{}
	if status != "" {
		query["status"] = status
	}
	return s.list(ctx, query, limit)
}

func (s *OrderStore) list(ctx context.Context, query bson.M, limit int64) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errs.Internal("failed to list orders", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, errs.Internal("failed to decode orders", err)
	}
	return orders, nil
}

// UpdateStatus transitions an order to the given status. When from is
// non-empty, the write is conditioned on the current status still being one
// of those values at write time, so concurrent writers targeting the same
// order cannot both succeed: the loser sees the precondition miss and gets a
// conflict back.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err = s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"status": to}}, opts).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.Internal("failed to update order status", err)
	}

	// Precondition miss or missing document; look again to tell them apart.
	if cerr := s.coll.FindOne(ctx, bson.M{"_id": oid}).Err(); cerr == nil {
		return nil, errs.Conflict("order state no longer allows this transition")
	} else if !errors.Is(cerr, mongo.ErrNoDocuments) {
		return nil, errs.Internal("failed to update order status", cerr)
	}
	return nil, errs.NotFound("order not found")
}
