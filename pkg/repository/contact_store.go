package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/rostishop/pkg/errs"
	"github.com/example/rostishop/pkg/models"
)

type ContactStore struct {
	coll *mongo.Collection
}

func (s *ContactStore) Insert(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error) {
	res, err := s.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, errs.Internal("failed to store message", err)
	}

	created := *msg
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid
	}
	return &created, nil
}
