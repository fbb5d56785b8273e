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

type ProductStore struct {
	coll *mongo.Collection
}

// ProductFilter narrows List results. Search is a case-insensitive substring
// match over name and description.
type ProductFilter struct {
	ActiveOnly bool
	Category   string
	Search     string
}

func (s *ProductStore) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["active"] = true
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}

	cursor, err := s.coll.Find(ctx, query)
	if err != nil {
		return nil, errs.Internal("failed to list products", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errs.Internal("failed to decode products", err)
	}
	return products, nil
}

func (s *ProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("product not found")
		}
		return nil, errs.Internal("failed to load product", err)
	}
	return &product, nil
}

func (s *ProductStore) Insert(ctx context.Context, product *models.Product) (*models.Product, error) {
	res, err := s.coll.InsertOne(ctx, product)
	if err != nil {
		return nil, errs.Internal("failed to create product", err)
	}

	created := *product
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid
	}
	return &created, nil
}

// Update applies a partial $set built from the non-nil fields of upd.
func (s *ProductStore) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.ImageURL != nil {
		set["img_url"] = *upd.ImageURL
	}
	if upd.Stock != nil {
		set["stock"] = *upd.Stock
	}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("product not found")
		}
		return nil, errs.Internal("failed to update product", err)
	}
	return &product, nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errs.Internal("failed to delete product", err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("product not found")
	}
	return nil
}
