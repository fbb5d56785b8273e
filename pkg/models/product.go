package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductUpdate carries the fields of an admin partial update; nil fields are
// left untouched.
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImageURL    *string  `json:"img,omitempty"`
	Stock       *int32   `json:"stock,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	ImageURL    string             `bson:"img_url" json:"img"`
	Stock       int32              `bson:"stock" json:"stock"`
	Active      bool               `bson:"active" json:"active"`
}
