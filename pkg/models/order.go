package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCanceled       OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// NonTerminalStatuses are the states a transition may still leave from. Both
// customer cancels and admin updates condition their writes on these, which
// is what guarantees a single winner when the two race on one order.
func NonTerminalStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending, OrderStatusPreparing,
		OrderStatusReady, OrderStatusOutForDelivery,
	}
}

// OrderItem is a snapshot of a product at checkout time. Later product price
// changes never affect existing orders.
type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
	Quantity  int32   `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserEmail    string             `bson:"user_email,omitempty" json:"user_email,omitempty"`
	CustomerName string             `bson:"customer_name" json:"customer_name"`
	Phone        string             `bson:"phone" json:"phone"`
	Address      string             `bson:"address" json:"address"`
	Note         string             `bson:"note,omitempty" json:"note,omitempty"`
	Items        []OrderItem        `bson:"items" json:"items"`
	Total        float64            `bson:"total" json:"total"`
	Status       OrderStatus        `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	CancelUntil  time.Time          `bson:"cancel_until" json:"cancel_until"`
}
