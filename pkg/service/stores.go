package service

import (
	"context"

	"github.com/example/rostishop/pkg/models"
	"github.com/example/rostishop/pkg/repository"
)

// Store interfaces are satisfied by the mongo-backed types in pkg/repository;
// tests substitute in-memory fakes. Stores translate driver failures into the
// errs taxonomy so services never see raw driver errors.

type UserStore interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error)
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListByEmail(ctx context.Context, email string, limit int64) ([]models.Order, error)
	List(ctx context.Context, status models.OrderStatus, limit int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error)
}

type ProductStore interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Insert(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type ContactStore interface {
	Insert(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error)
}

// ProductCache is a read-through cache for public product listings. A nil
// cache disables caching.
type ProductCache interface {
	GetProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	SetProducts(ctx context.Context, filter repository.ProductFilter, products []models.Product) error
	InvalidateProducts(ctx context.Context) error
}

// EventPublisher emits order lifecycle events. A nil publisher disables
// eventing; publish failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishOrderEvent(orderID, event, status string, total float64) error
}
