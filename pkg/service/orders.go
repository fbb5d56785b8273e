package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/rostishop/pkg/errs"
	"github.com/example/rostishop/pkg/events"
	"github.com/example/rostishop/pkg/models"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

type OrderService struct {
	orders       OrderStore
	events       EventPublisher
	logger       *zap.Logger
	cancelWindow time.Duration
	listLimit    int64

	// now is swapped out in tests to drive the cancellation window.
	now func() time.Time
}

func NewOrderService(orders OrderStore, publisher EventPublisher, logger *zap.Logger, cancelWindow time.Duration, listLimit int64) *OrderService {
	if cancelWindow <= 0 {
		cancelWindow = 10 * time.Minute
	}
	return &OrderService{
		orders:       orders,
		events:       publisher,
		logger:       logger,
		cancelWindow: cancelWindow,
		listLimit:    listLimit,
		now:          nowUTC,
	}
}

// CreateOrderInput is the checkout payload. Email is optional: guests check
// out with just contact details, authenticated users get their account email
// attached by the handler.
type CreateOrderInput struct {
	CustomerName string
	Email        string
	Phone        string
	Address      string
	Note         string
	Items        []models.OrderItem
}

// Create recomputes the total from the item snapshots; any client-supplied
// total is ignored.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, errs.Validation("order must contain at least one item")
	}
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.Phone) == "" || strings.TrimSpace(in.Address) == "" {
		return nil, errs.Validation("customer name, phone and address are required")
	}

	var total float64
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, errs.Validation("item quantity must be positive")
		}
		if item.UnitPrice < 0 {
			return nil, errs.Validation("item price must not be negative")
		}
		total += item.UnitPrice * float64(item.Quantity)
	}

	now := s.now()
	order, err := s.orders.Insert(ctx, &models.Order{
		UserEmail:    in.Email,
		CustomerName: in.CustomerName,
		Phone:        in.Phone,
		Address:      in.Address,
		Note:         in.Note,
		Items:        in.Items,
		Total:        total,
		Status:       models.OrderStatusPending,
		CreatedAt:    now,
		CancelUntil:  now.Add(s.cancelWindow),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.Hex()),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))
	s.publish(order, events.EventOrderCreated)

	return order, nil
}

// Cancel is the customer-initiated transition to canceled. The final write is
// conditioned on the status still being cancelable, so a concurrent admin
// update and a cancel cannot both win.
func (s *OrderService) Cancel(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, errs.Conflict("order is already " + string(order.Status))
	}
	if s.now().After(order.CancelUntil) {
		return nil, errs.Forbidden("cancellation window has closed")
	}

	canceled, err := s.orders.UpdateStatus(ctx, id, models.NonTerminalStatuses(), models.OrderStatusCanceled)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order canceled", zap.String("order_id", id))
	s.publish(canceled, events.EventStatusChanged)
	return canceled, nil
}

// SetStatus is the admin transition. Admins may move a status in any
// direction among the known values, but a terminal order stays terminal; the
// write carries the same non-terminal precondition as Cancel so a racing
// cancel and admin update cannot both succeed.
func (s *OrderService) SetStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, errs.Validation("unknown order status")
	}

	updated, err := s.orders.UpdateStatus(ctx, id, models.NonTerminalStatuses(), status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", id),
		zap.String("status", string(status)))
	s.publish(updated, events.EventStatusChanged)
	return updated, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *OrderService) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errs.Validation("email is required")
	}
	return s.orders.ListByEmail(ctx, email, s.listLimit)
}

func (s *OrderService) AdminList(ctx context.Context, status string) ([]models.Order, error) {
	filter := models.OrderStatus(status)
	if status != "" && !filter.Valid() {
		return nil, errs.Validation("unknown order status")
	}
	return s.orders.List(ctx, filter, s.listLimit)
}

func (s *OrderService) publish(order *models.Order, event string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(order.ID.Hex(), event, string(order.Status), order.Total); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("order_id", order.ID.Hex()),
			zap.String("event", event),
			zap.Error(err))
	}
}
