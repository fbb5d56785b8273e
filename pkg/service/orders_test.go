package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/rostishop/pkg/errs"
	"github.com/example/rostishop/pkg/events"
	"github.com/example/rostishop/pkg/models"
)

func newOrderService(store *fakeOrderStore, publisher EventPublisher) *OrderService {
	return NewOrderService(store, publisher, zap.NewNop(), 10*time.Minute, 100)
}

func checkoutInput(items []models.OrderItem) CreateOrderInput {
	return CreateOrderInput{
		CustomerName: "Maria Soto",
		Email:        "maria@example.com",
		Phone:        "+56911112222",
		Address:      "Av. Siempre Viva 742",
		Items:        items,
	}
}

func TestCreateOrderRecomputesTotal(t *testing.T) {
	svc := newOrderService(newFakeOrderStore(), nil)

	order, err := svc.Create(context.Background(), checkoutInput([]models.OrderItem{
		{ProductID: "p1", Name: "Pollo entero", UnitPrice: 1000, Quantity: 2},
		{ProductID: "p2", Name: "Papas", UnitPrice: 500, Quantity: 1},
	}))
	require.NoError(t, err)

	assert.Equal(t, 2500.0, order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.False(t, order.ID.IsZero())
	assert.Equal(t, order.CreatedAt.Add(10*time.Minute), order.CancelUntil)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newOrderService(newFakeOrderStore(), nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateOrderInput
	}{
		{"empty items", checkoutInput(nil)},
		{"zero quantity", checkoutInput([]models.OrderItem{{ProductID: "p1", Name: "x", UnitPrice: 100, Quantity: 0}})},
		{"negative price", checkoutInput([]models.OrderItem{{ProductID: "p1", Name: "x", UnitPrice: -5, Quantity: 1}})},
		{"missing address", func() CreateOrderInput {
			in := checkoutInput([]models.OrderItem{{ProductID: "p1", Name: "x", UnitPrice: 100, Quantity: 1}})
			in.Address = ""
			return in
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
		})
	}
}

func TestCancelWithinWindow(t *testing.T) {
	store := newFakeOrderStore()
	publisher := &fakePublisher{}
	svc := newOrderService(store, publisher)
	ctx := context.Background()

	order, err := svc.Create(ctx, checkoutInput([]models.OrderItem{
		{ProductID: "p1", Name: "x", UnitPrice: 100, Quantity: 1},
	}))
	require.NoError(t, err)

	canceled, err := svc.Cancel(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, canceled.Status)

	// Second cancel hits a terminal state.
	_, err = svc.Cancel(ctx, order.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, errs.CodeConflict, errs.CodeOf(err))

	require.Len(t, publisher.events, 2)
	assert.Equal(t, events.EventOrderCreated, publisher.events[0].Event)
	assert.Equal(t, events.EventStatusChanged, publisher.events[1].Event)
}

func TestCancelAfterWindowCloses(t *testing.T) {
	store := newFakeOrderStore()
	svc := newOrderService(store, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, checkoutInput([]models.OrderItem{
		{ProductID: "p1", Name: "x", UnitPrice: 100, Quantity: 1},
	}))
	require.NoError(t, err)

	svc.now = func() time.Time { return order.CreatedAt.Add(11 * time.Minute) }

	_, err = svc.Cancel(ctx, order.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, errs.CodeForbidden, errs.CodeOf(err))

	// The order is untouched and still pending.
	got, err := svc.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}

func TestCancelUnknownOrder(t *testing.T) {
	svc := newOrderService(newFakeOrderStore(), nil)

	_, err := svc.Cancel(context.Background(), "64f000000000000000000000")
	require.Error(t, err)
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))

	_, err = svc.Cancel(context.Background(), "not-an-id")
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
}

func TestCancelDeliveredOrder(t *testing.T) {
	store := newFakeOrderStore()
	svc := newOrderService(store, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, checkoutInput([]models.OrderItem{
		{ProductID: "p1", Name: "x", UnitPrice: 100, Quantity: 1},
	}))
	require.NoError(t, err)

	delivered, err := svc.SetStatus(ctx, order.ID.Hex(), models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, delivered.Status)

	_, err = svc.Cancel(ctx, order.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, errs.CodeConflict, errs.CodeOf(err))
}

func TestSetStatusValidation(t *testing.T) {
	store := newFakeOrderStore()
	svc := newOrderService(store, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, checkoutInput([]models.OrderItem{
		{ProductID: "p1", Name: "x", UnitPrice: 100, Quantity: 1},
	}))
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, order.ID.Hex(), models.OrderStatus("shipped-to-the-moon"))
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))

	// Admins may move backward among non-terminal states.
	_, err = svc.SetStatus(ctx, order.ID.Hex(), models.OrderStatusReady)
	require.NoError(t, err)
	back, err := svc.SetStatus(ctx, order.ID.Hex(), models.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, back.Status)
}

func TestConcurrentCancelAndAdminUpdate(t *testing.T) {
	store := newFakeOrderStore()
	svc := newOrderService(store, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, checkoutInput([]models.OrderItem{
		{ProductID: "p1", Name: "x", UnitPrice: 100, Quantity: 1},
	}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var cancelErr, adminErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = svc.Cancel(ctx, order.ID.Hex())
	}()
	go func() {
		defer wg.Done()
		_, adminErr = svc.SetStatus(ctx, order.ID.Hex(), models.OrderStatusDelivered)
	}()
	wg.Wait()

	// Exactly one mutation wins; the loser observes a conflict.
	if cancelErr == nil {
		require.Error(t, adminErr)
		assert.Equal(t, errs.CodeConflict, errs.CodeOf(adminErr))
		got, _ := svc.Get(ctx, order.ID.Hex())
		assert.Equal(t, models.OrderStatusCanceled, got.Status)
	} else {
		require.NoError(t, adminErr)
		assert.Equal(t, errs.CodeConflict, errs.CodeOf(cancelErr))
		got, _ := svc.Get(ctx, order.ID.Hex())
		assert.Equal(t, models.OrderStatusDelivered, got.Status)
	}
}

func TestAdminListStatusFilter(t *testing.T) {
	store := newFakeOrderStore()
	svc := newOrderService(store, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, checkoutInput([]models.OrderItem{
		{ProductID: "p1", Name: "x", UnitPrice: 100, Quantity: 1},
	}))
	require.NoError(t, err)
	_, err = svc.Create(ctx, checkoutInput([]models.OrderItem{
		{ProductID: "p2", Name: "y", UnitPrice: 200, Quantity: 1},
	}))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, first.ID.Hex())
	require.NoError(t, err)

	canceled, err := svc.AdminList(ctx, "canceled")
	require.NoError(t, err)
	require.Len(t, canceled, 1)
	assert.Equal(t, first.ID, canceled[0].ID)

	all, err := svc.AdminList(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.AdminList(ctx, "bogus")
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
}

func TestListByEmailRequiresEmail(t *testing.T) {
	svc := newOrderService(newFakeOrderStore(), nil)

	_, err := svc.ListByEmail(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
}
