package service

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/example/rostishop/pkg/errs"
	"github.com/example/rostishop/pkg/models"
	"github.com/example/rostishop/pkg/repository"
)

// fakeUserStore enforces the same contracts as the mongo store: unique email
// on insert, taxonomy errors on miss.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by hex id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Insert(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, errs.Conflict("email already registered")
		}
	}
	stored := *user
	stored.ID = primitive.NewObjectID()
	f.users[stored.ID.Hex()] = &stored
	out := stored
	return &out, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, errs.NotFound("user not found")
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, errs.NotFound("user not found")
}

func (f *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateRole(_ context.Context, id string, role models.Role) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	u.Role = role
	u.IsAdmin = nil
	out := *u
	return &out, nil
}

// setRole mutates a stored record directly, simulating an out-of-band role
// change between token issuance and use.
func (f *fakeUserStore) setRole(email string, role models.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u.Role = role
		}
	}
}

// fakeOrderStore mirrors the mongo store's conditional-update semantics: the
// status precondition is checked under the same lock as the write.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*models.Order{}}
}

func (f *fakeOrderStore) Insert(_ context.Context, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *order
	stored.ID = primitive.NewObjectID()
	f.orders[stored.ID.Hex()] = &stored
	out := stored
	return &out, nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, errs.Validation("malformed id")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		out := *o
		return &out, nil
	}
	return nil, errs.NotFound("order not found")
}

func (f *fakeOrderStore) ListByEmail(_ context.Context, email string, _ int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if o.UserEmail == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) List(_ context.Context, status models.OrderStatus, _ int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id string, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, errs.Validation("malformed id")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, errs.NotFound("order not found")
	}
	if len(from) > 0 {
		allowed := false
		for _, s := range from {
			if o.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, errs.Conflict("order state no longer allows this transition")
		}
	}
	o.Status = to
	out := *o
	return &out, nil
}

type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[string]*models.Product{}}
}

func (f *fakeProductStore) List(_ context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductStore) FindByID(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		out := *p
		return &out, nil
	}
	return nil, errs.NotFound("product not found")
}

func (f *fakeProductStore) Insert(_ context.Context, product *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *product
	stored.ID = primitive.NewObjectID()
	f.products[stored.ID.Hex()] = &stored
	out := stored
	return &out, nil
}

func (f *fakeProductStore) Update(_ context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, errs.NotFound("product not found")
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Active != nil {
		p.Active = *upd.Active
	}
	out := *p
	return &out, nil
}

func (f *fakeProductStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return errs.NotFound("product not found")
	}
	delete(f.products, id)
	return nil
}

// fakeProductCache counts hits and invalidations.
type fakeProductCache struct {
	mu          sync.Mutex
	entries     map[string][]models.Product
	invalidated int
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{entries: map[string][]models.Product{}}
}

func cacheKey(filter repository.ProductFilter) string {
	return filter.Category + "|" + filter.Search
}

func (f *fakeProductCache) GetProducts(_ context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.entries[cacheKey(filter)]; ok {
		return v, nil
	}
	return nil, repository.ErrCacheMiss
}

func (f *fakeProductCache) SetProducts(_ context.Context, filter repository.ProductFilter, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[cacheKey(filter)] = products
	return nil
}

func (f *fakeProductCache) InvalidateProducts(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = map[string][]models.Product{}
	f.invalidated++
	return nil
}

type recordedEvent struct {
	OrderID string
	Event   string
	Status  string
	Total   float64
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakePublisher) PublishOrderEvent(orderID, event, status string, total float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{orderID, event, status, total})
	return nil
}
