package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/example/rostishop/pkg/errs"
	"github.com/example/rostishop/pkg/models"
	"github.com/example/rostishop/pkg/repository"
)

type ProductService struct {
	products ProductStore
	cache    ProductCache
	logger   *zap.Logger
}

func NewProductService(products ProductStore, cache ProductCache, logger *zap.Logger) *ProductService {
	return &ProductService{
		products: products,
		cache:    cache,
		logger:   logger,
	}
}

// List serves the public catalog: active products only, with optional exact
// category and case-insensitive search filters. Results are cached per filter.
func (s *ProductService) List(ctx context.Context, category, search string) ([]models.Product, error) {
	filter := repository.ProductFilter{
		ActiveOnly: true,
		Category:   category,
		Search:     search,
	}

	if s.cache != nil {
		if cached, err := s.cache.GetProducts(ctx, filter); err == nil {
			return cached, nil
		}
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, filter, products); err != nil {
			s.logger.Warn("failed to cache products", zap.Error(err))
		}
	}
	return products, nil
}

// AdminList includes inactive products and bypasses the cache.
func (s *ProductService) AdminList(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx, repository.ProductFilter{})
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if strings.TrimSpace(product.Name) == "" {
		return nil, errs.Validation("product name is required")
	}
	if product.Price <= 0 {
		return nil, errs.Validation("product price must be positive")
	}

	created, err := s.products.Insert(ctx, product)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	if upd.Price != nil && *upd.Price <= 0 {
		return nil, errs.Validation("product price must be positive")
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, errs.Validation("product name must not be empty")
	}

	updated, err := s.products.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProducts(ctx); err != nil {
		s.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}
