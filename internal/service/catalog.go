package service

import (
	"context"

	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
)

// CatalogService wraps the brand, category, product and store
// repositories. Products must point at an existing brand and category.
type CatalogService struct {
	Brands     *repository.BrandRepo
	Categories *repository.CategoryRepo
	Products   *repository.ProductRepo
	Stores     *repository.StoreRepo
}

func NewCatalogService(brands *repository.BrandRepo, categories *repository.CategoryRepo,
	products *repository.ProductRepo, stores *repository.StoreRepo) *CatalogService {
	return &CatalogService{Brands: brands, Categories: categories, Products: products, Stores: stores}
}

func (s *CatalogService) checkProductRefs(ctx context.Context, p *model.Product) error {
	if _, err := s.Brands.GetByID(ctx, p.BrandID); err != nil {
		return pkgerrors.Wrapf(err, "brand %d", p.BrandID)
	}
	if _, err := s.Categories.GetByID(ctx, p.CategoryID); err != nil {
		return pkgerrors.Wrapf(err, "category %d", p.CategoryID)
	}
	if p.ListPrice.IsNegative() {
		return pkgerrors.Wrapf(ErrInvalidInput, "list price %s", p.ListPrice)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *model.Product) error {
	if err := s.checkProductRefs(ctx, p); err != nil {
		return err
	}
	return pkgerrors.Wrapf(s.Products.Create(ctx, p), "product %q", p.Name)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *model.Product) error {
	if _, err := s.Products.GetByID(ctx, p.ID); err != nil {
		return pkgerrors.Wrapf(err, "product %d", p.ID)
	}
	if err := s.checkProductRefs(ctx, p); err != nil {
		return err
	}
	return pkgerrors.Wrapf(s.Products.Update(ctx, p), "product %d", p.ID)
}
