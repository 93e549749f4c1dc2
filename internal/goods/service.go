package goods

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
	"github.com/xht-dev/wholesale-backend/pkg/units"
)

// Service manages a tenant's catalog.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, input UpsertGoodsInput) (*models.Goods, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input UpsertGoodsInput) (*models.Goods, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Goods, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Goods, int64, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ToggleOnSale(ctx context.Context, tenantID, id uuid.UUID, onSale bool) error
	// AdjustStock applies a stock delta given in big/small units.
	AdjustStock(ctx context.Context, tenantID, id uuid.UUID, big, small int) (*models.Goods, error)
	FormatStock(item *models.Goods) string
	CreateCategory(ctx context.Context, tenantID uuid.UUID, name string, sortOrder int) (*models.Category, error)
	ListCategories(ctx context.Context, tenantID uuid.UUID) ([]models.Category, error)
	DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error
}

// UpsertGoodsInput carries the merchant-editable goods fields. Prices arrive
// already converted to cents by the API layer.
type UpsertGoodsInput struct {
	CategoryID          *uuid.UUID
	Name                string
	ImgURL              string
	IsMultiUnit         bool
	UnitSmallName       string
	UnitSmallPriceCents int64
	UnitBigName         string
	UnitBigPriceCents   int64
	Rate                int
	IsOnSale            *bool
}

type service struct {
	repo Repository
}

// NewService wires a goods service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("goods repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) validate(input UpsertGoodsInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.UnitSmallName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "small unit name required")
	}
	if input.UnitSmallPriceCents < 0 || input.UnitBigPriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices must be non-negative")
	}
	if input.IsMultiUnit {
		if input.UnitBigName == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "big unit name required for multi-unit goods")
		}
		if input.Rate <= 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "rate must be greater than 1 for multi-unit goods")
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input UpsertGoodsInput) (*models.Goods, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	item := &models.Goods{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		CategoryID:          input.CategoryID,
		Name:                input.Name,
		ImgURL:              input.ImgURL,
		IsMultiUnit:         input.IsMultiUnit,
		UnitSmallName:       input.UnitSmallName,
		UnitSmallPriceCents: input.UnitSmallPriceCents,
		Rate:                1,
		IsOnSale:            true,
	}
	if input.IsMultiUnit {
		item.UnitBigName = input.UnitBigName
		item.UnitBigPriceCents = input.UnitBigPriceCents
		item.Rate = input.Rate
	}
	if input.IsOnSale != nil {
		item.IsOnSale = *input.IsOnSale
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, input UpsertGoodsInput) (*models.Goods, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	item, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	item.CategoryID = input.CategoryID
	item.Name = input.Name
	item.ImgURL = input.ImgURL
	item.IsMultiUnit = input.IsMultiUnit
	item.UnitSmallName = input.UnitSmallName
	item.UnitSmallPriceCents = input.UnitSmallPriceCents
	if input.IsMultiUnit {
		item.UnitBigName = input.UnitBigName
		item.UnitBigPriceCents = input.UnitBigPriceCents
		item.Rate = input.Rate
	} else {
		item.UnitBigName = ""
		item.UnitBigPriceCents = 0
		item.Rate = 1
	}
	if input.IsOnSale != nil {
		item.IsOnSale = *input.IsOnSale
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Goods, error) {
	item, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goods not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Goods, int64, error) {
	if tenantID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	return s.repo.List(ctx, tenantID, filter, params)
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "goods not found")
		}
		return err
	}
	return nil
}

func (s *service) ToggleOnSale(ctx context.Context, tenantID, id uuid.UUID, onSale bool) error {
	updated, err := s.repo.SetOnSale(ctx, tenantID, id, onSale)
	if err != nil {
		return err
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "goods not found")
	}
	return nil
}

func (s *service) AdjustStock(ctx context.Context, tenantID, id uuid.UUID, big, small int) (*models.Goods, error) {
	item, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	delta := units.ToSmallest(big, small, item.Rate)
	if delta == 0 {
		return item, nil
	}

	applied, err := s.repo.AdjustStock(ctx, tenantID, id, delta)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
	}
	return s.Get(ctx, tenantID, id)
}

func (s *service) FormatStock(item *models.Goods) string {
	return units.FormatStock(item.Stock, item.Rate, item.UnitBigName, item.UnitSmallName)
}

func (s *service) CreateCategory(ctx context.Context, tenantID uuid.UUID, name string, sortOrder int) (*models.Category, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	category := &models.Category{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		SortOrder: sortOrder,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]models.Category, error) {
	return s.repo.ListCategories(ctx, tenantID)
}

func (s *service) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, tenantID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return err
	}
	return nil
}
