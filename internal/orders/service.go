package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/internal/goods"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/money"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
	"github.com/xht-dev/wholesale-backend/pkg/units"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerLoader interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
}

// Service manages the order lifecycle short of settlement; completing an
// order is the settlement coordinator's job.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateOrderInput) (*models.Order, error)
	Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	Get(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, int64, error)
}

// CreateOrderInput is a cart submission. Item prices are never taken from
// the client; they are snapshotted from the goods records.
type CreateOrderInput struct {
	CustomerID    uuid.UUID
	OrderType     enums.OrderType
	PaymentMethod enums.PaymentMethod
	Remark        string
	Items         []OrderItemInput
}

// OrderItemInput is one requested goods line.
type OrderItemInput struct {
	GoodsID    uuid.UUID
	CountBig   int
	CountSmall int
}

type service struct {
	tx        txRunner
	repo      Repository
	goodsRepo goods.Repository
	customers customerLoader
	now       func() time.Time
}

// NewService builds the orders service.
func NewService(tx txRunner, repo Repository, goodsRepo goods.Repository, customers customerLoader) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if goodsRepo == nil {
		return nil, fmt.Errorf("goods repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		goodsRepo: goodsRepo,
		customers: customers,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order contains no items")
	}
	if input.OrderType == "" {
		input.OrderType = enums.OrderTypeCustomer
	}
	if !input.OrderType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order type %q", input.OrderType))
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	if _, err := s.customers.FindByID(ctx, tenantID, input.CustomerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		goodsRepo := s.goodsRepo.WithTx(tx)

		items := make([]models.OrderItem, 0, len(input.Items))
		var totalCents int64
		for _, line := range input.Items {
			item, err := s.buildLine(ctx, goodsRepo, tenantID, line)
			if err != nil {
				return err
			}
			items = append(items, *item)
			totalCents += item.SubtotalCents
		}

		order = &models.Order{
			ID:               uuid.New(),
			TenantID:         tenantID,
			CustomerID:       input.CustomerID,
			OrderNo:          NewOrderNo(s.now()),
			OrderType:        input.OrderType,
			TotalAmountCents: totalCents,
			PaymentMethod:    input.PaymentMethod,
			Status:           enums.OrderStatusPending,
			Remark:           input.Remark,
			Items:            items,
		}
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) buildLine(ctx context.Context, goodsRepo goods.Repository, tenantID uuid.UUID, line OrderItemInput) (*models.OrderItem, error) {
	if line.CountBig < 0 || line.CountSmall < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item counts must be non-negative")
	}
	if line.CountBig == 0 && line.CountSmall == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item must order at least one unit")
	}

	item, err := goodsRepo.FindByID(ctx, tenantID, line.GoodsID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goods not found")
		}
		return nil, err
	}
	if !item.IsOnSale {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("goods %q is not on sale", item.Name))
	}
	if !item.IsMultiUnit && line.CountBig > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("goods %q has no big unit", item.Name))
	}

	needed := units.ToSmallest(line.CountBig, line.CountSmall, item.Rate)
	applied, err := goodsRepo.AdjustStock(ctx, tenantID, item.ID, -needed)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", item.Name))
	}

	snapshot := &models.OrderItem{
		ID:              uuid.New(),
		GoodsID:         item.ID,
		Name:            item.Name,
		IsMultiUnit:     item.IsMultiUnit,
		CountBig:        line.CountBig,
		CountSmall:      line.CountSmall,
		UnitBigName:     item.UnitBigName,
		UnitSmallName:   item.UnitSmallName,
		Rate:            units.EffectiveRate(item.Rate),
		PriceBigCents:   item.UnitBigPriceCents,
		PriceSmallCents: item.UnitSmallPriceCents,
	}
	snapshot.SubtotalCents = money.ItemSubtotal(snapshot.PriceBigCents, snapshot.CountBig, snapshot.PriceSmallCents, snapshot.CountSmall)
	return snapshot, nil
}

func (s *service) Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case enums.OrderStatusConfirmed:
		// Confirming twice is tolerated.
		return order, nil
	case enums.OrderStatusCompleted:
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyComplete, "order already completed")
	case enums.OrderStatusCancelled:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled order cannot be confirmed")
	}

	updated, err := s.repo.UpdateStatus(ctx, tenantID, orderID, enums.OrderStatusPending, enums.OrderStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
	}
	return s.Get(ctx, tenantID, orderID)
}

func (s *service) Cancel(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case enums.OrderStatusCompleted:
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyComplete, "order already completed")
	case enums.OrderStatusCancelled, enums.OrderStatusConfirmed:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s, only pending orders can be cancelled", order.Status))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := s.repo.WithTx(tx).UpdateStatus(ctx, tenantID, orderID, enums.OrderStatusPending, enums.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
		}

		goodsRepo := s.goodsRepo.WithTx(tx)
		for _, item := range order.Items {
			restore := units.ToSmallest(item.CountBig, item.CountSmall, item.Rate)
			if restore == 0 {
				continue
			}
			if _, err := goodsRepo.AdjustStock(ctx, tenantID, item.GoodsID, restore); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, orderID)
}

func (s *service) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, int64, error) {
	if tenantID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	return s.repo.List(ctx, tenantID, filter, params)
}
