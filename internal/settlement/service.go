// Package settlement coordinates order completion with the debt ledger: one
// transaction closes the order and, for credit orders, posts the debt.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/internal/ledger"
	"github.com/xht-dev/wholesale-backend/internal/orders"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type debtPoster interface {
	PostDebt(ctx context.Context, tx *gorm.DB, input ledger.PostDebtInput) (*models.DebtLog, error)
}

// Service completes orders.
type Service interface {
	CompleteOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	tx     txRunner
	orders orders.Repository
	ledger debtPoster
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the settlement coordinator.
func NewService(tx txRunner, ordersRepo orders.Repository, ledgerSvc debtPoster, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:     tx,
		orders: ordersRepo,
		ledger: ledgerSvc,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) CompleteOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and order id required")
	}

	order, err := s.orders.FindByID(ctx, tenantID, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}

	switch {
	case order.Status == enums.OrderStatusCompleted:
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyComplete, "order already completed")
	case !order.Status.Completable():
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s and cannot be completed", order.Status))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		completed, err := s.orders.WithTx(tx).MarkCompleted(ctx, tenantID, orderID, s.now())
		if err != nil {
			return err
		}
		if !completed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
		}

		if order.PaymentMethod != enums.PaymentMethodCredit {
			return nil
		}

		_, err = s.ledger.PostDebt(ctx, tx, ledger.PostDebtInput{
			TenantID:    tenantID,
			CustomerID:  order.CustomerID,
			AmountCents: order.TotalAmountCents,
			Type:        enums.DebtLogTypeOrder,
			Source:      order.ID.String(),
			Remark:      "order debt: " + order.OrderNo,
		})
		return err
	})
	if err != nil {
		ctx = s.logg.WithTenantID(ctx, tenantID.String())
		s.logg.Error(s.logg.WithField(ctx, "order_no", order.OrderNo), "order settlement rolled back", err)
		return nil, err
	}

	return s.orders.FindByID(ctx, tenantID, orderID)
}
