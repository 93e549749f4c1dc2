package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service posts entries to the customer debt ledger. The debt log is
// append-only and the customer's total_debt_cents cache always moves in the
// same transaction as the log insert.
type Service interface {
	// PostDebt records one ledger entry inside the caller-supplied transaction.
	PostDebt(ctx context.Context, tx *gorm.DB, input PostDebtInput) (*models.DebtLog, error)
	// PostRepayment records a manual repayment in its own transaction.
	PostRepayment(ctx context.Context, tenantID, customerID uuid.UUID, amountCents int64, remark string) (*models.DebtLog, error)
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, params pagination.Params) ([]models.DebtLog, int64, error)
}

// PostDebtInput captures the immutable data one ledger entry requires.
type PostDebtInput struct {
	TenantID    uuid.UUID
	CustomerID  uuid.UUID
	AmountCents int64
	Type        enums.DebtLogType
	Source      string
	Remark      string
}

type service struct {
	tx   txRunner
	repo Repository
	cfg  config.LedgerConfig
}

// NewService wires a ledger service with the provided repository.
func NewService(tx txRunner, repo Repository, cfg config.LedgerConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{tx: tx, repo: repo, cfg: cfg}, nil
}

func (s *service) PostDebt(ctx context.Context, tx *gorm.DB, input PostDebtInput) (*models.DebtLog, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid debt log type %q", input.Type))
	}
	if input.Source == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source required")
	}
	if input.AmountCents == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-zero")
	}

	repo := s.repo.WithTx(tx)

	guarded := s.cfg.EnforceCreditLimit && input.Type == enums.DebtLogTypeOrder && input.AmountCents > 0

	var (
		applied bool
		err     error
	)
	if guarded {
		applied, err = repo.AdjustCustomerDebtWithinLimit(ctx, input.TenantID, input.CustomerID, input.AmountCents)
	} else {
		applied, err = repo.AdjustCustomerDebt(ctx, input.TenantID, input.CustomerID, input.AmountCents)
	}
	if err != nil {
		return nil, err
	}
	if !applied {
		// Distinguish a missing customer from a rejected guard.
		customer, loadErr := repo.GetCustomer(ctx, input.TenantID, input.CustomerID)
		if loadErr == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, pkgerrors.New(pkgerrors.CodeCreditLimit, "credit limit exceeded").WithDetails(map[string]int64{
			"total_debt_cents":   customer.TotalDebtCents,
			"credit_limit_cents": customer.CreditLimitCents,
			"amount_cents":       input.AmountCents,
		})
	}

	entry := &models.DebtLog{
		ID:          uuid.New(),
		TenantID:    input.TenantID,
		CustomerID:  input.CustomerID,
		AmountCents: input.AmountCents,
		Type:        input.Type,
		Source:      input.Source,
		Remark:      input.Remark,
	}
	if err := repo.CreateLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) PostRepayment(ctx context.Context, tenantID, customerID uuid.UUID, amountCents int64, remark string) (*models.DebtLog, error) {
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "repayment amount must be positive")
	}

	var entry *models.DebtLog
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.PostDebt(ctx, tx, PostDebtInput{
			TenantID:    tenantID,
			CustomerID:  customerID,
			AmountCents: -amountCents,
			Type:        enums.DebtLogTypeRepayment,
			Source:      enums.DebtLogSourceManual,
			Remark:      remark,
		})
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, params pagination.Params) ([]models.DebtLog, int64, error) {
	if tenantID == uuid.Nil || customerID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "tenant and customer id required")
	}
	return s.repo.ListByCustomer(ctx, tenantID, customerID, params)
}
