package customers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/internal/ledger"
	"github.com/xht-dev/wholesale-backend/pkg/db"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

const recentDebtLogCount = 10

// CustomerDetail bundles a customer with their most recent ledger activity.
type CustomerDetail struct {
	Customer models.Customer  `json:"customer"`
	DebtLogs []models.DebtLog `json:"debt_logs"`
}

// Service manages a tenant's customer book.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, input UpsertCustomerInput) (*models.Customer, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input UpsertCustomerInput) (*models.Customer, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Detail(ctx context.Context, tenantID, id uuid.UUID) (*CustomerDetail, error)
	List(ctx context.Context, tenantID uuid.UUID, keyword string, params pagination.Params) ([]models.Customer, int64, error)
	// Delete refuses while the customer still carries debt (or credit).
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Repay(ctx context.Context, tenantID, id uuid.UUID, amountCents int64, remark string) (*models.DebtLog, error)
}

// UpsertCustomerInput carries the merchant-editable customer fields.
type UpsertCustomerInput struct {
	Alias            string
	Phone            string
	Address          string
	Remark           string
	CreditLimitCents int64
}

type service struct {
	repo   Repository
	ledger ledger.Service
}

// NewService wires a customers service.
func NewService(repo Repository, ledgerSvc ledger.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{repo: repo, ledger: ledgerSvc}, nil
}

func validate(input UpsertCustomerInput) error {
	if input.Alias == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "alias required")
	}
	if input.CreditLimitCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit limit must be non-negative")
	}
	return nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input UpsertCustomerInput) (*models.Customer, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if err := validate(input); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Alias:            input.Alias,
		Phone:            input.Phone,
		Address:          input.Address,
		Remark:           input.Remark,
		CreditLimitCents: input.CreditLimitCents,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "idx_customers_tenant_phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a customer with this phone already exists")
		}
		return nil, err
	}
	return customer, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, input UpsertCustomerInput) (*models.Customer, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	customer, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	customer.Alias = input.Alias
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.Remark = input.Remark
	customer.CreditLimitCents = input.CreditLimitCents

	if err := s.repo.Update(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "idx_customers_tenant_phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a customer with this phone already exists")
		}
		return nil, err
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}
	return customer, nil
}

func (s *service) Detail(ctx context.Context, tenantID, id uuid.UUID) (*CustomerDetail, error) {
	customer, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	logs, _, err := s.ledger.ListByCustomer(ctx, tenantID, id, pagination.Params{Page: 1, Limit: recentDebtLogCount})
	if err != nil {
		return nil, err
	}
	return &CustomerDetail{Customer: *customer, DebtLogs: logs}, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, keyword string, params pagination.Params) ([]models.Customer, int64, error) {
	if tenantID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	return s.repo.List(ctx, tenantID, keyword, params)
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	customer, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if customer.TotalDebtCents != 0 {
		return pkgerrors.New(pkgerrors.CodeOutstandingDebt, "customer has an outstanding balance").WithDetails(map[string]int64{
			"total_debt_cents": customer.TotalDebtCents,
		})
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return err
	}
	return nil
}

func (s *service) Repay(ctx context.Context, tenantID, id uuid.UUID, amountCents int64, remark string) (*models.DebtLog, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and customer id required")
	}
	return s.ledger.PostRepayment(ctx, tenantID, id, amountCents, remark)
}
