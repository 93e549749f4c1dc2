package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
)

const defaultExpiryBatch = 200

type lapsedTenantRepo interface {
	ListLapsed(ctx context.Context, cutoff time.Time, limit int) ([]models.Tenant, error)
	MarkLapsed(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error)
}

// MembershipExpiryJobParams configures the membership expiry sweep.
type MembershipExpiryJobParams struct {
	Logger     *logger.Logger
	TenantRepo lapsedTenantRepo
	BatchSize  int
	Now        func() time.Time
}

// NewMembershipExpiryJob builds the job that moves lapsed shops to expired.
func NewMembershipExpiryJob(params MembershipExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.TenantRepo == nil {
		return nil, fmt.Errorf("tenant repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &membershipExpiryJob{
		logg:  params.Logger,
		repo:  params.TenantRepo,
		batch: batch,
		now:   now,
	}, nil
}

type membershipExpiryJob struct {
	logg  *logger.Logger
	repo  lapsedTenantRepo
	batch int
	now   func() time.Time
}

func (j *membershipExpiryJob) Name() string { return "membership-expiry" }

// Run sweeps active shops whose subscription lapsed and marks them expired.
// The per-row update re-checks the expiry, so a renewal that lands mid-sweep
// keeps the shop active.
func (j *membershipExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	candidates, err := j.repo.ListLapsed(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("list lapsed tenants: %w", err)
	}

	var errs error
	expired := 0
	for i := range candidates {
		tenant := &candidates[i]
		flipped, markErr := j.repo.MarkLapsed(ctx, tenant.ID, cutoff)
		if markErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark tenant %s lapsed: %w", tenant.ID, markErr))
			continue
		}
		if flipped {
			expired++
		}
	}

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(candidates),
		"expired":    expired,
	})
	j.logg.Info(reportCtx, "membership expiry sweep complete")
	return errs
}
