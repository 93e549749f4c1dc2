package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/internal/tenants"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
)

func newCronTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:cron_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
	CREATE TABLE tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_user_id TEXT NOT NULL,
		phone TEXT,
		status INTEGER NOT NULL DEFAULT 0,
		expired_at DATETIME NOT NULL,
		oa_expired_at DATETIME,
		settings TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`
	require.NoError(t, gdb.Exec(ddl).Error)
	return gdb
}

func seedTenant(t *testing.T, gdb *gorm.DB, status enums.TenantStatus, expiredAt time.Time, oaExpiredAt *time.Time) uuid.UUID {
	t.Helper()

	tenant := models.Tenant{
		ID:          uuid.New(),
		Name:        "shop-" + uuid.NewString()[:8],
		OwnerUserID: uuid.New(),
		Status:      status,
		ExpiredAt:   expiredAt,
		OAExpiredAt: oaExpiredAt,
	}
	require.NoError(t, gdb.Create(&tenant).Error)
	return tenant.ID
}

func TestMembershipExpirySweepExpiresLapsedShops(t *testing.T) {
	gdb := newCronTestDB(t)
	repo := tenants.NewRepository(gdb)
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	sweepAt := time.Date(2026, 7, 1, 3, 0, 0, 0, time.UTC)
	lapsed := seedTenant(t, gdb, enums.TenantStatusActive, sweepAt.AddDate(0, 0, -2), nil)
	current := seedTenant(t, gdb, enums.TenantStatusActive, sweepAt.AddDate(0, 1, 0), nil)
	frozen := seedTenant(t, gdb, enums.TenantStatusFrozen, sweepAt.AddDate(0, 0, -2), nil)

	job, err := NewMembershipExpiryJob(MembershipExpiryJobParams{
		Logger:     logg,
		TenantRepo: repo,
		Now:        func() time.Time { return sweepAt },
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	var got models.Tenant
	require.NoError(t, gdb.First(&got, "id = ?", lapsed).Error)
	assert.Equal(t, enums.TenantStatusExpired, got.Status)

	got = models.Tenant{}
	require.NoError(t, gdb.First(&got, "id = ?", current).Error)
	assert.Equal(t, enums.TenantStatusActive, got.Status)

	got = models.Tenant{}
	require.NoError(t, gdb.First(&got, "id = ?", frozen).Error)
	assert.Equal(t, enums.TenantStatusFrozen, got.Status)
}

func TestMembershipExpirySweepHonorsBackOfficeExpiry(t *testing.T) {
	gdb := newCronTestDB(t)
	repo := tenants.NewRepository(gdb)
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	sweepAt := time.Date(2026, 7, 1, 3, 0, 0, 0, time.UTC)

	// Self-service expiry lapsed but a back-office gift pushed the effective
	// expiry into the future.
	gifted := sweepAt.AddDate(0, 2, 0)
	kept := seedTenant(t, gdb, enums.TenantStatusActive, sweepAt.AddDate(0, 0, -10), &gifted)

	// Back-office expiry lapsed even though the self-service one is current.
	revoked := sweepAt.AddDate(0, 0, -1)
	dropped := seedTenant(t, gdb, enums.TenantStatusActive, sweepAt.AddDate(0, 1, 0), &revoked)

	job, err := NewMembershipExpiryJob(MembershipExpiryJobParams{
		Logger:     logg,
		TenantRepo: repo,
		Now:        func() time.Time { return sweepAt },
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	var got models.Tenant
	require.NoError(t, gdb.First(&got, "id = ?", kept).Error)
	assert.Equal(t, enums.TenantStatusActive, got.Status)

	got = models.Tenant{}
	require.NoError(t, gdb.First(&got, "id = ?", dropped).Error)
	assert.Equal(t, enums.TenantStatusExpired, got.Status)
}

func TestMembershipExpiryJobValidatesParams(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	_, err := NewMembershipExpiryJob(MembershipExpiryJobParams{TenantRepo: tenants.NewRepository(newCronTestDB(t))})
	assert.Error(t, err)

	_, err = NewMembershipExpiryJob(MembershipExpiryJobParams{Logger: logg})
	assert.Error(t, err)
}
