package auth

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
	"github.com/xht-dev/wholesale-backend/internal/users"
	pkgauth "github.com/xht-dev/wholesale-backend/pkg/auth"
	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/db"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
)

func newAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  mobile TEXT NOT NULL,
  nickname TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'merchant',
  tenant_id TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_mobile ON users (mobile);`, `
CREATE TABLE IF NOT EXISTS tenants (
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
);`}
	for _, ddl := range statements {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func testPasswordConfig() config.PasswordConfig {
	// Small argon parameters keep the suite fast.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "wholesale-test", ExpirationMinutes: 60}
}

type authFixture struct {
	conn        *gorm.DB
	svc         Service
	usersRepo   users.Repository
	tenantsRepo tenants.Repository
	tenantsSvc  tenants.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	conn := newAuthTestDB(t)
	client := db.NewWithConn(conn)

	usersRepo := users.NewRepository(conn)
	tenantsRepo := tenants.NewRepository(conn)
	tenantsSvc, err := tenants.NewService(tenantsRepo, config.TenantConfig{TrialDays: 30})
	require.NoError(t, err)

	svc, err := NewService(client, usersRepo, tenantsSvc, testJWTConfig(), testPasswordConfig())
	require.NoError(t, err)

	return &authFixture{conn: conn, svc: svc, usersRepo: usersRepo, tenantsRepo: tenantsRepo, tenantsSvc: tenantsSvc}
}

func register(t *testing.T, fx *authFixture, mobile string) *Session {
	t.Helper()
	session, err := fx.svc.Register(context.Background(), RegisterInput{
		Mobile:   mobile,
		Password: "s3cretpw",
		Nickname: "lao wang",
		ShopName: "wang wholesale",
		Phone:    "13800000001",
	})
	require.NoError(t, err)
	return session
}

func TestRegisterCreatesUserAndPendingShop(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	session := register(t, fx, "13800000001")
	require.NotNil(t, session.Tenant)
	assert.Equal(t, enums.TenantStatusPending, session.Tenant.Status)
	assert.Equal(t, enums.UserRoleMerchant, session.User.Role)
	require.NotNil(t, session.User.TenantID)
	assert.Equal(t, session.Tenant.ID, *session.User.TenantID)

	// Plaintext never hits the database.
	stored, err := fx.usersRepo.FindByMobile(ctx, "13800000001")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpw", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, session.Tenant.ID, *claims.TenantID)
	assert.False(t, claims.IsOA())
}

func TestRegisterDuplicateMobileRollsBack(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	register(t, fx, "13800000001")

	_, err := fx.svc.Register(ctx, RegisterInput{
		Mobile:   "13800000001",
		Password: "another1",
		ShopName: "second shop",
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	// The duplicate attempt must not leave an orphan tenant behind.
	var tenantCount int64
	require.NoError(t, fx.conn.Table("tenants").Count(&tenantCount).Error)
	assert.Equal(t, int64(1), tenantCount)
}

func TestRegisterValidations(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Mobile: "", Password: "s3cretpw", ShopName: "shop"},
		{Mobile: "13800000001", Password: "short", ShopName: "shop"},
		{Mobile: "13800000001", Password: "s3cretpw", ShopName: ""},
	}
	for _, input := range cases {
		_, err := fx.svc.Register(ctx, input)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "input %+v", input)
	}
}

func TestLoginHappyPath(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	session := register(t, fx, "13800000001")
	_, err := fx.tenantsSvc.Review(ctx, session.Tenant.ID, true)
	require.NoError(t, err)

	logged, err := fx.svc.Login(ctx, "13800000001", "s3cretpw")
	require.NoError(t, err)
	assert.NotEmpty(t, logged.Token)
	require.NotNil(t, logged.Tenant)
	assert.Equal(t, enums.TenantStatusActive, logged.Tenant.Status)

	stored, err := fx.usersRepo.FindByMobile(ctx, "13800000001")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	session := register(t, fx, "13800000001")
	_, err := fx.tenantsSvc.Review(ctx, session.Tenant.ID, true)
	require.NoError(t, err)

	_, err = fx.svc.Login(ctx, "13800000001", "wrongpass")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = fx.svc.Login(ctx, "13899999999", "s3cretpw")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestLoginBlocksByTenantStatus(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	session := register(t, fx, "13800000001")

	// Still under review.
	_, err := fx.svc.Login(ctx, "13800000001", "s3cretpw")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	_, err = fx.tenantsSvc.Review(ctx, session.Tenant.ID, true)
	require.NoError(t, err)
	_, err = fx.tenantsSvc.SetFrozen(ctx, session.Tenant.ID, true)
	require.NoError(t, err)

	_, err = fx.svc.Login(ctx, "13800000001", "s3cretpw")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}

func TestLoginBlocksLapsedSubscription(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	session := register(t, fx, "13800000001")
	_, err := fx.tenantsSvc.Review(ctx, session.Tenant.ID, true)
	require.NoError(t, err)
	require.NoError(t, fx.tenantsRepo.SetExpiry(ctx, session.Tenant.ID, time.Now().AddDate(0, 0, -1)))

	_, err = fx.svc.Login(ctx, "13800000001", "s3cretpw")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}
