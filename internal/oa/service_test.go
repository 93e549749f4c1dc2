package oa

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgauth "github.com/xht-dev/wholesale-backend/pkg/auth"
	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
)

func newOATestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:oa_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS oa_users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  nickname TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'staff',
  status INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_oa_users_username ON oa_users (username);`}
	for _, ddl := range statements {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "wholesale-test", ExpirationMinutes: 60}
}

func newOAFixture(t *testing.T) Service {
	t.Helper()
	conn := newOATestDB(t)
	passCfg := config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	svc, err := NewService(NewRepository(conn), testJWTConfig(), passCfg)
	require.NoError(t, err)
	return svc
}

func TestCreateOperatorAndLogin(t *testing.T) {
	svc := newOAFixture(t)
	ctx := context.Background()

	created, err := svc.CreateOperator(ctx, "ops.zhang", "zhang", enums.OARoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, created.TempPassword)
	assert.NotEqual(t, created.TempPassword, created.User.PasswordHash)

	session, err := svc.Login(ctx, "ops.zhang", created.TempPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotNil(t, session.User.LastLoginAt)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), session.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsOA())
	require.NotNil(t, claims.OARole)
	assert.Equal(t, enums.OARoleAdmin, *claims.OARole)
	assert.Nil(t, claims.TenantID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newOAFixture(t)
	ctx := context.Background()

	created, err := svc.CreateOperator(ctx, "ops.zhang", "zhang", enums.OARoleStaff)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ops.zhang", "nope")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(ctx, "ghost", created.TempPassword)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestDisabledOperatorCannotLogin(t *testing.T) {
	svc := newOAFixture(t)
	ctx := context.Background()

	created, err := svc.CreateOperator(ctx, "ops.zhang", "zhang", enums.OARoleStaff)
	require.NoError(t, err)
	require.NoError(t, svc.SetEnabled(ctx, created.User.ID, false))

	_, err = svc.Login(ctx, "ops.zhang", created.TempPassword)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	require.NoError(t, svc.SetEnabled(ctx, created.User.ID, true))
	_, err = svc.Login(ctx, "ops.zhang", created.TempPassword)
	require.NoError(t, err)
}

func TestDuplicateUsernameRejected(t *testing.T) {
	svc := newOAFixture(t)
	ctx := context.Background()

	_, err := svc.CreateOperator(ctx, "ops.zhang", "zhang", enums.OARoleStaff)
	require.NoError(t, err)

	_, err = svc.CreateOperator(ctx, "ops.zhang", "other", enums.OARoleStaff)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestResetPasswordRotatesCredential(t *testing.T) {
	svc := newOAFixture(t)
	ctx := context.Background()

	created, err := svc.CreateOperator(ctx, "ops.zhang", "zhang", enums.OARoleStaff)
	require.NoError(t, err)

	fresh, err := svc.ResetPassword(ctx, created.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, created.TempPassword, fresh)

	_, err = svc.Login(ctx, "ops.zhang", created.TempPassword)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	_, err = svc.Login(ctx, "ops.zhang", fresh)
	require.NoError(t, err)

	_, err = svc.ResetPassword(ctx, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListOperators(t *testing.T) {
	svc := newOAFixture(t)
	ctx := context.Background()

	_, err := svc.CreateOperator(ctx, "ops.a", "a", enums.OARoleSuperAdmin)
	require.NoError(t, err)
	_, err = svc.CreateOperator(ctx, "ops.b", "b", enums.OARoleStaff)
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
