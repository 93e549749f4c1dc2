package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/internal/auth"
	"github.com/xht-dev/wholesale-backend/internal/customers"
	"github.com/xht-dev/wholesale-backend/internal/goods"
	"github.com/xht-dev/wholesale-backend/internal/ledger"
	"github.com/xht-dev/wholesale-backend/internal/oa"
	"github.com/xht-dev/wholesale-backend/internal/orders"
	"github.com/xht-dev/wholesale-backend/internal/settlement"
	"github.com/xht-dev/wholesale-backend/internal/subscriptions"
	"github.com/xht-dev/wholesale-backend/internal/tenants"
	"github.com/xht-dev/wholesale-backend/internal/users"
	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/db"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
	"github.com/xht-dev/wholesale-backend/pkg/metrics"
	pkgredis "github.com/xht-dev/wholesale-backend/pkg/redis"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Ping(context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", nil)
}

func (m *memoryStore) Get(_ context.Context, key string) *goredis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return goredis.NewStringResult(v, nil)
	}
	return goredis.NewStringResult("", goredis.Nil)
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *goredis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	if s, ok := value.(string); ok {
		m.data[key] = s
	}
	return goredis.NewBoolResult(true, nil)
}

func (m *memoryStore) Incr(_ context.Context, key string) *goredis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := int64(1)
	if v, ok := m.data[key]; ok {
		var parsed int64
		for _, c := range v {
			parsed = parsed*10 + int64(c-'0')
		}
		count = parsed + 1
	}
	m.data[key] = formatCount(count)
	return goredis.NewIntResult(count, nil)
}

func (m *memoryStore) Expire(context.Context, string, time.Duration) *goredis.BoolCmd {
	return goredis.NewBoolResult(true, nil)
}

func (m *memoryStore) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
	}
	return goredis.NewIntResult(removed, nil)
}

func formatCount(n int64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

var routerDDL = []string{`
CREATE TABLE users (
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
CREATE UNIQUE INDEX idx_users_mobile ON users (mobile);`, `
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
);`, `
CREATE TABLE goods (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  category_id TEXT,
  name TEXT NOT NULL,
  img_url TEXT NOT NULL DEFAULT '',
  is_multi_unit INTEGER NOT NULL DEFAULT 0,
  unit_small_name TEXT NOT NULL,
  unit_small_price_cents INTEGER NOT NULL,
  unit_big_name TEXT NOT NULL DEFAULT '',
  unit_big_price_cents INTEGER NOT NULL DEFAULT 0,
  rate INTEGER NOT NULL DEFAULT 1,
  stock INTEGER NOT NULL DEFAULT 0,
  is_on_sale INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE customers (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  alias TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  remark TEXT NOT NULL DEFAULT '',
  total_debt_cents INTEGER NOT NULL DEFAULT 0,
  credit_limit_cents INTEGER NOT NULL DEFAULT 0,
  last_trade_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE debt_logs (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  type TEXT NOT NULL,
  source TEXT NOT NULL,
  remark TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`, `
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  order_no TEXT NOT NULL,
  order_type TEXT NOT NULL DEFAULT 'customer',
  total_amount_cents INTEGER NOT NULL,
  payment_method TEXT NOT NULL,
  status INTEGER NOT NULL DEFAULT 0,
  remark TEXT NOT NULL DEFAULT '',
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX idx_orders_tenant_no ON orders (tenant_id, order_no);`, `
CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  goods_id TEXT NOT NULL,
  name TEXT NOT NULL,
  is_multi_unit INTEGER NOT NULL DEFAULT 0,
  count_big INTEGER NOT NULL DEFAULT 0,
  count_small INTEGER NOT NULL DEFAULT 0,
  unit_big_name TEXT NOT NULL DEFAULT '',
  unit_small_name TEXT NOT NULL,
  rate INTEGER NOT NULL DEFAULT 1,
  price_big_cents INTEGER NOT NULL DEFAULT 0,
  price_small_cents INTEGER NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE renewal_packages (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  duration_months INTEGER NOT NULL,
  price_cents INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE renewal_orders (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  package_id TEXT,
  order_no TEXT NOT NULL UNIQUE,
  duration_months INTEGER NOT NULL,
  amount_cents INTEGER NOT NULL,
  status INTEGER NOT NULL DEFAULT 0,
  source TEXT NOT NULL,
  is_gift INTEGER NOT NULL DEFAULT 0,
  remark TEXT NOT NULL DEFAULT '',
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE oa_users (
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
CREATE UNIQUE INDEX idx_oa_users_username ON oa_users (username);`}

type routerEnv struct {
	handler http.Handler
	conn    *gorm.DB
	oaSvc   oa.Service
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	for _, ddl := range routerDDL {
		require.NoError(t, conn.Exec(ddl).Error)
	}

	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{Secret: "routes-test-secret", Issuer: "wholesale-test", ExpirationMinutes: 60},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Ledger: config.LedgerConfig{EnforceCreditLimit: true},
		Tenant: config.TenantConfig{TrialDays: 30},
	}
	logg := logger.New(logger.Options{ServiceName: "routes-test"})
	dbClient := db.NewWithConn(conn)
	redisClient := pkgredis.NewWithStore(newMemoryStore())

	tenantSvc, err := tenants.NewService(tenants.NewRepository(conn), cfg.Tenant)
	require.NoError(t, err)
	authSvc, err := auth.NewService(dbClient, users.NewRepository(conn), tenantSvc, cfg.JWT, cfg.Password)
	require.NoError(t, err)
	goodsSvc, err := goods.NewService(goods.NewRepository(conn))
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(dbClient, ledger.NewRepository(conn), cfg.Ledger)
	require.NoError(t, err)
	customerSvc, err := customers.NewService(customers.NewRepository(conn), ledgerSvc)
	require.NoError(t, err)
	orderSvc, err := orders.NewService(dbClient, orders.NewRepository(conn), goods.NewRepository(conn), customers.NewRepository(conn))
	require.NoError(t, err)
	settlementSvc, err := settlement.NewService(dbClient, orders.NewRepository(conn), ledgerSvc, logg)
	require.NoError(t, err)
	subscriptionSvc, err := subscriptions.NewService(dbClient, subscriptions.NewRepository(conn), tenants.NewRepository(conn), logg)
	require.NoError(t, err)
	oaSvc, err := oa.NewService(oa.NewRepository(conn), cfg.JWT, cfg.Password)
	require.NoError(t, err)

	handler := NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		metrics.NewHTTPMetrics(nil),
		authSvc,
		tenantSvc,
		goodsSvc,
		customerSvc,
		ledgerSvc,
		orderSvc,
		settlementSvc,
		subscriptionSvc,
		oaSvc,
	)
	return &routerEnv{handler: handler, conn: conn, oaSvc: oaSvc}
}

func (e *routerEnv) do(t *testing.T, method, path, token, idemKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, body []byte, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestHealthLive(t *testing.T) {
	env := newRouterEnv(t)

	rec := env.do(t, http.MethodGet, "/health/live", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newRouterEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/goods", "", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/oa/v1/tenants", "", "", "").Code)
}

func TestRegisterThenManageGoods(t *testing.T) {
	env := newRouterEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", "reg-1",
		`{"mobile":"13800000001","password":"secret123","nickname":"wang","shop_name":"wang wholesale"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session struct {
		Token  string         `json:"token"`
		Tenant *models.Tenant `json:"tenant"`
	}
	decodeData(t, rec.Body.Bytes(), &session)
	require.NotEmpty(t, session.Token)
	require.NotNil(t, session.Tenant)

	goodsBody := `{"name":"cola","unit_small_name":"bottle","unit_small_price_cents":350}`
	rec = env.do(t, http.MethodPost, "/api/v1/goods", session.Token, "goods-1", goodsBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Replaying the same key returns the stored response without a second insert.
	replay := env.do(t, http.MethodPost, "/api/v1/goods", session.Token, "goods-1", goodsBody)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, rec.Body.String(), replay.Body.String())

	var count int64
	require.NoError(t, env.conn.Model(&models.Goods{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A fresh key creates a second row.
	rec = env.do(t, http.MethodPost, "/api/v1/goods", session.Token, "goods-2",
		`{"name":"lighter","unit_small_name":"piece","unit_small_price_cents":150}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, env.conn.Model(&models.Goods{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// Missing the idempotency header on a guarded route is rejected.
	rec = env.do(t, http.MethodPost, "/api/v1/goods", session.Token, "",
		`{"name":"soap","unit_small_name":"bar","unit_small_price_cents":200}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Merchant tokens cannot reach the back office.
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/oa/v1/tenants", session.Token, "", "").Code)
}

func TestOperatorLoginAndTenantReview(t *testing.T) {
	env := newRouterEnv(t)

	// Merchant registers, shop starts in review.
	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", "reg-1",
		`{"mobile":"13800000002","password":"secret123","shop_name":"li wholesale"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var merchant struct {
		Tenant *models.Tenant `json:"tenant"`
	}
	decodeData(t, rec.Body.Bytes(), &merchant)
	require.NotNil(t, merchant.Tenant)

	created, err := env.oaSvc.CreateOperator(context.Background(), "reviewer", "reviewer", enums.OARoleAdmin)
	require.NoError(t, err)

	rec = env.do(t, http.MethodPost, "/api/oa/v1/auth/login", "", "",
		`{"username":"reviewer","password":"`+created.TempPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var oaSession struct {
		Token string `json:"token"`
	}
	decodeData(t, rec.Body.Bytes(), &oaSession)
	require.NotEmpty(t, oaSession.Token)

	rec = env.do(t, http.MethodPost, "/api/oa/v1/tenants/"+merchant.Tenant.ID.String()+"/review",
		oaSession.Token, "", `{"approve":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The approved merchant can now log in.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", "",
		`{"mobile":"13800000002","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
