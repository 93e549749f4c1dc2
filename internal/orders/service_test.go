package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/internal/goods"
	"github.com/xht-dev/wholesale-backend/pkg/db"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/pagination"
)

func newOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS goods (
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
CREATE TABLE IF NOT EXISTS customers (
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
CREATE TABLE IF NOT EXISTS orders (
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
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_tenant_no ON orders (tenant_id, order_no);`, `
CREATE TABLE IF NOT EXISTS order_items (
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
);`}
	for _, ddl := range statements {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

type ordersFixture struct {
	conn     *gorm.DB
	svc      Service
	tenantID uuid.UUID
	customer *models.Customer
	cola     *models.Goods // multi-unit, rate 24
	lighter  *models.Goods // single-unit
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()
	conn := newOrdersTestDB(t)

	goodsRepo := goods.NewRepository(conn)
	svc, err := NewService(db.NewWithConn(conn), NewRepository(conn), goodsRepo, customerRepoStub{conn})
	require.NoError(t, err)

	tenantID := uuid.New()
	customer := &models.Customer{ID: uuid.New(), TenantID: tenantID, Alias: "corner shop"}
	require.NoError(t, conn.Create(customer).Error)

	cola := &models.Goods{
		ID: uuid.New(), TenantID: tenantID, Name: "cola",
		IsMultiUnit: true, UnitSmallName: "bottle", UnitSmallPriceCents: 300,
		UnitBigName: "case", UnitBigPriceCents: 6500, Rate: 24, Stock: 100, IsOnSale: true,
	}
	lighter := &models.Goods{
		ID: uuid.New(), TenantID: tenantID, Name: "lighter",
		UnitSmallName: "pc", UnitSmallPriceCents: 150, Rate: 1, Stock: 30, IsOnSale: true,
	}
	require.NoError(t, conn.Create(cola).Error)
	require.NoError(t, conn.Create(lighter).Error)

	return &ordersFixture{conn: conn, svc: svc, tenantID: tenantID, customer: customer, cola: cola, lighter: lighter}
}

type customerRepoStub struct {
	conn *gorm.DB
}

func (s customerRepoStub) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.conn.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (f *ordersFixture) goodsStock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var item models.Goods
	require.NoError(t, f.conn.First(&item, "id = ?", id).Error)
	return item.Stock
}

func TestCreateOrderSnapshotsAndDecrementsStock(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCredit,
		Items: []OrderItemInput{
			{GoodsID: f.cola.ID, CountBig: 2, CountSmall: 5},
			{GoodsID: f.lighter.ID, CountSmall: 3},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNo, "ORD"))
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.OrderTypeCustomer, order.OrderType)
	// 2*6500 + 5*300 + 3*150
	assert.Equal(t, int64(14950), order.TotalAmountCents)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(6500), order.Items[0].PriceBigCents)
	assert.Equal(t, 24, order.Items[0].Rate)

	assert.Equal(t, 100-53, f.goodsStock(t, f.cola.ID))
	assert.Equal(t, 27, f.goodsStock(t, f.lighter.ID))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newOrdersFixture(t)

	_, err := f.svc.Create(context.Background(), f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateOrderInsufficientStockRollsBackWholeOrder(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		Items: []OrderItemInput{
			{GoodsID: f.cola.ID, CountBig: 1},    // fine
			{GoodsID: f.lighter.ID, CountSmall: 31}, // over stock
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	// first line's decrement must have been rolled back
	assert.Equal(t, 100, f.goodsStock(t, f.cola.ID))
	assert.Equal(t, 30, f.goodsStock(t, f.lighter.ID))

	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderLineValidation(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	offSale := &models.Goods{
		ID: uuid.New(), TenantID: f.tenantID, Name: "retired",
		UnitSmallName: "pc", UnitSmallPriceCents: 100, Rate: 1, Stock: 10, IsOnSale: false,
	}
	require.NoError(t, f.conn.Create(offSale).Error)
	// GORM omits zero-valued fields that carry a default tag on insert, so the
	// column update is needed to actually persist IsOnSale=false.
	require.NoError(t, f.conn.Model(offSale).UpdateColumn("is_on_sale", false).Error)

	cases := []struct {
		name string
		item OrderItemInput
		code pkgerrors.Code
	}{
		{"negative count", OrderItemInput{GoodsID: f.cola.ID, CountBig: -1, CountSmall: 2}, pkgerrors.CodeValidation},
		{"zero units", OrderItemInput{GoodsID: f.cola.ID}, pkgerrors.CodeValidation},
		{"off sale", OrderItemInput{GoodsID: offSale.ID, CountSmall: 1}, pkgerrors.CodeValidation},
		{"big count on single-unit", OrderItemInput{GoodsID: f.lighter.ID, CountBig: 1}, pkgerrors.CodeValidation},
		{"unknown goods", OrderItemInput{GoodsID: uuid.New(), CountSmall: 1}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
				CustomerID:    f.customer.ID,
				PaymentMethod: enums.PaymentMethodCash,
				Items:         []OrderItemInput{tc.item},
			})
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	f := newOrdersFixture(t)

	_, err := f.svc.Create(context.Background(), f.tenantID, CreateOrderInput{
		CustomerID:    uuid.New(),
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []OrderItemInput{{GoodsID: f.cola.ID, CountSmall: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCreateOrderIsNotIdempotent(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	input := CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []OrderItemInput{{GoodsID: f.lighter.ID, CountSmall: 1}},
	}
	first, err := f.svc.Create(ctx, f.tenantID, input)
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.tenantID, input)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.OrderNo, second.OrderNo)
	assert.Equal(t, 28, f.goodsStock(t, f.lighter.ID))
}

func TestConfirmOrder(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []OrderItemInput{{GoodsID: f.lighter.ID, CountSmall: 1}},
	})
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(ctx, f.tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, confirmed.Status)

	// second confirm is a tolerated no-op
	again, err := f.svc.Confirm(ctx, f.tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, again.Status)
}

func TestConfirmCompletedOrCancelledOrder(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []OrderItemInput{{GoodsID: f.lighter.ID, CountSmall: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", enums.OrderStatusCompleted).Error)
	_, err = f.svc.Confirm(ctx, f.tenantID, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAlreadyComplete))

	require.NoError(t, f.conn.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", enums.OrderStatusCancelled).Error)
	_, err = f.svc.Confirm(ctx, f.tenantID, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelOrderRestoresStock(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []OrderItemInput{{GoodsID: f.cola.ID, CountBig: 1, CountSmall: 6}},
	})
	require.NoError(t, err)
	require.Equal(t, 70, f.goodsStock(t, f.cola.ID))

	cancelled, err := f.svc.Cancel(ctx, f.tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 100, f.goodsStock(t, f.cola.ID))
}

func TestCancelConfirmedOrderRejected(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []OrderItemInput{{GoodsID: f.lighter.ID, CountSmall: 2}},
	})
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, f.tenantID, order.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.tenantID, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, 28, f.goodsStock(t, f.lighter.ID))
}

func TestOrdersAreTenantScoped(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []OrderItemInput{{GoodsID: f.lighter.ID, CountSmall: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, uuid.New(), order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Confirm(ctx, uuid.New(), order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListOrdersFilters(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		Items:         []OrderItemInput{{GoodsID: f.lighter.ID, CountSmall: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.tenantID, CreateOrderInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: enums.PaymentMethodCredit,
		Items:         []OrderItemInput{{GoodsID: f.lighter.ID, CountSmall: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, f.tenantID, first.ID)
	require.NoError(t, err)

	confirmed := enums.OrderStatusConfirmed
	list, total, err := f.svc.List(ctx, f.tenantID, ListFilter{Status: &confirmed}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	_, total, err = f.svc.List(ctx, f.tenantID, ListFilter{CustomerID: &f.customer.ID}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
