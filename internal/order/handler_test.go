package order

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lezzet-backend/internal/auth"
	"lezzet-backend/internal/database"
	"lezzet-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	old := database.DB
	database.DB = gdb
	t.Cleanup(func() {
		database.DB = old
		db.Close()
	})
	return mock
}

func newTestApp(method, path string, h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(1))
		c.Locals(auth.CtxUserNameKey, "testuser")
		c.Locals(auth.CtxUserMailKey, "test@example.com")
		c.Locals(auth.CtxUserRoleKey, models.RoleOwner)
		return c.Next()
	})
	app.Add(method, path, h)
	return app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestComputeCartSubtotal(t *testing.T) {
	tests := []struct {
		name string
		cart []CartItem
		want float64
	}{
		{
			name: "tek satır",
			cart: []CartItem{{Name: "Pizza", Qty: 2, Price: 10.0}},
			want: 20.0,
		},
		{
			name: "birden çok satır",
			cart: []CartItem{
				{Name: "Pizza", Qty: 2, Price: 10.0},
				{Name: "Ayran", Qty: 3, Price: 2.5},
			},
			want: 27.5,
		},
		{
			name: "satır bazında yuvarlama",
			cart: []CartItem{
				{Name: "A", Qty: 3, Price: 0.333},
				{Name: "B", Qty: 3, Price: 0.333},
			},
			want: 2.0,
		},
		{
			name: "boş sepet",
			cart: nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, computeCartSubtotal(tt.cart), 0.0001)
		})
	}
}

func TestReconcileTotals(t *testing.T) {
	tests := []struct {
		name           string
		computed       float64
		clientSubtotal float64
		discount       float64
		clientFinal    float64
		wantSubtotal   float64
		wantFinal      float64
		wantOverridden bool
	}{
		{
			name:           "tolerans içinde istemci kazanır",
			computed:       20.0,
			clientSubtotal: 20.01,
			discount:       0,
			clientFinal:    20.01,
			wantSubtotal:   20.01,
			wantFinal:      20.01,
			wantOverridden: false,
		},
		{
			name:           "sapma varsa sunucu kazanır",
			computed:       20.0,
			clientSubtotal: 25.0,
			discount:       5.0,
			clientFinal:    20.0,
			wantSubtotal:   20.0,
			wantFinal:      15.0,
			wantOverridden: true,
		},
		{
			name:           "birebir eşleşme",
			computed:       42.5,
			clientSubtotal: 42.5,
			discount:       2.5,
			clientFinal:    40.0,
			wantSubtotal:   42.5,
			wantFinal:      40.0,
			wantOverridden: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtotal, final, overridden := reconcileTotals(tt.computed, tt.clientSubtotal, tt.discount, tt.clientFinal)
			assert.InDelta(t, tt.wantSubtotal, subtotal, 0.0001)
			assert.InDelta(t, tt.wantFinal, final, 0.0001)
			assert.Equal(t, tt.wantOverridden, overridden)
		})
	}
}

func TestValidateCart(t *testing.T) {
	assert.Error(t, validateCart(nil))
	assert.Error(t, validateCart([]CartItem{{Name: "", Qty: 1, Price: 1}}))
	assert.Error(t, validateCart([]CartItem{{Name: "Pizza", Qty: 0, Price: 1}}))
	assert.Error(t, validateCart([]CartItem{{Name: "Pizza", Qty: 1, Price: -1}}))
	assert.NoError(t, validateCart([]CartItem{{Name: "Pizza", Qty: 1, Price: 0}}))
}

func TestCreateOrderHandler(t *testing.T) {
	t.Run("başarılı sipariş tek transaction'da yazılır", func(t *testing.T) {
		mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(`INSERT INTO "order_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()
		mock.ExpectQuery(`INSERT INTO "audit_logs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		app := newTestApp(fiber.MethodPost, "/create_order", CreateOrderHandler())
		req := jsonRequest(t, fiber.MethodPost, "/create_order", CreateOrderRequest{
			Cart:       []CartItem{{Name: "Pizza", Qty: 2, Price: 10.0}},
			Subtotal:   20.0,
			FinalTotal: 20.0,
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("satır yazılamazsa sipariş geri alınır", func(t *testing.T) {
		mock := setupMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(`INSERT INTO "order_items"`).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		app := newTestApp(fiber.MethodPost, "/create_order", CreateOrderHandler())
		req := jsonRequest(t, fiber.MethodPost, "/create_order", CreateOrderRequest{
			Cart: []CartItem{{Name: "Pizza", Qty: 1, Price: 10.0}},
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("boş sepet 400 döner", func(t *testing.T) {
		app := newTestApp(fiber.MethodPost, "/create_order", CreateOrderHandler())
		req := jsonRequest(t, fiber.MethodPost, "/create_order", CreateOrderRequest{})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("geçersiz payment_status 400 döner", func(t *testing.T) {
		app := newTestApp(fiber.MethodPost, "/create_order", CreateOrderHandler())
		req := jsonRequest(t, fiber.MethodPost, "/create_order", CreateOrderRequest{
			Cart:          []CartItem{{Name: "Pizza", Qty: 1, Price: 10.0}},
			PaymentStatus: "bilinmeyen",
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	t.Run("bulunamayan sipariş 404", func(t *testing.T) {
		mock := setupMockDB(t)

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnError(gorm.ErrRecordNotFound)

		app := newTestApp(fiber.MethodPost, "/chef/update_order_status", UpdateOrderStatusHandler())
		req := jsonRequest(t, fiber.MethodPost, "/chef/update_order_status", UpdateStatusRequest{
			OrderID:   99,
			NewStatus: "ready",
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("geçersiz durum 400", func(t *testing.T) {
		app := newTestApp(fiber.MethodPost, "/chef/update_order_status", UpdateOrderStatusHandler())
		req := jsonRequest(t, fiber.MethodPost, "/chef/update_order_status", UpdateStatusRequest{
			OrderID:   1,
			NewStatus: "uçtu",
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("aynı duruma tekrar geçiş hata vermez", func(t *testing.T) {
		mock := setupMockDB(t)

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "current_status"}).AddRow(5, "ready"))
		mock.ExpectExec(`UPDATE "orders"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		app := newTestApp(fiber.MethodPost, "/chef/update_order_status", UpdateOrderStatusHandler())
		req := jsonRequest(t, fiber.MethodPost, "/chef/update_order_status", UpdateStatusRequest{
			OrderID:   5,
			NewStatus: "ready",
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompleteOrderHandler(t *testing.T) {
	t.Run("teslimat ve ödeme tek update", func(t *testing.T) {
		mock := setupMockDB(t)

		mock.ExpectExec(`UPDATE "orders"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "audit_logs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		app := newTestApp(fiber.MethodPost, "/clerk/complete_order", CompleteOrderHandler())
		req := jsonRequest(t, fiber.MethodPost, "/clerk/complete_order", CompleteOrderRequest{
			OrderID: 5,
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bulunamayan sipariş 404", func(t *testing.T) {
		mock := setupMockDB(t)

		mock.ExpectExec(`UPDATE "orders"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		app := newTestApp(fiber.MethodPost, "/clerk/complete_order", CompleteOrderHandler())
		req := jsonRequest(t, fiber.MethodPost, "/clerk/complete_order", CompleteOrderRequest{
			OrderID: 99,
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
