package expense

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

func TestListExpensesHandler(t *testing.T) {
	t.Run("tarih aralığı zorunlu", func(t *testing.T) {
		app := newTestApp(fiber.MethodGet, "/api/expenses", ListExpensesHandler())

		req := httptest.NewRequest(fiber.MethodGet, "/api/expenses", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		req = httptest.NewRequest(fiber.MethodGet, "/api/expenses?start_date=2026-01-01", nil)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("geçersiz tarih formatı 400", func(t *testing.T) {
		app := newTestApp(fiber.MethodGet, "/api/expenses", ListExpensesHandler())

		req := httptest.NewRequest(fiber.MethodGet, "/api/expenses?start_date=01.01.2026&end_date=2026-02-01", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateExpenseHandler(t *testing.T) {
	t.Run("sıfır tutar 400", func(t *testing.T) {
		app := newTestApp(fiber.MethodPost, "/api/expenses", CreateExpenseHandler())
		req := jsonRequest(t, fiber.MethodPost, "/api/expenses", CreateExpenseRequest{
			ExpenseType: "kira",
			Amount:      0,
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("gider türü zorunlu", func(t *testing.T) {
		app := newTestApp(fiber.MethodPost, "/api/expenses", CreateExpenseHandler())
		req := jsonRequest(t, fiber.MethodPost, "/api/expenses", CreateExpenseRequest{
			Amount: 100,
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("başarılı kayıt", func(t *testing.T) {
		mock := setupMockDB(t)

		mock.ExpectQuery(`INSERT INTO "expenses"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
		mock.ExpectQuery(`INSERT INTO "audit_logs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		app := newTestApp(fiber.MethodPost, "/api/expenses", CreateExpenseHandler())
		req := jsonRequest(t, fiber.MethodPost, "/api/expenses", CreateExpenseRequest{
			ExpenseDate: "2026-08-30",
			ExpenseType: "kira",
			Amount:      15000,
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
