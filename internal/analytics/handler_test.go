package analytics

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"lezzet-backend/internal/database"

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

func TestMonthKeys(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("altı ay eskiden yeniye", func(t *testing.T) {
		keys := monthKeys(now, 6)
		assert.Equal(t, []string{"2026-03", "2026-04", "2026-05", "2026-06", "2026-07", "2026-08"}, keys)
	})

	t.Run("yıl sınırını aşar", func(t *testing.T) {
		jan := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
		keys := monthKeys(jan, 4)
		assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, keys)
	})

	t.Run("tek ay", func(t *testing.T) {
		keys := monthKeys(now, 1)
		assert.Equal(t, []string{"2026-08"}, keys)
	})
}

func TestTopSellingItemsHandler(t *testing.T) {
	t.Run("order_items kolonları qty ve total_price üzerinden toplanır", func(t *testing.T) {
		mock := setupMockDB(t)

		// Sorgu şemadaki gerçek kolon adlarını kullanmalı: qty ve total_price.
		mock.ExpectQuery(`(?s)SELECT oi\.item_name.*SUM\(oi\.qty\) AS total_quantity.*SUM\(oi\.total_price\) AS total_revenue.*FROM order_items oi`).
			WillReturnRows(sqlmock.NewRows([]string{"item_name", "total_quantity", "total_revenue"}).
				AddRow("Pizza", 42, 840.0).
				AddRow("Ayran", 30, 75.0))

		app := fiber.New()
		app.Get("/api/analytics/top-selling-items", TopSellingItemsHandler())

		req := httptest.NewRequest(fiber.MethodGet, "/api/analytics/top-selling-items", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var body struct {
			Success bool         `json:"success"`
			Items   []TopItemRow `json:"items"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.True(t, body.Success)
		require.Len(t, body.Items, 2)
		assert.Equal(t, "Pizza", body.Items[0].ItemName)
		assert.Equal(t, int64(42), body.Items[0].TotalQuantity)
		assert.InDelta(t, 840.0, body.Items[0].TotalRevenue, 0.0001)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
