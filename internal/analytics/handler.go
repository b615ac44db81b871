package analytics

import (
	"fmt"
	"time"

	"lezzet-backend/internal/database"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SalesExpensePoint struct {
	Month    string  `json:"month"`
	Sales    float64 `json:"sales"`
	Expenses float64 `json:"expenses"`
}

type UsageRow struct {
	IngredientID uint    `gorm:"column:ingredient_id" json:"ingredient_id"`
	Name         string  `gorm:"column:name" json:"name"`
	Unit         string  `gorm:"column:unit" json:"unit"`
	TotalUsed    float64 `gorm:"column:total_used" json:"total_used"`
}

type TopItemRow struct {
	ItemName      string  `gorm:"column:item_name" json:"item_name"`
	TotalQuantity int64   `gorm:"column:total_quantity" json:"total_quantity"`
	TotalRevenue  float64 `gorm:"column:total_revenue" json:"total_revenue"`
}

// monthKeys: şimdiki aydan geriye n adet "YYYY-MM" anahtarı, eskiden yeniye.
// Grafiklerde verisi olmayan aylar sıfırla doldurulur.
func monthKeys(now time.Time, n int) []string {
	keys := make([]string, 0, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, first.AddDate(0, -i, 0).Format("2006-01"))
	}
	return keys
}

// GET /owner/manager_metrics
func ManagerMetricsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		today := time.Now().UTC().Format("2006-01-02")

		type salesRow struct {
			Orders int64   `gorm:"column:orders"`
			Total  float64 `gorm:"column:total"`
		}
		var todaySales salesRow
		if err := database.DB.Raw(`
			SELECT COUNT(*) AS orders, COALESCE(SUM(final_total), 0) AS total
			FROM orders
			WHERE date(created_at) = ?;
		`, today).Scan(&todaySales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Metrikler hesaplanamadı")
		}

		var pendingOrders int64
		if err := database.DB.Model(&models.Order{}).
			Where("current_status NOT IN ?", []string{string(models.OrderDelivered), string(models.OrderCancelled)}).
			Count(&pendingOrders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Metrikler hesaplanamadı")
		}

		var lowStock int64
		if err := database.DB.Model(&models.Ingredient{}).
			Where("current_stock <= reorder_level").
			Count(&lowStock).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Metrikler hesaplanamadı")
		}

		var pendingPOs int64
		if err := database.DB.Model(&models.PurchaseOrder{}).
			Where("status = ?", models.POPending).
			Count(&pendingPOs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Metrikler hesaplanamadı")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"metrics": fiber.Map{
				"today_orders":     todaySales.Orders,
				"today_sales":      todaySales.Total,
				"pending_orders":   pendingOrders,
				"low_stock_count":  lowStock,
				"pending_po_count": pendingPOs,
			},
		})
	}
}

// GET /owner/ingredient_usage?days=30
// Defterdeki 'usage' hareketlerinden en çok tüketilen 25 malzeme.
func IngredientUsageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 30)
		if days <= 0 {
			days = 30
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -days)

		var rows []UsageRow
		if err := database.DB.Raw(`
			SELECT t.ingredient_id,
			       i.name,
			       i.unit,
			       SUM(t.quantity) AS total_used
			FROM inventory_transactions t
			JOIN ingredients i ON i.id = t.ingredient_id
			WHERE t.transaction_type = ? AND t.created_at >= ?
			GROUP BY t.ingredient_id, i.name, i.unit
			ORDER BY total_used DESC
			LIMIT 25;
		`, models.TxUsage, cutoff).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanım verisi alınamadı")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"days":    days,
			"usage":   rows,
		})
	}
}

// GET /api/analytics/monthly-sales
// İçinde bulunulan yılın 12 ayı, veri olmayan aylar sıfır.
func MonthlySalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

		type row struct {
			Month  string  `gorm:"column:month"`
			Total  float64 `gorm:"column:total"`
			Orders int64   `gorm:"column:orders"`
		}
		var rows []row
		if err := database.DB.Raw(`
			SELECT to_char(created_at, 'YYYY-MM') AS month,
			       COALESCE(SUM(final_total), 0) AS total,
			       COUNT(*) AS orders
			FROM orders
			WHERE created_at >= ?
			GROUP BY month
			ORDER BY month ASC;
		`, yearStart).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Aylık satışlar hesaplanamadı")
		}

		totals := make(map[string]float64, len(rows))
		counts := make(map[string]int64, len(rows))
		for _, r := range rows {
			totals[r.Month] = r.Total
			counts[r.Month] = r.Orders
		}

		labels := make([]string, 0, 12)
		salesData := make([]float64, 0, 12)
		orderCounts := make([]int64, 0, 12)
		for m := 1; m <= 12; m++ {
			key := fmt.Sprintf("%04d-%02d", now.Year(), m)
			labels = append(labels, key)
			salesData = append(salesData, totals[key])
			orderCounts = append(orderCounts, counts[key])
		}

		return c.JSON(fiber.Map{
			"success":      true,
			"labels":       labels,
			"sales_data":   salesData,
			"order_counts": orderCounts,
		})
	}
}

// GET /api/analytics/ingredient-stock
func IngredientStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Ingredient
		if err := database.DB.Order("current_stock asc").Limit(10).Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok verisi alınamadı")
		}

		labels := make([]string, 0, len(rows))
		stockData := make([]float64, 0, len(rows))
		reorderLevels := make([]float64, 0, len(rows))
		units := make([]string, 0, len(rows))
		statuses := make([]string, 0, len(rows))
		for _, ing := range rows {
			labels = append(labels, ing.Name)
			stockData = append(stockData, ing.CurrentStock)
			reorderLevels = append(reorderLevels, ing.ReorderLevel)
			units = append(units, ing.Unit)
			statuses = append(statuses, ing.StockStatus())
		}

		return c.JSON(fiber.Map{
			"success":        true,
			"labels":         labels,
			"stock_data":     stockData,
			"reorder_levels": reorderLevels,
			"units":          units,
			"statuses":       statuses,
		})
	}
}

// GET /api/analytics/expense-distribution
func ExpenseDistributionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cutoff := time.Now().UTC().AddDate(0, 0, -30)

		type row struct {
			ExpenseType string  `gorm:"column:expense_type" json:"expense_type"`
			Total       float64 `gorm:"column:total" json:"total"`
		}
		var rows []row
		if err := database.DB.Raw(`
			SELECT expense_type, COALESCE(SUM(amount), 0) AS total
			FROM expenses
			WHERE expense_date >= ?
			GROUP BY expense_type
			ORDER BY total DESC;
		`, cutoff.Format("2006-01-02")).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider dağılımı hesaplanamadı")
		}

		return c.JSON(fiber.Map{
			"success":      true,
			"distribution": rows,
		})
	}
}

// GET /api/analytics/sales-vs-expenses
// Son 6 ay; iki kaynaktan ay bazlı toplamlar Go tarafında eşleştirilir.
func SalesVsExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		keys := monthKeys(now, 6)
		windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)

		type row struct {
			Month string  `gorm:"column:month"`
			Total float64 `gorm:"column:total"`
		}

		var salesRows []row
		if err := database.DB.Raw(`
			SELECT to_char(created_at, 'YYYY-MM') AS month,
			       COALESCE(SUM(final_total), 0) AS total
			FROM orders
			WHERE created_at >= ?
			GROUP BY month;
		`, windowStart).Scan(&salesRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış verisi alınamadı")
		}

		var expenseRows []row
		if err := database.DB.Raw(`
			SELECT to_char(expense_date, 'YYYY-MM') AS month,
			       COALESCE(SUM(amount), 0) AS total
			FROM expenses
			WHERE expense_date >= ?
			GROUP BY month;
		`, windowStart.Format("2006-01-02")).Scan(&expenseRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider verisi alınamadı")
		}

		sales := make(map[string]float64, len(salesRows))
		for _, r := range salesRows {
			sales[r.Month] = r.Total
		}
		expenses := make(map[string]float64, len(expenseRows))
		for _, r := range expenseRows {
			expenses[r.Month] = r.Total
		}

		points := make([]SalesExpensePoint, 0, len(keys))
		for _, k := range keys {
			points = append(points, SalesExpensePoint{
				Month:    k,
				Sales:    sales[k],
				Expenses: expenses[k],
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"series":  points,
		})
	}
}

// GET /api/analytics/top-selling-items
func TopSellingItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cutoff := time.Now().UTC().AddDate(0, 0, -30)

		var rows []TopItemRow
		if err := database.DB.Raw(`
			SELECT oi.item_name,
			       SUM(oi.qty) AS total_quantity,
			       SUM(oi.total_price) AS total_revenue
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.created_at >= ? AND o.current_status <> ?
			GROUP BY oi.item_name
			ORDER BY total_quantity DESC
			LIMIT 10;
		`, cutoff, models.OrderCancelled).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış verisi alınamadı")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"items":   rows,
		})
	}
}

// GET /api/analytics/order-metrics
func OrderMetricsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		today := now.Format("2006-01-02")
		weekStart := now.AddDate(0, 0, -7)
		monthStart := now.AddDate(0, -1, 0)

		type countRow struct {
			Orders int64   `gorm:"column:orders"`
			Total  float64 `gorm:"column:total"`
		}

		scanWindow := func(where string, arg any) (countRow, error) {
			var r countRow
			err := database.DB.Raw(
				"SELECT COUNT(*) AS orders, COALESCE(SUM(final_total), 0) AS total FROM orders WHERE "+where,
				arg,
			).Scan(&r).Error
			return r, err
		}

		todayRow, err := scanWindow("date(created_at) = ?", today)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş metrikleri hesaplanamadı")
		}
		weekRow, err := scanWindow("created_at >= ?", weekStart)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş metrikleri hesaplanamadı")
		}
		monthRow, err := scanWindow("created_at >= ?", monthStart)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş metrikleri hesaplanamadı")
		}

		type hourRow struct {
			Hour   int   `gorm:"column:hour"`
			Orders int64 `gorm:"column:orders"`
		}
		var hourRows []hourRow
		if err := database.DB.Raw(`
			SELECT EXTRACT(HOUR FROM created_at)::int AS hour,
			       COUNT(*) AS orders
			FROM orders
			WHERE created_at >= ?
			GROUP BY hour
			ORDER BY orders DESC
			LIMIT 5;
		`, monthStart).Scan(&hourRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yoğun saatler hesaplanamadı")
		}

		type peakHour struct {
			Hour   string `json:"hour"`
			Orders int64  `json:"orders"`
		}
		peaks := make([]peakHour, 0, len(hourRows))
		for _, h := range hourRows {
			peaks = append(peaks, peakHour{
				Hour:   fmt.Sprintf("%d:00", h.Hour),
				Orders: h.Orders,
			})
		}

		avgOrderValue := 0.0
		if monthRow.Orders > 0 {
			avgOrderValue = monthRow.Total / float64(monthRow.Orders)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"metrics": fiber.Map{
				"today":           fiber.Map{"orders": todayRow.Orders, "revenue": todayRow.Total},
				"week":            fiber.Map{"orders": weekRow.Orders, "revenue": weekRow.Total},
				"month":           fiber.Map{"orders": monthRow.Orders, "revenue": monthRow.Total},
				"avg_order_value": avgOrderValue,
				"peak_hours":      peaks,
			},
		})
	}
}
