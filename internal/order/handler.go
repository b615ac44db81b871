package order

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"lezzet-backend/internal/audit"
	"lezzet-backend/internal/auth"
	"lezzet-backend/internal/database"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CartItem struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

type CreateOrderRequest struct {
	Cart              []CartItem     `json:"cart"`
	Subtotal          float64        `json:"subtotal"`
	DiscountAmount    float64        `json:"discount_amount"`
	DiscountPercent   float64        `json:"discount_percent"`
	FinalTotal        float64        `json:"final_total"`
	CustomerID        *uint          `json:"customer_id"`
	CustomerName      string         `json:"customer_name"`
	CustomerEmail     string         `json:"customer_email"`
	Currency          string         `json:"currency"`
	PaymentProvider   string         `json:"payment_provider"`
	ProviderPaymentID string         `json:"provider_payment_id"`
	PaymentStatus     string         `json:"payment_status"`
	TableNo           string         `json:"table_no"`
	Meta              map[string]any `json:"meta"`
}

type UpdateStatusRequest struct {
	OrderID   uint   `json:"order_id"`
	NewStatus string `json:"new_status"`
}

type CompleteOrderRequest struct {
	OrderID       uint   `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
}

type OrderItemResponse struct {
	ID         uint    `json:"id"`
	ItemName   string  `json:"item_name"`
	Qty        int     `json:"qty"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

type OrderResponse struct {
	ID            uint                 `json:"id"`
	CustomerName  string               `json:"customer_name"`
	Subtotal      float64              `json:"subtotal"`
	FinalTotal    float64              `json:"final_total"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	CurrentStatus models.OrderStatus   `json:"current_status"`
	CreatedAt     time.Time            `json:"created_at"`
	Items         []OrderItemResponse  `json:"items"`
}

type ReportOrderResponse struct {
	ID             uint                 `json:"id"`
	CustomerName   string               `json:"customer_name"`
	CurrentStatus  models.OrderStatus   `json:"current_status"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	Subtotal       float64              `json:"subtotal"`
	DiscountAmount float64              `json:"discount_amount"`
	FinalTotal     float64              `json:"final_total"`
	CreatedAt      time.Time            `json:"created_at"`
}

// -------------------------
// Tutar hesapları
// -------------------------

// İstemci ara toplamı ile sunucu hesabı arasında tolere edilen fark.
const subtotalTolerance = 0.01

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// computeCartSubtotal: satır bazında round(fiyat x adet, 2) toplamı.
func computeCartSubtotal(cart []CartItem) float64 {
	var sum float64
	for _, it := range cart {
		sum += round2(it.Price * float64(it.Qty))
	}
	return round2(sum)
}

// reconcileTotals: istemcinin gönderdiği ara toplam sunucu hesabından
// toleranstan fazla sapıyorsa sunucu değeri kazanır ve genel toplam
// indirimle yeniden hesaplanır. Aksi halde istemci değerleri korunur.
func reconcileTotals(computed, clientSubtotal, discountAmount, clientFinal float64) (subtotal, finalTotal float64, overridden bool) {
	if math.Abs(computed-clientSubtotal) > subtotalTolerance {
		return computed, round2(computed - discountAmount), true
	}
	return clientSubtotal, clientFinal, false
}

func validateCart(cart []CartItem) error {
	if len(cart) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Sepet boş")
	}
	for _, it := range cart {
		if strings.TrimSpace(it.Name) == "" || it.Qty <= 0 || it.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sepet formatı")
		}
	}
	return nil
}

// -------------------------
// Handler'lar
// -------------------------

// POST /create_order
// Sipariş ve satırları tek transaction'da yazılır: herhangi bir satır
// eklenemezse siparişin tamamı geri alınır.
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if err := validateCart(body.Cart); err != nil {
			return err
		}

		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		// Müşteri bilgisi gönderilmediyse token'daki kimliğe düş
		customerID := body.CustomerID
		if customerID == nil {
			customerID = &ident.UserID
		}
		customerName := body.CustomerName
		if customerName == "" {
			customerName = ident.Username
		}
		customerEmail := body.CustomerEmail
		if customerEmail == "" {
			customerEmail = ident.Email
		}

		currency := body.Currency
		if currency == "" {
			currency = "TRY"
		}

		paymentStatus := models.PaymentStatus(body.PaymentStatus)
		if paymentStatus == "" {
			paymentStatus = models.PaymentPending
		}
		switch paymentStatus {
		case models.PaymentPending, models.PaymentPaid, models.PaymentFailed:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz payment_status")
		}

		// Sunucu taraflı tutar doğrulaması: hesap tutmuyorsa sunucu kazanır
		computed := computeCartSubtotal(body.Cart)
		subtotal, finalTotal, _ := reconcileTotals(computed, body.Subtotal, body.DiscountAmount, body.FinalTotal)

		metaJSON := "{}"
		if body.Meta != nil {
			if b, err := json.Marshal(body.Meta); err == nil {
				metaJSON = string(b)
			}
		}

		ord := models.Order{
			CustomerID:        customerID,
			CustomerName:      customerName,
			CustomerEmail:     customerEmail,
			Subtotal:          subtotal,
			DiscountAmount:    body.DiscountAmount,
			DiscountPercent:   body.DiscountPercent,
			FinalTotal:        finalTotal,
			Currency:          currency,
			PaymentProvider:   body.PaymentProvider,
			ProviderPaymentID: body.ProviderPaymentID,
			PaymentStatus:     paymentStatus,
			CurrentStatus:     models.OrderPlaced,
			TableNo:           body.TableNo,
			Meta:              metaJSON,
		}

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Create(&ord).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş kaydedilemedi")
		}

		for _, it := range body.Cart {
			name := it.Name
			if len(name) > 255 {
				name = name[:255]
			}
			item := models.OrderItem{
				OrderID:    ord.ID,
				ItemName:   name,
				Qty:        it.Qty,
				UnitPrice:  it.Price,
				TotalPrice: round2(it.Price * float64(it.Qty)),
			}
			if err := tx.Create(&item).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Sipariş satırı kaydedilemedi")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş kaydedilemedi")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "order",
			EntityID:    ord.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Sipariş oluşturuldu: %.2f %s", ord.FinalTotal, ord.Currency),
			After:       fiber.Map{"id": ord.ID, "subtotal": ord.Subtotal, "final_total": ord.FinalTotal},
		}); logErr != nil {
			// Log hatası siparişi geri döndürmez
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"order_id": ord.ID,
		})
	}
}

// GET /chef/orders?status=...
// Mutfak kuyruğu: eskiden yeniye sıralı, satırlarıyla birlikte.
func ChefListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := c.Query("status", string(models.OrderPlaced))

		dbq := database.DB.Model(&models.Order{}).Preload("Items").Order("created_at asc")
		if status != "all" {
			dbq = dbq.Where("current_status = ?", status)
		}

		var rows []models.Order
		if err := dbq.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		orders := make([]OrderResponse, 0, len(rows))
		for _, o := range rows {
			items := make([]OrderItemResponse, 0, len(o.Items))
			for _, it := range o.Items {
				items = append(items, OrderItemResponse{
					ID:         it.ID,
					ItemName:   it.ItemName,
					Qty:        it.Qty,
					UnitPrice:  it.UnitPrice,
					TotalPrice: it.TotalPrice,
				})
			}
			orders = append(orders, OrderResponse{
				ID:            o.ID,
				CustomerName:  o.CustomerName,
				Subtotal:      o.Subtotal,
				FinalTotal:    o.FinalTotal,
				PaymentStatus: o.PaymentStatus,
				CurrentStatus: o.CurrentStatus,
				CreatedAt:     o.CreatedAt,
				Items:         items,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"orders":  orders,
		})
	}
}

// POST /chef/update_order_status
func UpdateOrderStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		newStatus := models.OrderStatus(body.NewStatus)
		if body.OrderID == 0 || !newStatus.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz parametreler")
		}

		var ord models.Order
		if err := database.DB.First(&ord, "id = ?", body.OrderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		if !ord.CurrentStatus.CanTransitionTo(newStatus) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("'%s' durumundan '%s' durumuna geçilemez", ord.CurrentStatus, newStatus))
		}

		if err := database.DB.Model(&models.Order{}).
			Where("id = ?", ord.ID).
			Update("current_status", newStatus).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş durumu güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"order_id":   ord.ID,
			"new_status": newStatus,
		})
	}
}

// POST /clerk/complete_order
// Teslimatta tahsilat: ara durumları atlayıp delivered + ödeme durumunu
// tek update ile yazar.
func CompleteOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CompleteOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.OrderID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "order_id zorunlu")
		}

		paymentStatus := models.PaymentStatus(body.PaymentStatus)
		if paymentStatus == "" {
			paymentStatus = models.PaymentPaid
		}
		switch paymentStatus {
		case models.PaymentPending, models.PaymentPaid, models.PaymentFailed:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz payment_status")
		}

		res := database.DB.Model(&models.Order{}).
			Where("id = ?", body.OrderID).
			Updates(map[string]interface{}{
				"current_status": models.OrderDelivered,
				"payment_status": paymentStatus,
			})
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş tamamlanamadı")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		if ident, err := auth.CurrentIdentity(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      ident.UserID,
				UserName:    ident.Username,
				EntityType:  "order",
				EntityID:    body.OrderID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Sipariş teslim edildi, ödeme: %s", paymentStatus),
				After:       fiber.Map{"current_status": models.OrderDelivered, "payment_status": paymentStatus},
			})
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"order_id": body.OrderID,
		})
	}
}

// GET /owner/orders_report?start=...&end=...
// Varsayılan aralık: son 7 gün.
func OrdersReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := c.Query("start")
		end := c.Query("end")

		if start == "" || end == "" {
			endDt := time.Now().UTC()
			startDt := endDt.AddDate(0, 0, -7)
			start = startDt.Format("2006-01-02")
			end = endDt.Format("2006-01-02")
		}

		if _, err := time.Parse("2006-01-02", start); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start formatı 'YYYY-MM-DD' olmalı")
		}
		if _, err := time.Parse("2006-01-02", end); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end formatı 'YYYY-MM-DD' olmalı")
		}

		var rows []models.Order
		if err := database.DB.
			Where("date(created_at) BETWEEN ? AND ?", start, end).
			Order("created_at desc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor oluşturulamadı")
		}

		orders := make([]ReportOrderResponse, 0, len(rows))
		for _, o := range rows {
			orders = append(orders, ReportOrderResponse{
				ID:             o.ID,
				CustomerName:   o.CustomerName,
				CurrentStatus:  o.CurrentStatus,
				PaymentStatus:  o.PaymentStatus,
				Subtotal:       o.Subtotal,
				DiscountAmount: o.DiscountAmount,
				FinalTotal:     o.FinalTotal,
				CreatedAt:      o.CreatedAt,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"start":   start,
			"end":     end,
			"orders":  orders,
		})
	}
}

// GET /owner/sales_summary?days=...
// Gün bazlı satış özeti, varsayılan son 30 gün.
func SalesSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 30)
		if days <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "days geçersiz")
		}

		cutoff := time.Now().AddDate(0, 0, -days)

		type row struct {
			Day         time.Time `gorm:"column:day"`
			OrdersCount int64     `gorm:"column:orders_count"`
			TotalSales  float64   `gorm:"column:total_sales"`
		}
		var rows []row

		if err := database.DB.
			Model(&models.Order{}).
			Select("date(created_at) as day, COUNT(*) as orders_count, COALESCE(SUM(final_total), 0) as total_sales").
			Where("created_at >= ?", cutoff).
			Group("date(created_at)").
			Order("day asc").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		type summaryItem struct {
			Day         string  `json:"day"`
			OrdersCount int64   `json:"orders_count"`
			TotalSales  float64 `json:"total_sales"`
		}
		summary := make([]summaryItem, 0, len(rows))
		for _, r := range rows {
			summary = append(summary, summaryItem{
				Day:         r.Day.Format("2006-01-02"),
				OrdersCount: r.OrdersCount,
				TotalSales:  r.TotalSales,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"days":    days,
			"summary": summary,
		})
	}
}
