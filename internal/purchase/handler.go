package purchase

import (
	"encoding/json"
	"fmt"
	"time"

	"lezzet-backend/internal/audit"
	"lezzet-backend/internal/auth"
	"lezzet-backend/internal/database"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type POItemRequest struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
}

type GeneratePORequest struct {
	Items        []POItemRequest `json:"items"`
	SupplierInfo map[string]any  `json:"supplier_info"`
}

type UpdatePOStatusRequest struct {
	Status string `json:"status"`
}

type POResponse struct {
	ID           uint            `json:"id"`
	PONumber     string          `json:"po_number"`
	Status       models.POStatus `json:"status"`
	TotalAmount  float64         `json:"total_amount"`
	SupplierInfo map[string]any  `json:"supplier_info"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type POItemResponse struct {
	ID             uint    `json:"id"`
	IngredientID   uint    `json:"ingredient_id"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	TotalPrice     float64 `json:"total_price"`
	IngredientName string  `json:"ingredient_name"`
	Unit           string  `json:"unit"`
}

// generatePONumber: oluşturma zamanını içeren, okunabilir sipariş numarası.
func generatePONumber(now time.Time) string {
	return "PO-" + now.Format("20060102-150405")
}

func decodeSupplierInfo(raw string) map[string]any {
	info := map[string]any{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			return map[string]any{}
		}
	}
	return info
}

// POST /api/generate-po
// PO + satırları ve geri yazılan toplam tek transaction'da.
func GeneratePOHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GeneratePORequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satır seçilmedi")
		}
		for _, it := range body.Items {
			if it.IngredientID == 0 || it.Quantity <= 0 || it.UnitPrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satır")
			}
		}

		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		supplierJSON := "{}"
		if body.SupplierInfo != nil {
			if b, err := json.Marshal(body.SupplierInfo); err == nil {
				supplierJSON = string(b)
			}
		}

		po := models.PurchaseOrder{
			PONumber:     generatePONumber(time.Now()),
			Status:       models.POPending,
			SupplierInfo: supplierJSON,
			CreatedBy:    ident.UserID,
		}

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Create(&po).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Satın alma siparişi oluşturulamadı")
		}

		var totalAmount float64
		for _, it := range body.Items {
			totalPrice := it.Quantity * it.UnitPrice
			totalAmount += totalPrice

			item := models.PurchaseOrderItem{
				POID:         po.ID,
				IngredientID: it.IngredientID,
				Quantity:     it.Quantity,
				UnitPrice:    it.UnitPrice,
				TotalPrice:   totalPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Sipariş satırı oluşturulamadı")
			}
		}

		if err := tx.Model(&models.PurchaseOrder{}).
			Where("id = ?", po.ID).
			Update("total_amount", totalAmount).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş toplamı güncellenemedi")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satın alma siparişi oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "purchase_order",
			EntityID:    po.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Satın alma siparişi oluşturuldu: %s (%.2f)", po.PONumber, totalAmount),
			After:       fiber.Map{"po_number": po.PONumber, "total_amount": totalAmount},
		})

		return c.JSON(fiber.Map{
			"success":   true,
			"po_id":     po.ID,
			"po_number": po.PONumber,
		})
	}
}

// GET /api/purchase-orders
func ListPurchaseOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.PurchaseOrder
		if err := database.DB.Order("created_at desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		pos := make([]POResponse, 0, len(rows))
		for _, po := range rows {
			pos = append(pos, POResponse{
				ID:           po.ID,
				PONumber:     po.PONumber,
				Status:       po.Status,
				TotalAmount:  po.TotalAmount,
				SupplierInfo: decodeSupplierInfo(po.SupplierInfo),
				CreatedAt:    po.CreatedAt,
				UpdatedAt:    po.UpdatedAt,
			})
		}

		return c.JSON(fiber.Map{
			"success":         true,
			"purchase_orders": pos,
		})
	}
}

// GET /api/purchase-orders/:id
func GetPurchaseOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
		}

		var po models.PurchaseOrder
		if err := database.DB.First(&po, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satın alma siparişi bulunamadı")
		}

		var items []POItemResponse
		if err := database.DB.
			Table("purchase_order_items poi").
			Select("poi.id, poi.ingredient_id, poi.quantity, poi.unit_price, poi.total_price, i.name as ingredient_name, i.unit").
			Joins("LEFT JOIN ingredients i ON poi.ingredient_id = i.id").
			Where("poi.po_id = ?", po.ID).
			Scan(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş satırları alınamadı")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"purchase_order": fiber.Map{
				"id":            po.ID,
				"po_number":     po.PONumber,
				"status":        po.Status,
				"total_amount":  po.TotalAmount,
				"supplier_info": decodeSupplierInfo(po.SupplierInfo),
				"created_at":    po.CreatedAt,
				"updated_at":    po.UpdatedAt,
				"items":         items,
			},
		})
	}
}

// PUT /api/purchase-orders/:id/status
// 'received' geçişi kritik yan etkidir: her satırın malzeme stoğu artar
// ve satır başına bir 'purchase' defter kaydı düşülür. Herhangi bir satır
// başarısız olursa durum değişikliği dahil her şey geri alınır.
func UpdatePOStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş id")
		}

		var body UpdatePOStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		newStatus := models.POStatus(body.Status)
		if !newStatus.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz durum")
		}

		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		var po models.PurchaseOrder
		if err := tx.First(&po, "id = ?", id).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusNotFound, "Satın alma siparişi bulunamadı")
		}

		if err := tx.Model(&models.PurchaseOrder{}).
			Where("id = ?", po.ID).
			Update("status", newStatus).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Durum güncellenemedi")
		}

		if newStatus == models.POReceived {
			var items []models.PurchaseOrderItem
			if err := tx.Where("po_id = ?", po.ID).Find(&items).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Sipariş satırları okunamadı")
			}

			for _, it := range items {
				res := tx.Model(&models.Ingredient{}).
					Where("id = ?", it.IngredientID).
					UpdateColumn("current_stock", gorm.Expr("current_stock + ?", it.Quantity))
				if res.Error != nil || res.RowsAffected == 0 {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Malzeme stoğu güncellenemedi")
				}

				entry := models.InventoryTransaction{
					IngredientID:    it.IngredientID,
					TransactionType: models.TxPurchase,
					Quantity:        it.Quantity,
					Note:            fmt.Sprintf("PO #%d teslim alındı", po.ID),
					CreatedBy:       ident.UserID,
				}
				if err := tx.Create(&entry).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı oluşturulamadı")
				}
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Durum güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "purchase_order",
			EntityID:    po.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s durumu: %s -> %s", po.PONumber, po.Status, newStatus),
			Before:      fiber.Map{"status": po.Status},
			After:       fiber.Map{"status": newStatus},
		})

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Sipariş durumu '%s' olarak güncellendi", newStatus),
		})
	}
}
