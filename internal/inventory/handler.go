package inventory

import (
	"fmt"
	"strings"

	"lezzet-backend/internal/audit"
	"lezzet-backend/internal/auth"
	"lezzet-backend/internal/database"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AddIngredientRequest struct {
	Name         string  `json:"name"`
	CurrentStock float64 `json:"current_stock"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
}

// UpdateIngredientRequest: güncellenebilir alanların açık listesi.
// Stok bu yoldan değişmez; stok yalnızca defter kaydı üreten
// use/restock/po-teslim akışlarından oynar.
type UpdateIngredientRequest struct {
	Name         *string  `json:"name"`
	Unit         *string  `json:"unit"`
	ReorderLevel *float64 `json:"reorder_level"`
}

type StockMoveRequest struct {
	Quantity float64 `json:"quantity"`
	Note     string  `json:"note"`
}

type IngredientResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	CurrentStock float64 `json:"current_stock"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
	InitialStock float64 `json:"initial_stock"`
	Status       string  `json:"status"`
}

type LowStockResponse struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	CurrentStock   float64 `json:"current_stock"`
	Unit           string  `json:"unit"`
	ReorderLevel   float64 `json:"reorder_level"`
	NeededQuantity float64 `json:"needed_quantity"`
}

// -------------------------
// Malzeme listeleri
// -------------------------

// GET /api/ingredients
func ListIngredientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Ingredient
		if err := database.DB.Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler listelenemedi")
		}

		ingredients := make([]IngredientResponse, 0, len(rows))
		for _, ing := range rows {
			ingredients = append(ingredients, IngredientResponse{
				ID:           ing.ID,
				Name:         ing.Name,
				CurrentStock: ing.CurrentStock,
				Unit:         ing.Unit,
				ReorderLevel: ing.ReorderLevel,
				InitialStock: ing.InitialStock,
				Status:       ing.StockStatus(),
			})
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"ingredients": ingredients,
		})
	}
}

// GET /api/ingredients/low-stock
// Sipariş seviyesinin altındakiler, ihtiyaç miktarına göre azalan sırada.
func LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Ingredient
		if err := database.DB.
			Where("current_stock <= reorder_level").
			Order("(reorder_level - current_stock) desc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Düşük stok listesi alınamadı")
		}

		lowStock := make([]LowStockResponse, 0, len(rows))
		for _, ing := range rows {
			lowStock = append(lowStock, LowStockResponse{
				ID:             ing.ID,
				Name:           ing.Name,
				CurrentStock:   ing.CurrentStock,
				Unit:           ing.Unit,
				ReorderLevel:   ing.ReorderLevel,
				NeededQuantity: ing.ReorderLevel - ing.CurrentStock,
			})
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"low_stock": lowStock,
		})
	}
}

// GET /api/ingredients/units
func CommonUnitsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		units := []string{
			"kg", "g", "lb", "oz", "l", "ml",
			"adet", "paket", "şişe", "kutu",
			"koli", "çuval", "düzine",
		}
		return c.JSON(fiber.Map{
			"success": true,
			"units":   units,
		})
	}
}

// -------------------------
// Malzeme CRUD
// -------------------------

// POST /api/ingredients/add
func AddIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)
		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name ve unit zorunlu")
		}
		if body.CurrentStock < 0 || body.ReorderLevel < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok ve sipariş seviyesi negatif olamaz")
		}

		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		var count int64
		if err := database.DB.Model(&models.Ingredient{}).
			Where("name = ?", body.Name).
			Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme kontrolü yapılamadı")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu isimde bir malzeme zaten var")
		}

		ing := models.Ingredient{
			Name:         body.Name,
			CurrentStock: body.CurrentStock,
			Unit:         body.Unit,
			ReorderLevel: body.ReorderLevel,
			InitialStock: body.CurrentStock,
		}

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Create(&ing).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme oluşturulamadı")
		}

		// Başlangıç stoğu da deftere işlenir
		if ing.CurrentStock > 0 {
			entry := models.InventoryTransaction{
				IngredientID:    ing.ID,
				TransactionType: models.TxInitial,
				Quantity:        ing.CurrentStock,
				Note:            "Başlangıç stoğu",
				CreatedBy:       ident.UserID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı oluşturulamadı")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "ingredient",
			EntityID:    ing.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Malzeme eklendi: %s (%.2f %s)", ing.Name, ing.CurrentStock, ing.Unit),
			After:       fiber.Map{"name": ing.Name, "current_stock": ing.CurrentStock, "unit": ing.Unit},
		})

		return c.JSON(fiber.Map{
			"success":       true,
			"message":       "Malzeme başarıyla eklendi",
			"ingredient_id": ing.ID,
		})
	}
}

// PUT /api/ingredients/:id/update
func UpdateIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme id")
		}

		var ing models.Ingredient
		if err := database.DB.First(&ing, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		var body UpdateIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updates := map[string]interface{}{}
		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			updates["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Unit != nil && strings.TrimSpace(*body.Unit) != "" {
			updates["unit"] = strings.TrimSpace(*body.Unit)
		}
		if body.ReorderLevel != nil {
			if *body.ReorderLevel < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "reorder_level negatif olamaz")
			}
			updates["reorder_level"] = *body.ReorderLevel
		}

		if len(updates) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Güncellenecek alan yok")
		}

		if err := database.DB.Model(&ing).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Malzeme başarıyla güncellendi",
		})
	}
}

// DELETE /api/ingredients/:id
// Store tarafında foreign key yok; bağımlı kayıtlar uygulama içinde
// elle temizlenir: önce PO satırları, sonra defter, en son malzeme.
func DeleteIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme id")
		}

		var ing models.Ingredient
		if err := database.DB.First(&ing, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Where("ingredient_id = ?", ing.ID).
			Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme silinemedi")
		}

		if err := tx.Where("ingredient_id = ?", ing.ID).
			Delete(&models.InventoryTransaction{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme silinemedi")
		}

		if err := tx.Delete(&models.Ingredient{}, "id = ?", ing.ID).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme silinemedi")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme silinemedi")
		}

		if ident, err := auth.CurrentIdentity(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      ident.UserID,
				UserName:    ident.Username,
				EntityType:  "ingredient",
				EntityID:    ing.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Malzeme silindi: %s", ing.Name),
				Before:      fiber.Map{"name": ing.Name, "current_stock": ing.CurrentStock},
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("'%s' malzemesi tüm kayıtlarıyla birlikte silindi", ing.Name),
		})
	}
}

// -------------------------
// Stok hareketleri
// -------------------------

// POST /api/ingredients/:id/use
// Yeterlilik kontrolü tek koşullu UPDATE ile yapılır: eşzamanlı iki
// kullanım aynı stoğu eksiye düşüremez.
func UseIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme id")
		}

		var body StockMoveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar pozitif olmalı")
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

		var ing models.Ingredient
		if err := tx.First(&ing, "id = ?", id).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		res := tx.Model(&models.Ingredient{}).
			Where("id = ? AND current_stock >= ?", ing.ID, body.Quantity).
			UpdateColumn("current_stock", gorm.Expr("current_stock - ?", body.Quantity))
		if res.Error != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return fiber.NewError(fiber.StatusBadRequest, "Yetersiz stok")
		}

		entry := models.InventoryTransaction{
			IngredientID:    ing.ID,
			TransactionType: models.TxUsage,
			Quantity:        body.Quantity,
			Note:            body.Note,
			CreatedBy:       ident.UserID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı oluşturulamadı")
		}

		// Güncel stoğu aynı transaction içinden oku
		if err := tx.First(&ing, "id = ?", ing.ID).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok okunamadı")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"new_stock": ing.CurrentStock,
		})
	}
}

// POST /api/ingredients/:id/restock
func RestockIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz malzeme id")
		}

		var body StockMoveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar pozitif olmalı")
		}
		if body.Note == "" {
			body.Note = "Manuel stok girişi"
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

		var ing models.Ingredient
		if err := tx.First(&ing, "id = ?", id).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		if err := tx.Model(&models.Ingredient{}).
			Where("id = ?", ing.ID).
			UpdateColumn("current_stock", gorm.Expr("current_stock + ?", body.Quantity)).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
		}

		entry := models.InventoryTransaction{
			IngredientID:    ing.ID,
			TransactionType: models.TxRestock,
			Quantity:        body.Quantity,
			Note:            body.Note,
			CreatedBy:       ident.UserID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydı oluşturulamadı")
		}

		if err := tx.First(&ing, "id = ?", ing.ID).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Stok okunamadı")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "ingredient",
			EntityID:    ing.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Stok girişi: %s +%.2f %s", ing.Name, body.Quantity, ing.Unit),
			After:       fiber.Map{"current_stock": ing.CurrentStock},
		})

		return c.JSON(fiber.Map{
			"success":   true,
			"new_stock": ing.CurrentStock,
			"message":   fmt.Sprintf("%s stoğuna %.2f %s eklendi", ing.Name, body.Quantity, ing.Unit),
		})
	}
}
