package audit

import (
	"lezzet-backend/internal/database"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?entity_type=...&limit=...
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		dbq := database.DB.Model(&models.AuditLog{}).Order("created_at desc").Limit(limit)

		if et := c.Query("entity_type"); et != "" {
			dbq = dbq.Where("entity_type = ?", et)
		}

		var logs []models.AuditLog
		if err := dbq.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Audit logları listelenemedi")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"logs":    logs,
		})
	}
}
