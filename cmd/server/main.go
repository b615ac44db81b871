package main

import (
	"log"
	"strings"

	"lezzet-backend/internal/analytics"
	"lezzet-backend/internal/audit"
	"lezzet-backend/internal/auth"
	"lezzet-backend/internal/config"
	"lezzet-backend/internal/database"
	"lezzet-backend/internal/employee"
	"lezzet-backend/internal/expense"
	"lezzet-backend/internal/inventory"
	"lezzet-backend/internal/models"
	"lezzet-backend/internal/order"
	"lezzet-backend/internal/purchase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"message": e.Message,
				})
			}
			log.Println("Beklenmeyen hata:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den temizle
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Public auth
	app.Post("/api/auth/register", auth.RegisterHandler(cfg))
	app.Post("/api/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := app.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/api/user/session", auth.SessionHandler())

	// Sipariş akışı
	protected.Post("/create_order", order.CreateOrderHandler())

	chefRoutes := protected.Group("/chef")
	chefRoutes.Use(auth.RequireRole(models.RoleChef, models.RoleOwner))
	chefRoutes.Get("/orders", order.ChefListOrdersHandler())
	chefRoutes.Post("/update_order_status", order.UpdateOrderStatusHandler())

	clerkRoutes := protected.Group("/clerk")
	clerkRoutes.Use(auth.RequireRole(models.RoleClerk, models.RoleOwner))
	clerkRoutes.Post("/complete_order", order.CompleteOrderHandler())

	ownerRoutes := protected.Group("/owner")
	ownerRoutes.Use(auth.RequireRole(models.RoleOwner))
	ownerRoutes.Get("/orders_report", order.OrdersReportHandler())
	ownerRoutes.Get("/sales_summary", order.SalesSummaryHandler())
	ownerRoutes.Get("/manager_metrics", analytics.ManagerMetricsHandler())
	ownerRoutes.Get("/ingredient_usage", analytics.IngredientUsageHandler())

	// Envanter
	protected.Get("/api/ingredients", inventory.ListIngredientsHandler())
	protected.Get("/api/ingredients/low-stock", inventory.LowStockHandler())
	protected.Get("/api/ingredients/units", inventory.CommonUnitsHandler())
	protected.Post("/api/ingredients/:id/use",
		auth.RequireRole(models.RoleChef, models.RoleOwner), inventory.UseIngredientHandler())

	ingredientAdmin := protected.Group("/api/ingredients")
	ingredientAdmin.Use(auth.RequireRole(models.RoleOwner))
	ingredientAdmin.Post("/add", inventory.AddIngredientHandler())
	ingredientAdmin.Post("/:id/restock", inventory.RestockIngredientHandler())
	ingredientAdmin.Put("/:id/update", inventory.UpdateIngredientHandler())
	ingredientAdmin.Delete("/:id", inventory.DeleteIngredientHandler())

	// Satın alma
	ownerAPI := protected.Group("", auth.RequireRole(models.RoleOwner))
	ownerAPI.Post("/api/generate-po", purchase.GeneratePOHandler())
	ownerAPI.Get("/api/purchase-orders", purchase.ListPurchaseOrdersHandler())
	ownerAPI.Get("/api/purchase-orders/:id", purchase.GetPurchaseOrderHandler())
	ownerAPI.Put("/api/purchase-orders/:id/status", purchase.UpdatePOStatusHandler())

	// Giderler
	ownerAPI.Get("/api/expenses", expense.ListExpensesHandler())
	ownerAPI.Post("/api/expenses", expense.CreateExpenseHandler())

	// Personel
	ownerAPI.Get("/api/employees", employee.ListEmployeesHandler())
	ownerAPI.Post("/api/employees", employee.CreateEmployeeHandler())
	ownerAPI.Delete("/api/employees/:id", employee.DeleteEmployeeHandler())
	ownerAPI.Put("/api/employees/:id/status", employee.UpdateEmployeeStatusHandler())
	ownerAPI.Post("/api/employees/:id/reset-password", employee.ResetPasswordHandler())

	// Analitik
	ownerAPI.Get("/api/analytics/monthly-sales", analytics.MonthlySalesHandler())
	ownerAPI.Get("/api/analytics/ingredient-stock", analytics.IngredientStockHandler())
	ownerAPI.Get("/api/analytics/expense-distribution", analytics.ExpenseDistributionHandler())
	ownerAPI.Get("/api/analytics/sales-vs-expenses", analytics.SalesVsExpensesHandler())
	ownerAPI.Get("/api/analytics/top-selling-items", analytics.TopSellingItemsHandler())
	ownerAPI.Get("/api/analytics/order-metrics", analytics.OrderMetricsHandler())

	// Audit
	ownerAPI.Get("/api/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
