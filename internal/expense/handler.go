package expense

import (
	"fmt"
	"time"

	"lezzet-backend/internal/audit"
	"lezzet-backend/internal/auth"
	"lezzet-backend/internal/database"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateExpenseRequest struct {
	ExpenseDate  string  `json:"expense_date"`
	ExpenseType  string  `json:"expense_type"`
	SupplierName string  `json:"supplier_name"`
	Payee        string  `json:"payee"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	PaymentMode  string  `json:"payment_mode"`
}

type ExpenseResponse struct {
	ID            uint    `json:"id"`
	ExpenseNumber string  `json:"expense_number"`
	ExpenseDate   string  `json:"expense_date"`
	ExpenseType   string  `json:"expense_type"`
	SupplierName  string  `json:"supplier_name"`
	Payee         string  `json:"payee"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	PaymentMode   string  `json:"payment_mode"`
}

// GET /api/expenses?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
// Tarih aralığı zorunlu; liste ile birlikte özet döner.
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startStr := c.Query("start_date")
		endStr := c.Query("end_date")
		if startStr == "" || endStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "start_date ve end_date zorunlu")
		}

		if _, err := time.Parse("2006-01-02", startStr); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz start_date formatı")
		}
		if _, err := time.Parse("2006-01-02", endStr); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz end_date formatı")
		}

		var rows []models.Expense
		if err := database.DB.
			Where("expense_date BETWEEN ? AND ?", startStr, endStr).
			Order("expense_date desc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		var total float64
		expenses := make([]ExpenseResponse, 0, len(rows))
		for _, e := range rows {
			total += e.Amount
			expenses = append(expenses, ExpenseResponse{
				ID:            e.ID,
				ExpenseNumber: e.ExpenseNumber,
				ExpenseDate:   e.ExpenseDate.Format("2006-01-02"),
				ExpenseType:   e.ExpenseType,
				SupplierName:  e.SupplierName,
				Payee:         e.Payee,
				Description:   e.Description,
				Amount:        e.Amount,
				PaymentMode:   e.PaymentMode,
			})
		}

		average := 0.0
		if len(rows) > 0 {
			average = total / float64(len(rows))
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"expenses": expenses,
			"summary": fiber.Map{
				"expense_count":  len(rows),
				"total_amount":   total,
				"average_amount": average,
			},
		})
	}
}

// POST /api/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ExpenseType == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Gider türü zorunlu")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar sıfırdan büyük olmalı")
		}

		expenseDate := time.Now().UTC()
		if body.ExpenseDate != "" {
			parsed, err := time.Parse("2006-01-02", body.ExpenseDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz expense_date formatı")
			}
			expenseDate = parsed
		}

		paymentMode := body.PaymentMode
		if paymentMode == "" {
			paymentMode = "Cash"
		}

		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		exp := models.Expense{
			ExpenseNumber: fmt.Sprintf("EXP-%d", time.Now().UnixNano()),
			ExpenseDate:   expenseDate,
			ExpenseType:   body.ExpenseType,
			SupplierName:  body.SupplierName,
			Payee:         body.Payee,
			Description:   body.Description,
			Amount:        body.Amount,
			PaymentMode:   paymentMode,
			CreatedBy:     ident.UserID,
		}

		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider kaydedilemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Gider kaydedildi: %s (%.2f)", exp.ExpenseNumber, exp.Amount),
			After:       fiber.Map{"expense_number": exp.ExpenseNumber, "amount": exp.Amount, "expense_type": exp.ExpenseType},
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":        true,
			"expense_id":     exp.ID,
			"expense_number": exp.ExpenseNumber,
		})
	}
}
