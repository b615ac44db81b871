package employee

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"lezzet-backend/internal/audit"
	"lezzet-backend/internal/auth"
	"lezzet-backend/internal/database"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateEmployeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	HireDate string `json:"hire_date"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type EmployeeResponse struct {
	ID       uint                  `json:"id"`
	Name     string                `json:"name"`
	Email    string                `json:"email"`
	Role     models.EmployeeRole   `json:"role"`
	Status   models.EmployeeStatus `json:"status"`
	HireDate string                `json:"hire_date"`
	UserID   uint                  `json:"user_id"`
}

// tempPassword: ilk giriş için rastgele parola. Yanıt mesajında bir kez gösterilir.
func tempPassword() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Personel rolleri login rollerine birebir eşlenmez: garsonlar sisteme giriş
// yapmadığı için 'waiter' müşteri yetkisiyle açılır.
func loginRoleFor(role models.EmployeeRole) models.UserRole {
	switch role {
	case models.EmployeeChef:
		return models.RoleChef
	case models.EmployeeClerk:
		return models.RoleClerk
	default:
		return models.RoleCustomer
	}
}

// GET /api/employees
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Employee
		if err := database.DB.Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel listelenemedi")
		}

		employees := make([]EmployeeResponse, 0, len(rows))
		for _, e := range rows {
			hire := ""
			if e.HireDate != nil {
				hire = e.HireDate.Format("2006-01-02")
			}
			employees = append(employees, EmployeeResponse{
				ID:       e.ID,
				Name:     e.Name,
				Email:    e.Email,
				Role:     e.Role,
				Status:   e.Status,
				HireDate: hire,
				UserID:   e.UserID,
			})
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"employees": employees,
		})
	}
}

// POST /api/employees
// User + Employee tek transaction'da açılır; geçici parola yanıtta döner.
func CreateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" || body.Email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve email zorunlu")
		}

		role := models.EmployeeRole(body.Role)
		if !role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol")
		}

		var count int64
		if err := database.DB.Model(&models.User{}).
			Where("email = ?", body.Email).
			Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Email kontrolü yapılamadı")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu email ile kayıtlı bir kullanıcı zaten var")
		}

		var hireDate *time.Time
		if body.HireDate != "" {
			parsed, err := time.Parse("2006-01-02", body.HireDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz hire_date formatı")
			}
			hireDate = &parsed
		}

		plain, err := tempPassword()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Geçici parola üretilemedi")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parola oluşturulamadı")
		}

		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		user := models.User{
			Username:     body.Name,
			Email:        body.Email,
			PasswordHash: string(hashed),
			Role:         loginRoleFor(role),
		}

		tx := database.DB.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Create(&user).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		emp := models.Employee{
			UserID:   user.ID,
			Name:     body.Name,
			Email:    body.Email,
			Role:     role,
			Status:   models.EmployeeActive,
			HireDate: hireDate,
		}
		if err := tx.Create(&emp).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Personel kaydı oluşturulamadı")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel kaydı oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "employee",
			EntityID:    emp.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Personel eklendi: %s (%s)", emp.Name, emp.Role),
			After:       fiber.Map{"name": emp.Name, "email": emp.Email, "role": emp.Role},
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":     true,
			"employee_id": emp.ID,
			"message":     fmt.Sprintf("Personel oluşturuldu. Geçici parola: %s", plain),
		})
	}
}

// DELETE /api/employees/:id
// Personel ve bağlı kullanıcı birlikte silinir.
func DeleteEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz personel id")
		}

		var emp models.Employee
		if err := database.DB.First(&emp, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
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

		if err := tx.Delete(&models.Employee{}, emp.ID).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Personel silinemedi")
		}
		if err := tx.Delete(&models.User{}, emp.UserID).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı silinemedi")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "employee",
			EntityID:    emp.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Personel silindi: %s", emp.Name),
			Before:      fiber.Map{"name": emp.Name, "email": emp.Email, "role": emp.Role},
		})

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("'%s' personel kaydı silindi", emp.Name),
		})
	}
}

// PUT /api/employees/:id/status
func UpdateEmployeeStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz personel id")
		}

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		status := models.EmployeeStatus(body.Status)
		if status != models.EmployeeActive && status != models.EmployeeInactive {
			return fiber.NewError(fiber.StatusBadRequest, "Durum 'active' veya 'inactive' olmalı")
		}

		res := database.DB.Model(&models.Employee{}).
			Where("id = ?", id).
			Update("status", status)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Durum güncellenemedi")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Personel durumu '%s' olarak güncellendi", status),
		})
	}
}

// POST /api/employees/:id/reset-password
func ResetPasswordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz personel id")
		}

		var emp models.Employee
		if err := database.DB.First(&emp, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
		}

		plain, err := tempPassword()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Geçici parola üretilemedi")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parola oluşturulamadı")
		}

		if err := database.DB.Model(&models.User{}).
			Where("id = ?", emp.UserID).
			Update("password_hash", string(hashed)).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parola güncellenemedi")
		}

		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      ident.UserID,
			UserName:    ident.Username,
			EntityType:  "employee",
			EntityID:    emp.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Parola sıfırlandı: %s", emp.Name),
		})

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Yeni geçici parola: %s", plain),
		})
	}
}
