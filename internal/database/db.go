package database

import (
	"log"

	"lezzet-backend/internal/config"
	"lezzet-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// Çok adımlı yazan her handler kendi transaction'ını açıyor,
	// tekil statement'lar için GORM'un otomatik sarmalaması kapalı.
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Order{},
		&models.OrderItem{},
		&models.Ingredient{},
		&models.InventoryTransaction{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
		&models.Expense{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	seedDefaultOwner()

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// seedDefaultOwner: ilk kurulumda giriş yapılabilsin diye varsayılan
// işletme sahibi hesabı oluşturur. Şifre ilk girişten sonra değiştirilmeli.
func seedDefaultOwner() {
	var count int64
	DB.Model(&models.User{}).Where("role = ?", models.RoleOwner).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Varsayılan sahip şifresi hashlenemedi: %v", err)
		return
	}

	owner := models.User{
		Username:     "Restaurant Owner",
		Email:        "owner@restaurant.com",
		PasswordHash: string(hash),
		Role:         models.RoleOwner,
	}
	if err := DB.Create(&owner).Error; err != nil {
		log.Printf("Varsayılan sahip hesabı oluşturulamadı: %v", err)
		return
	}
	log.Println("Varsayılan sahip hesabı oluşturuldu: owner@restaurant.com")
}
