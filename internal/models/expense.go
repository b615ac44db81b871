package models

import "time"

type Expense struct {
	ID            uint      `gorm:"primaryKey"`
	ExpenseNumber string    `gorm:"size:50;unique"`
	ExpenseDate   time.Time `gorm:"type:date;index;not null"`
	ExpenseType   string    `gorm:"size:100;not null"`
	SupplierName  string    `gorm:"size:255"`
	Payee         string    `gorm:"size:255"`
	Description   string    `gorm:"type:text"`
	Amount        float64   `gorm:"not null"`
	PaymentMode   string    `gorm:"size:50;not null;default:Cash"`
	CreatedBy     uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
