package models

import "time"

type Ingredient struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:255;not null;unique"`
	CurrentStock float64 `gorm:"not null;default:0"`
	Unit         string  `gorm:"size:50;not null"` // kg, adet, litre vs.
	ReorderLevel float64 `gorm:"not null;default:0"`
	InitialStock float64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	StockStatusLow        = "low"
	StockStatusWarning    = "warning"
	StockStatusSufficient = "sufficient"
)

// StockStatus: reorder_level'a göre türetilmiş stok durumu.
// Eşikler: <= seviye "low", <= 1.5x seviye "warning", gerisi "sufficient".
func (i Ingredient) StockStatus() string {
	switch {
	case i.CurrentStock <= i.ReorderLevel:
		return StockStatusLow
	case i.CurrentStock <= i.ReorderLevel*1.5:
		return StockStatusWarning
	default:
		return StockStatusSufficient
	}
}

type TransactionType string

const (
	TxPurchase   TransactionType = "purchase"
	TxUsage      TransactionType = "usage"
	TxRestock    TransactionType = "restock"
	TxInitial    TransactionType = "initial"
	TxAdjustment TransactionType = "adjustment"
)

// InventoryTransaction: stok defteri kaydı. Append-only; her stok hareketi
// tam bir adet kayıt üretir. Silme yalnızca malzeme cascade silmesiyle olur.
type InventoryTransaction struct {
	ID              uint            `gorm:"primaryKey"`
	IngredientID    uint            `gorm:"index;not null"`
	TransactionType TransactionType `gorm:"size:20;not null"`
	Quantity        float64         `gorm:"not null"`
	Note            string          `gorm:"type:text"`
	CreatedBy       uint
	CreatedAt       time.Time
}
