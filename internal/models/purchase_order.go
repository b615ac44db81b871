package models

import "time"

type POStatus string

const (
	POPending   POStatus = "pending"
	POOrdered   POStatus = "ordered"
	POReceived  POStatus = "received"
	POCancelled POStatus = "cancelled"
)

func (s POStatus) Valid() bool {
	switch s {
	case POPending, POOrdered, POReceived, POCancelled:
		return true
	}
	return false
}

type PurchaseOrder struct {
	ID           uint     `gorm:"primaryKey"`
	PONumber     string   `gorm:"column:po_number;size:100;not null;unique"`
	Status       POStatus `gorm:"size:20;not null;default:pending"`
	TotalAmount  float64  `gorm:"not null;default:0"`
	SupplierInfo string   `gorm:"type:jsonb"`
	CreatedBy    uint
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Items []PurchaseOrderItem `gorm:"foreignKey:POID"`
}

type PurchaseOrderItem struct {
	ID           uint    `gorm:"primaryKey"`
	POID         uint    `gorm:"column:po_id;index;not null"`
	IngredientID uint    `gorm:"index;not null"`
	Quantity     float64 `gorm:"not null"`
	UnitPrice    float64 `gorm:"not null"`
	TotalPrice   float64 `gorm:"not null"`
	CreatedAt    time.Time
}
