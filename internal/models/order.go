package models

import "time"

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// OrderStatusTransitions: sipariş durum geçiş tablosu.
// Şimdilik bilinçli olarak serbest: her durumdan her duruma geçilebilir
// (mutfak akışı henüz oturmadığı için garsonlar durumu geri alabiliyor).
var OrderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced:    {OrderPlaced, OrderPreparing, OrderReady, OrderServed, OrderDelivered, OrderCancelled},
	OrderPreparing: {OrderPlaced, OrderPreparing, OrderReady, OrderServed, OrderDelivered, OrderCancelled},
	OrderReady:     {OrderPlaced, OrderPreparing, OrderReady, OrderServed, OrderDelivered, OrderCancelled},
	OrderServed:    {OrderPlaced, OrderPreparing, OrderReady, OrderServed, OrderDelivered, OrderCancelled},
	OrderDelivered: {OrderPlaced, OrderPreparing, OrderReady, OrderServed, OrderDelivered, OrderCancelled},
	OrderCancelled: {OrderPlaced, OrderPreparing, OrderReady, OrderServed, OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	_, ok := OrderStatusTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range OrderStatusTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID                uint `gorm:"primaryKey"`
	CustomerID        *uint
	CustomerName      string        `gorm:"size:255"`
	CustomerEmail     string        `gorm:"size:255"`
	Subtotal          float64       `gorm:"not null;default:0"`
	DiscountAmount    float64       `gorm:"not null;default:0"`
	DiscountPercent   float64       `gorm:"not null;default:0"`
	FinalTotal        float64       `gorm:"not null;default:0"`
	Currency          string        `gorm:"size:10;not null;default:TRY"`
	PaymentProvider   string        `gorm:"size:50"`
	ProviderPaymentID string        `gorm:"size:255"`
	PaymentStatus     PaymentStatus `gorm:"size:20;not null;default:pending"`
	CurrentStatus     OrderStatus   `gorm:"size:20;index;not null;default:placed"`
	TableNo           string        `gorm:"size:50"`
	Meta              string        `gorm:"type:jsonb"`
	CreatedAt         time.Time     `gorm:"index"`
	UpdatedAt         time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem: sipariş anındaki sepet satırının değişmez kopyası.
// Oluşturulduktan sonra asla güncellenmez.
type OrderItem struct {
	ID         uint    `gorm:"primaryKey"`
	OrderID    uint    `gorm:"index;not null"`
	ItemName   string  `gorm:"size:255;not null"`
	Qty        int     `gorm:"not null"`
	UnitPrice  float64 `gorm:"not null"`
	TotalPrice float64 `gorm:"not null"`
	CreatedAt  time.Time
}
