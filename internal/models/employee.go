package models

import "time"

type EmployeeRole string

const (
	EmployeeChef   EmployeeRole = "chef"
	EmployeeWaiter EmployeeRole = "waiter"
	EmployeeClerk  EmployeeRole = "clerk"
)

func (r EmployeeRole) Valid() bool {
	switch r {
	case EmployeeChef, EmployeeWaiter, EmployeeClerk:
		return true
	}
	return false
}

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee: personel kaydı. İlgili User satırıyla birlikte oluşturulur ve silinir.
type Employee struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    uint           `gorm:"index;not null"`
	Name      string         `gorm:"size:255;not null"`
	Email     string         `gorm:"size:255;uniqueIndex;not null"`
	Role      EmployeeRole   `gorm:"size:20;not null"`
	Status    EmployeeStatus `gorm:"size:20;not null;default:active"`
	HireDate  *time.Time     `gorm:"type:date"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
