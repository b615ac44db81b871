package models

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleOwner    UserRole = "owner"
	RoleChef     UserRole = "chef"
	RoleClerk    UserRole = "clerk"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Username     string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null;default:customer"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
