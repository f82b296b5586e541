package model

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
	RoleAdmin    Role = "ADMIN"
)

// スタッフ以上なら進行状態を進められる
func (r Role) IsStaffOrAdmin() bool {
	return r == RoleStaff || r == RoleAdmin
}

type User struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Email       string `gorm:"uniqueIndex;not null"`
	Role        Role   `gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	IsActive    bool   `gorm:"not null;default:true"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
