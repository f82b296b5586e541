package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

func ValidOrderType(t OrderType) bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//人に見せる注文番号。挿入時にuniqueIndexで衝突検知する
	OrderNumber string `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`

	OrderType OrderType `gorm:"type:varchar(20);not null" json:"order_type"`

	//deliveryのときだけ必須
	DeliveryAddress string `gorm:"type:text" json:"delivery_address,omitempty"`

	PaymentMethod string        `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`

	//金額は全部サーバー側で計算。クライアントの値は使わない
	Subtotal    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	TaxAmount   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"tax_amount"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"delivery_fee"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
