package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ゲートウェイのイベントごとに1行、追記のみ。作成後は更新しない。
type Payment struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;index" json:"order_id"`

	Gateway string `gorm:"type:varchar(50);not null" json:"gateway"`

	//同じwebhookを二重処理しないための冪等キー
	TransactionID string `gorm:"type:varchar(255);not null;uniqueIndex" json:"transaction_id"`

	Amount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status string          `gorm:"type:varchar(20);not null" json:"status"`
	Method string          `gorm:"type:varchar(50)" json:"method,omitempty"`

	PaidAt *time.Time `json:"paid_at,omitempty"`

	//JSON文字列で保存する。
	Details string `gorm:"type:text" json:"details,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
