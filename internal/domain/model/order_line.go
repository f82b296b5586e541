package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点の価格スナップショット。メニューの価格が後で変わっても不変。
type OrderLine struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64 `gorm:"not null;index" json:"order_id"`
	MenuItemID int64 `gorm:"not null;index" json:"menu_item_id"`

	ItemNameSnapshot  string          `gorm:"type:varchar(255);not null" json:"item_name_snapshot"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price_snapshot"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	LineTotal         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"line_total"`

	//JSON文字列で保存する。
	Customizations      string `gorm:"type:text" json:"customizations,omitempty"`
	SpecialInstructions string `gorm:"type:text" json:"special_instructions,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
