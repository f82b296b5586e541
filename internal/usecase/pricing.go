package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type RequestedLine struct {
	MenuItemID int64
	Quantity   int64
}

type PricedLine struct {
	MenuItemID int64
	ItemName   string
	Quantity   int64
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
}

type PricedOrder struct {
	Lines       []PricedLine
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// 税額の計算方法を差し替えられるようにする
type TaxPolicy interface {
	TaxFor(subtotal decimal.Decimal) decimal.Decimal
}

type ZeroTax struct{}

func (ZeroTax) TaxFor(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

type RateTax struct {
	Rate decimal.Decimal
}

func (t RateTax) TaxFor(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(t.Rate).Round(2)
}

// 配達手数料。注文タイプと小計から決める
type DeliveryFeePolicy interface {
	FeeFor(orderType model.OrderType, subtotal decimal.Decimal) decimal.Decimal
}

type FlatDeliveryFee struct {
	Fee decimal.Decimal
}

func (p FlatDeliveryFee) FeeFor(orderType model.OrderType, _ decimal.Decimal) decimal.Decimal {
	if orderType != model.OrderTypeDelivery {
		return decimal.Zero
	}
	return p.Fee
}

// 小計がしきい値以上なら手数料を免除する
type WaivableDeliveryFee struct {
	Fee        decimal.Decimal
	WaiveAbove decimal.Decimal
}

func (p WaivableDeliveryFee) FeeFor(orderType model.OrderType, subtotal decimal.Decimal) decimal.Decimal {
	if orderType != model.OrderTypeDelivery {
		return decimal.Zero
	}
	if p.WaiveAbove.IsPositive() && subtotal.GreaterThanOrEqual(p.WaiveAbove) {
		return decimal.Zero
	}
	return p.Fee
}

// 単価は常にメニューの現在価格。クライアントが送ってきた価格は見ない。
type PricingEngine struct {
	tax TaxPolicy
	fee DeliveryFeePolicy
}

func NewPricingEngine(tax TaxPolicy, fee DeliveryFeePolicy) *PricingEngine {
	return &PricingEngine{tax: tax, fee: fee}
}

func (e *PricingEngine) ComputeOrder(ctx context.Context, menuItems repo.MenuItemRepository, lines []RequestedLine, orderType model.OrderType) (PricedOrder, error) {
	priced := make([]PricedLine, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		if line.Quantity < 1 {
			return PricedOrder{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "quantity must be at least 1")
		}

		item, err := menuItems.FindByID(ctx, line.MenuItemID)
		if errors.Is(err, repo.ErrNotFound) {
			//1件でも解決できなければ全体を中断
			return PricedOrder{}, NewHTTPError(http.StatusNotFound, CodeItemNotFound, "menu item not found")
		}
		if err != nil {
			return PricedOrder{}, NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}
		if !item.IsAvailable {
			return PricedOrder{}, NewHTTPError(http.StatusNotFound, CodeItemNotFound, "menu item not available")
		}

		lineTotal := item.Price.Mul(decimal.NewFromInt(line.Quantity))
		priced = append(priced, PricedLine{
			MenuItemID: item.ID,
			ItemName:   item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  item.Price,
			LineTotal:  lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	tax := e.tax.TaxFor(subtotal)
	fee := e.fee.FeeFor(orderType, subtotal)

	return PricedOrder{
		Lines:       priced,
		Subtotal:    subtotal,
		TaxAmount:   tax,
		DeliveryFee: fee,
		Total:       subtotal.Add(tax).Add(fee),
	}, nil
}
