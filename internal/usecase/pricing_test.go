package usecase

import (
	"context"
	"testing"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func testCatalog() *CatalogStub {
	return NewCatalogStub(
		model.MenuItem{ID: 7, Name: "Margherita", Price: dec("14.99"), IsAvailable: true},
		model.MenuItem{ID: 8, Name: "Tiramisu", Price: dec("6.50"), IsAvailable: true},
		model.MenuItem{ID: 9, Name: "Seasonal Special", Price: dec("22.00"), IsAvailable: false},
	)
}

func defaultEngine() *PricingEngine {
	return NewPricingEngine(ZeroTax{}, WaivableDeliveryFee{Fee: dec("5.00"), WaiveAbove: dec("50.00")})
}

func TestComputeOrder_DeliveryBelowThreshold(t *testing.T) {
	priced, err := defaultEngine().ComputeOrder(context.Background(), testCatalog(),
		[]RequestedLine{{MenuItemID: 7, Quantity: 2}}, model.OrderTypeDelivery)

	assert.NoError(t, err)
	assertDecimal(t, "29.98", priced.Subtotal)
	assertDecimal(t, "0.00", priced.TaxAmount)
	assertDecimal(t, "5.00", priced.DeliveryFee)
	assertDecimal(t, "34.98", priced.Total)

	assert.Len(t, priced.Lines, 1)
	assertDecimal(t, "14.99", priced.Lines[0].UnitPrice)
	assertDecimal(t, "29.98", priced.Lines[0].LineTotal)
	assert.Equal(t, "Margherita", priced.Lines[0].ItemName)
}

func TestComputeOrder_DineInHasNoDeliveryFee(t *testing.T) {
	priced, err := defaultEngine().ComputeOrder(context.Background(), testCatalog(),
		[]RequestedLine{{MenuItemID: 7, Quantity: 2}}, model.OrderTypeDineIn)

	assert.NoError(t, err)
	assertDecimal(t, "29.98", priced.Subtotal)
	assertDecimal(t, "0.00", priced.DeliveryFee)
	assertDecimal(t, "29.98", priced.Total)
}

func TestComputeOrder_FeeWaivedAtThreshold(t *testing.T) {
	//14.99*3 + 6.50 = 51.47 >= 50.00
	priced, err := defaultEngine().ComputeOrder(context.Background(), testCatalog(),
		[]RequestedLine{{MenuItemID: 7, Quantity: 3}, {MenuItemID: 8, Quantity: 1}}, model.OrderTypeDelivery)

	assert.NoError(t, err)
	assertDecimal(t, "51.47", priced.Subtotal)
	assertDecimal(t, "0.00", priced.DeliveryFee)
	assertDecimal(t, "51.47", priced.Total)
}

func TestComputeOrder_FlatFeeIgnoresThreshold(t *testing.T) {
	engine := NewPricingEngine(ZeroTax{}, FlatDeliveryFee{Fee: dec("5.00")})

	priced, err := engine.ComputeOrder(context.Background(), testCatalog(),
		[]RequestedLine{{MenuItemID: 7, Quantity: 10}}, model.OrderTypeDelivery)

	assert.NoError(t, err)
	assertDecimal(t, "149.90", priced.Subtotal)
	assertDecimal(t, "5.00", priced.DeliveryFee)
	assertDecimal(t, "154.90", priced.Total)
}

func TestComputeOrder_RateTax(t *testing.T) {
	engine := NewPricingEngine(RateTax{Rate: dec("0.10")}, WaivableDeliveryFee{Fee: dec("5.00"), WaiveAbove: dec("50.00")})

	priced, err := engine.ComputeOrder(context.Background(), testCatalog(),
		[]RequestedLine{{MenuItemID: 7, Quantity: 2}}, model.OrderTypeDelivery)

	assert.NoError(t, err)
	assertDecimal(t, "29.98", priced.Subtotal)
	assertDecimal(t, "3.00", priced.TaxAmount)
	assertDecimal(t, "5.00", priced.DeliveryFee)
	assertDecimal(t, "37.98", priced.Total)
}

func TestComputeOrder_TotalIdentity(t *testing.T) {
	engine := NewPricingEngine(RateTax{Rate: dec("0.08")}, WaivableDeliveryFee{Fee: dec("5.00"), WaiveAbove: dec("50.00")})

	priced, err := engine.ComputeOrder(context.Background(), testCatalog(),
		[]RequestedLine{{MenuItemID: 7, Quantity: 1}, {MenuItemID: 8, Quantity: 3}}, model.OrderTypeDelivery)

	assert.NoError(t, err)

	//total == subtotal + tax + fee、subtotal == Σ(単価×数量)
	sum := decimal.Zero
	for _, l := range priced.Lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	assert.True(t, sum.Equal(priced.Subtotal))
	assert.True(t, priced.Subtotal.Add(priced.TaxAmount).Add(priced.DeliveryFee).Equal(priced.Total))
}

func TestComputeOrder_UnknownItemAborts(t *testing.T) {
	_, err := defaultEngine().ComputeOrder(context.Background(), testCatalog(),
		[]RequestedLine{{MenuItemID: 7, Quantity: 1}, {MenuItemID: 999, Quantity: 1}}, model.OrderTypeDineIn)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, CodeItemNotFound, he.Code)
}

func TestComputeOrder_UnavailableItemAborts(t *testing.T) {
	_, err := defaultEngine().ComputeOrder(context.Background(), testCatalog(),
		[]RequestedLine{{MenuItemID: 9, Quantity: 1}}, model.OrderTypeDineIn)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, CodeItemNotFound, he.Code)
}

func TestComputeOrder_RejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int64{0, -1} {
		_, err := defaultEngine().ComputeOrder(context.Background(), testCatalog(),
			[]RequestedLine{{MenuItemID: 7, Quantity: qty}}, model.OrderTypeDineIn)

		he, ok := AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, CodeValidation, he.Code)
	}
}
