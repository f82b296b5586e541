package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 注文番号衝突の再試行上限。超えたら503。
const orderNumberMaxAttempts = 3

type OrderUsecase struct {
	tx      repo.TransactionManager
	pricing *PricingEngine
	numbers OrderNumberGenerator
}

func NewOrderUsecase(tx repo.TransactionManager, pricing *PricingEngine, numbers OrderNumberGenerator) *OrderUsecase {
	return &OrderUsecase{tx: tx, pricing: pricing, numbers: numbers}
}

type PlaceOrderItemInput struct {
	MenuItemID          int64
	Quantity            int64
	Customizations      string
	SpecialInstructions string
}

type PlaceOrderInput struct {
	Items           []PlaceOrderItemInput
	OrderType       string
	DeliveryAddress string
	PaymentMethod   string
	Notes           string
}

type OrderLineOutput struct {
	MenuItemID          int64           `json:"menu_item_id"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int64           `json:"quantity"`
	LineTotal           decimal.Decimal `json:"line_total"`
	Customizations      string          `json:"customizations,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	UserID          int64             `json:"user_id"`
	OrderType       string            `json:"order_type"`
	DeliveryAddress string            `json:"delivery_address,omitempty"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	PaymentStatus   string            `json:"payment_status"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	TaxAmount       decimal.Decimal   `json:"tax_amount"`
	DeliveryFee     decimal.Decimal   `json:"delivery_fee"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	Status          string            `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderLineOutput `json:"items"`
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor Actor, in PlaceOrderInput) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}

	//構造チェックは永続化の前に全部やる
	if len(in.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "items must not be empty")
	}
	for _, it := range in.Items {
		if it.MenuItemID <= 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid menu_item_id")
		}
		if it.Quantity < 1 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "quantity must be at least 1")
		}
	}

	orderType := model.OrderType(strings.TrimSpace(in.OrderType))
	if !model.ValidOrderType(orderType) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid order_type")
	}

	//delivery_addressはdeliveryのときだけ
	address := strings.TrimSpace(in.DeliveryAddress)
	if orderType == model.OrderTypeDelivery && address == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "delivery_address is required for delivery orders")
	}
	if orderType != model.OrderTypeDelivery && address != "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "delivery_address is only allowed for delivery orders")
	}

	method := strings.TrimSpace(in.PaymentMethod)
	if len(method) > 50 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid payment_method")
	}

	requested := make([]RequestedLine, 0, len(in.Items))
	for _, it := range in.Items {
		requested = append(requested, RequestedLine{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}

	var out OrderOutput

	//注文番号が衝突したら番号を作り直してトランザクションごとやり直す
	for attempt := 0; attempt < orderNumberMaxAttempts; attempt++ {
		number := u.numbers.NextOrderNumber()

		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			//価格解決はtxの中。スナップショットはコミット時点の価格
			priced, err := u.pricing.ComputeOrder(ctx, r.MenuItems(), requested, orderType)
			if err != nil {
				return err
			}

			now := time.Now()
			orderID, err := r.Orders().Create(ctx, model.Order{
				UserID:          actor.UserID,
				OrderNumber:     number,
				OrderType:       orderType,
				DeliveryAddress: address,
				PaymentMethod:   method,
				PaymentStatus:   model.PaymentStatusPending,
				Subtotal:        priced.Subtotal,
				TaxAmount:       priced.TaxAmount,
				DeliveryFee:     priced.DeliveryFee,
				TotalAmount:     priced.Total,
				Status:          model.OrderStatusPending,
				Notes:           in.Notes,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
			if err != nil {
				if errors.Is(err, repo.ErrConflict) {
					return err
				}
				return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
			}

			//明細。pricedの並びは入力と同じ
			lines := make([]model.OrderLine, 0, len(priced.Lines))
			for i, pl := range priced.Lines {
				lines = append(lines, model.OrderLine{
					OrderID:             orderID,
					MenuItemID:          pl.MenuItemID,
					ItemNameSnapshot:    pl.ItemName,
					UnitPriceSnapshot:   pl.UnitPrice,
					Quantity:            pl.Quantity,
					LineTotal:           pl.LineTotal,
					Customizations:      in.Items[i].Customizations,
					SpecialInstructions: in.Items[i].SpecialInstructions,
					CreatedAt:           now,
				})
			}
			if err := r.OrderLines().CreateBulk(ctx, orderID, lines); err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
			}

			created := model.Order{
				ID:              orderID,
				UserID:          actor.UserID,
				OrderNumber:     number,
				OrderType:       orderType,
				DeliveryAddress: address,
				PaymentMethod:   method,
				PaymentStatus:   model.PaymentStatusPending,
				Subtotal:        priced.Subtotal,
				TaxAmount:       priced.TaxAmount,
				DeliveryFee:     priced.DeliveryFee,
				TotalAmount:     priced.Total,
				Status:          model.OrderStatusPending,
				Notes:           in.Notes,
				CreatedAt:       now,
			}
			out = toOrderOutput(created, lines)
			return nil
		})

		if err == nil {
			return out, nil
		}
		if errors.Is(err, repo.ErrConflict) {
			continue
		}
		return OrderOutput{}, err
	}

	return OrderOutput{}, NewHTTPError(http.StatusServiceUnavailable, CodeServiceUnavailable, "could not allocate order number")
}

// 管理者は全件、それ以外は自分の注文だけ（新しい順）
func (u *OrderUsecase) ListOrders(ctx context.Context, actor Actor, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if actor.UserID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var orders []model.Order
		var err error

		if actor.Role == model.RoleAdmin {
			orders, _, err = r.Orders().ListAdmin(ctx, f)
		} else {
			orders, _, err = r.Orders().ListByUserID(ctx, actor.UserID, f.Page, f.Limit)
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
			}
			outs = append(outs, toOrderOutput(o, lines))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 読めるのは本人・スタッフ・管理者だけ
func (u *OrderUsecase) GetOrder(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, CodeOrderNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}
		if !actor.Role.IsStaffOrAdmin() && o.UserID != actor.UserID {
			return NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}

		out = toOrderOutput(o, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ステータス遷移。正当性チェックと書き込みは同一トランザクションのCASで行う。
func (u *OrderUsecase) TransitionStatus(ctx context.Context, actor Actor, orderID int64, targetStatus string) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid id")
	}

	target := model.OrderStatus(strings.TrimSpace(targetStatus))
	if !model.ValidOrderStatus(target) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, CodeOrderNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}

		//客にできるのは自分のpending注文のキャンセルだけ。
		//それ以降のキャンセルはスタッフ対応。
		if !actor.Role.IsStaffOrAdmin() {
			if o.UserID != actor.UserID {
				return NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
			}
			if target != model.OrderStatusCancelled {
				return NewHTTPError(http.StatusForbidden, CodeForbidden, "only staff can advance an order")
			}
			if o.Status != model.OrderStatusPending {
				return NewHTTPError(http.StatusForbidden, CodeForbidden, "order can no longer be cancelled by the customer")
			}
		}

		if !model.CanTransition(o.Status, target) {
			return NewHTTPError(http.StatusConflict, CodeIllegalTransition, "illegal status transition")
		}

		affected, err := r.Orders().UpdateStatusGuard(ctx, orderID, o.Status, target)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}
		if affected == 0 {
			//並行して別の遷移が先に入った
			return NewHTTPError(http.StatusConflict, CodeIllegalTransition, "order status changed concurrently")
		}

		//監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"status":"` + string(o.Status) + `"}`
		afterJSON := `{"status":"` + string(target) + `"}`
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}

		o.Status = target
		out = toOrderOutput(o, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, lines []model.OrderLine) OrderOutput {
	outItems := make([]OrderLineOutput, 0, len(lines))
	for _, l := range lines {
		outItems = append(outItems, OrderLineOutput{
			MenuItemID:          l.MenuItemID,
			Name:                l.ItemNameSnapshot,
			UnitPrice:           l.UnitPriceSnapshot,
			Quantity:            l.Quantity,
			LineTotal:           l.LineTotal,
			Customizations:      l.Customizations,
			SpecialInstructions: l.SpecialInstructions,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		OrderType:       string(o.OrderType),
		DeliveryAddress: o.DeliveryAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   string(o.PaymentStatus),
		Subtotal:        o.Subtotal,
		TaxAmount:       o.TaxAmount,
		DeliveryFee:     o.DeliveryFee,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
