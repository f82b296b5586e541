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

type PaymentUsecase struct {
	tx repo.TransactionManager
}

func NewPaymentUsecase(tx repo.TransactionManager) *PaymentUsecase {
	return &PaymentUsecase{tx: tx}
}

type RecordPaymentInput struct {
	Gateway       string
	TransactionID string
	Amount        decimal.Decimal
	Status        string
	Method        string
	PaidAt        *time.Time
	Details       string
}

type PaymentOutput struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	Gateway       string          `json:"gateway"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Method        string          `json:"method,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Details       string          `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ゲートウェイからの結果を記録するだけ。注文のpayment_statusはここでは触らない。
func (u *PaymentUsecase) RecordPayment(ctx context.Context, actor Actor, orderID int64, in RecordPaymentInput) (PaymentOutput, error) {
	if actor.UserID <= 0 {
		return PaymentOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if !actor.Role.IsStaffOrAdmin() {
		return PaymentOutput{}, NewHTTPError(http.StatusForbidden, CodeForbidden, "forbidden")
	}
	if orderID <= 0 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid id")
	}

	gateway := strings.TrimSpace(in.Gateway)
	if gateway == "" || len(gateway) > 50 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid gateway")
	}
	txID := strings.TrimSpace(in.TransactionID)
	if txID == "" || len(txID) > 255 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid transaction_id")
	}
	if !in.Amount.IsPositive() {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "amount must be positive")
	}
	status := strings.TrimSpace(in.Status)
	if status == "" || len(status) > 20 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid status")
	}

	var out PaymentOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, CodeOrderNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}

		created, err := r.Payments().Create(ctx, model.Payment{
			OrderID:       orderID,
			Gateway:       gateway,
			TransactionID: txID,
			Amount:        in.Amount,
			Status:        status,
			Method:        strings.TrimSpace(in.Method),
			PaidAt:        in.PaidAt,
			Details:       in.Details,
			CreatedAt:     time.Now(),
		})
		if err != nil {
			//check-then-insertではなくuniqueIndexで弾く
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, CodeDuplicateTransaction, "transaction already recorded")
			}
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}

		out = toPaymentOutput(created)
		return nil
	})

	if err != nil {
		return PaymentOutput{}, err
	}
	return out, nil
}

// 注文への支払い試行を作成順で全部返す
func (u *PaymentUsecase) ListPayments(ctx context.Context, actor Actor, orderID int64) ([]PaymentOutput, error) {
	if actor.UserID <= 0 {
		return []PaymentOutput{}, NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return []PaymentOutput{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid id")
	}

	var outs []PaymentOutput

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

		payments, err := r.Payments().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeStorageFailure, "db error")
		}

		outs = make([]PaymentOutput, 0, len(payments))
		for _, p := range payments {
			outs = append(outs, toPaymentOutput(p))
		}
		return nil
	})

	if err != nil {
		return []PaymentOutput{}, err
	}
	return outs, nil
}

func toPaymentOutput(p model.Payment) PaymentOutput {
	return PaymentOutput{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Gateway:       p.Gateway,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Status:        p.Status,
		Method:        p.Method,
		PaidAt:        p.PaidAt,
		Details:       p.Details,
		CreatedAt:     p.CreatedAt,
	}
}
