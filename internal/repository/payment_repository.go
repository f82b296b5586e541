package repository

import (
	"context"

	"app/internal/domain/model"
)

// 支払い行は追記のみ。更新も削除もしない。
type PaymentRepository interface {
	//transaction_idの重複はErrConflictを返す
	Create(ctx context.Context, p model.Payment) (model.Payment, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error)
}
