package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// unique制約違反（注文番号・取引IDの重複）
var ErrConflict = errors.New("conflict")

// メニューの取得だけを約束。このコアからメニューは書かない。
type MenuItemRepository interface {
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)
}
