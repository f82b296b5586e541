package usecase

import "app/internal/domain/model"

// 操作者。セッションから暗黙に取らず、毎回明示的に渡す。
type Actor struct {
	UserID int64
	Role   model.Role
}
