package usecase

import (
	"strings"

	"github.com/google/uuid"
)

// 注文番号の払い出し。一意性の最終保証はDBのuniqueIndex側。
type OrderNumberGenerator interface {
	NextOrderNumber() string
}

type UUIDOrderNumberGenerator struct{}

func NewUUIDOrderNumberGenerator() *UUIDOrderNumberGenerator {
	return &UUIDOrderNumberGenerator{}
}

func (g *UUIDOrderNumberGenerator) NextOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString())
}
