package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autotradehub/autotradehub-backend/pkg/enums"
)

// WalletTransaction is an immutable credit/debit record against a partner wallet.
type WalletTransaction struct {
	ID        uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID   uuid.UUID                   `gorm:"column:order_id;type:uuid;not null;index"`
	Amount    decimal.Decimal             `gorm:"column:amount;type:numeric(12,2);not null"`
	Type      enums.WalletTransactionType `gorm:"column:type;not null"`
	CreatedAt time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
