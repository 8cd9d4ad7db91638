package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autotradehub/autotradehub-backend/pkg/enums"
)

// Order is a completed checkout, optionally attributed to a partner store.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	PartnerID     *uuid.UUID          `gorm:"column:partner_id;type:uuid"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	Currency      enums.Currency      `gorm:"column:currency;not null;default:'USD'"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	BaseCostTotal decimal.Decimal     `gorm:"column:base_cost_total;type:numeric(12,2);not null"`
	ShippingFee   decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(12,2);not null;default:0"`
	TaxFee        decimal.Decimal     `gorm:"column:tax_fee;type:numeric(12,2);not null;default:0"`
	PaidOut       bool                `gorm:"column:paid_out;not null;default:false"`
	PayoutAmount  *decimal.Decimal    `gorm:"column:payout_amount;type:numeric(12,2)"`
	PayoutDate    *time.Time          `gorm:"column:payout_date"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
