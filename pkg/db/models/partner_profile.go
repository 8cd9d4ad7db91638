package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerProfile is a seller's marketplace profile. The profile row id and the
// partner's user id are distinct identifiers; partner_products.partner_id
// references UserID, never ID.
type PartnerProfile struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CompanyName    string           `gorm:"column:company_name;not null"`
	Email          string           `gorm:"column:email;not null"`
	CommissionRate *decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2)"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
