package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/autotradehub/autotradehub-backend/pkg/enums"
)

// PaymentMethod stores a customer's payment instrument on file.
type PaymentMethod struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	PaymentType    enums.PaymentMethodType `gorm:"column:payment_type;not null"`
	Provider       string                  `gorm:"column:provider;not null"`
	AccountDetails json.RawMessage         `gorm:"column:account_details;type:jsonb"`
	IsDefault      bool                    `gorm:"column:is_default;not null;default:false"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
