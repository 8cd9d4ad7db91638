package orders

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
	"github.com/autotradehub/autotradehub-backend/pkg/enums"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
)

// Order numbers are generated as upper-case alphanumerics with dashes
// (e.g. ATH-20260107-8F3K). Anything else is rejected before touching the DB.
var orderNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{2,63}$`)

// ItemView is one purchased line as shown on the public tracking page.
type ItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderView is the public shape of an order. It deliberately omits the buyer,
// the partner attribution and payout state.
type OrderView struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Currency      enums.Currency      `json:"currency"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	ShippingFee   decimal.Decimal     `json:"shipping_fee"`
	TaxFee        decimal.Decimal     `json:"tax_fee"`
	Items         []ItemView          `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Service exposes unauthenticated order tracking by order number.
type Service interface {
	GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderView, error)
}

type service struct {
	repo Repository
}

// NewService builds the public order lookup service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderView, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if !orderNumberPattern.MatchString(orderNumber) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed order number")
	}

	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	view := toView(order)
	return &view, nil
}

func toView(order *models.Order) OrderView {
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemView{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return OrderView{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Currency:      order.Currency,
		TotalAmount:   order.TotalAmount,
		ShippingFee:   order.ShippingFee,
		TaxFee:        order.TaxFee,
		Items:         items,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
