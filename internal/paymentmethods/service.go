package paymentmethods

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
	"github.com/autotradehub/autotradehub-backend/pkg/enums"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MethodView is one stored payment method as returned to the customer.
type MethodView struct {
	ID             uuid.UUID               `json:"id"`
	PaymentType    enums.PaymentMethodType `json:"payment_type"`
	Provider       string                  `json:"provider"`
	AccountDetails json.RawMessage         `json:"account_details"`
	IsDefault      bool                    `json:"is_default"`
	CreatedAt      time.Time               `json:"created_at"`
}

// CustomerView identifies the owner in list responses.
type CustomerView struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// ListResult bundles a customer's methods with their identity, matching the
// storefront's settings page payload.
type ListResult struct {
	PaymentMethods []MethodView `json:"paymentMethods"`
	Customer       CustomerView `json:"customer"`
}

// CreateInput describes a new payment method.
type CreateInput struct {
	PaymentType    string          `json:"payment_type" validate:"required"`
	Provider       string          `json:"provider" validate:"required"`
	AccountDetails json.RawMessage `json:"account_details" validate:"required"`
	IsDefault      bool            `json:"is_default"`
}

// Service manages a customer's stored payment methods.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) (*ListResult, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*MethodView, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the payment methods service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment methods repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	methods, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}

	views := make([]MethodView, 0, len(methods))
	for i := range methods {
		views = append(views, toMethodView(&methods[i]))
	}
	return &ListResult{
		PaymentMethods: views,
		Customer:       CustomerView{ID: user.ID, Email: user.Email},
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*MethodView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	paymentType, err := enums.ParsePaymentMethodType(strings.TrimSpace(input.PaymentType))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
	if strings.TrimSpace(input.Provider) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider is required")
	}
	if len(input.AccountDetails) == 0 || !json.Valid(input.AccountDetails) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account details must be a JSON object")
	}

	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	method := &models.PaymentMethod{
		UserID:         userID,
		PaymentType:    paymentType,
		Provider:       strings.TrimSpace(input.Provider),
		AccountDetails: input.AccountDetails,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payment methods")
		}

		// The first method on file always becomes the default; an explicit
		// flag dethrones the current one inside the same transaction.
		method.IsDefault = input.IsDefault || count == 0
		if method.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear previous default")
			}
		}
		if err := repo.Create(ctx, method); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment method")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment method")
	}

	view := toMethodView(method)
	return &view, nil
}

func toMethodView(method *models.PaymentMethod) MethodView {
	return MethodView{
		ID:             method.ID,
		PaymentType:    method.PaymentType,
		Provider:       method.Provider,
		AccountDetails: method.AccountDetails,
		IsDefault:      method.IsDefault,
		CreatedAt:      method.CreatedAt,
	}
}
