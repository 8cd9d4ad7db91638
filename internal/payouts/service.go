package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/db"
	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
	"github.com/autotradehub/autotradehub-backend/pkg/enums"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

var oneHundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type profileLoader interface {
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.PartnerProfile, error)
}

// Result reports the amounts produced by one payout run.
type Result struct {
	OrderID       uuid.UUID       `json:"order_id"`
	PartnerUserID uuid.UUID       `json:"partner_user_id"`
	Commission    decimal.Decimal `json:"commission"`
	OrderProfit   decimal.Decimal `json:"order_profit"`
	Payout        decimal.Decimal `json:"payout"`
	PaidAt        time.Time       `json:"paid_at"`
}

// Service settles completed orders into partner wallets.
type Service interface {
	PayoutOrder(ctx context.Context, orderID uuid.UUID) (*Result, error)
}

type service struct {
	repo        Repository
	profiles    profileLoader
	tx          txRunner
	defaultRate decimal.Decimal
	log         *logger.Logger
	now         func() time.Time
}

// NewService builds the payout service. defaultRate is a percentage applied
// when a partner profile carries no commission rate of its own.
func NewService(repo Repository, profiles profileLoader, tx txRunner, defaultRate string, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	rate, err := decimal.NewFromString(defaultRate)
	if err != nil || rate.IsNegative() {
		return nil, fmt.Errorf("invalid default commission rate %q", defaultRate)
	}
	return &service{
		repo:        repo,
		profiles:    profiles,
		tx:          tx,
		defaultRate: rate,
		log:         log,
		now:         time.Now,
	}, nil
}

func (s *service) PayoutOrder(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.PartnerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no partner attribution")
	}
	if !order.Status.PayoutEligible() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s is not eligible for payout", order.Status))
	}
	if order.PaidOut {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid out")
	}

	partnerUserID := *order.PartnerID
	rate, err := s.commissionRate(ctx, partnerUserID)
	if err != nil {
		return nil, err
	}

	commission := order.TotalAmount.Mul(rate).Div(oneHundred).Round(2)
	orderProfit := order.TotalAmount.Sub(order.BaseCostTotal)
	payout := order.BaseCostTotal.Add(orderProfit).Add(commission)
	paidAt := s.now().UTC()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// The conditional update is the only paid-out gate that holds under
		// concurrent callers; the read above is just a fast precheck.
		claimed, err := repo.ClaimOrderForPayout(ctx, orderID, payout, paidAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim order for payout")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid out")
		}

		txn := &models.WalletTransaction{
			UserID:  partnerUserID,
			OrderID: orderID,
			Amount:  payout,
			Type:    enums.WalletTransactionTypeCommission,
		}
		if err := repo.CreateWalletTransaction(ctx, txn); err != nil {
			if db.IsUniqueViolation(err, "idx_wallet_transactions_order_type") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid out")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record wallet transaction")
		}
		if err := repo.AddToWalletBalance(ctx, partnerUserID, payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet balance")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payout transaction")
	}

	logCtx := s.log.WithFields(ctx, map[string]any{
		"order_id":   orderID.String(),
		"partner_id": partnerUserID.String(),
		"payout":     payout.String(),
	})
	s.log.Info(logCtx, "order paid out")

	return &Result{
		OrderID:       orderID,
		PartnerUserID: partnerUserID,
		Commission:    commission,
		OrderProfit:   orderProfit,
		Payout:        payout,
		PaidAt:        paidAt,
	}, nil
}

func (s *service) commissionRate(ctx context.Context, partnerUserID uuid.UUID) (decimal.Decimal, error) {
	profile, err := s.profiles.FindProfileByUserID(ctx, partnerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orders imported before partner onboarding have no profile row;
			// they settle at the platform default rate.
			return s.defaultRate, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner profile")
	}
	if profile.CommissionRate == nil || profile.CommissionRate.IsNegative() {
		return s.defaultRate, nil
	}
	return *profile.CommissionRate, nil
}
