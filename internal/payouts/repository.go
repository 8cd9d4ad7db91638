package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
)

// Repository owns the payout-side writes: claiming the order and crediting
// the partner wallet.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// ClaimOrderForPayout flips paid_out in a single conditional UPDATE and
	// reports whether this caller won the claim. A false return means the
	// order was already paid out.
	ClaimOrderForPayout(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, at time.Time) (bool, error)
	CreateWalletTransaction(ctx context.Context, txn *models.WalletTransaction) error
	AddToWalletBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payouts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ClaimOrderForPayout(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND paid_out = ?", orderID, false).
		Updates(map[string]any{
			"paid_out":      true,
			"payout_amount": amount,
			"payout_date":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreateWalletTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) AddToWalletBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	balance := models.WalletBalance{UserID: userID, Balance: amount}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"balance":    gorm.Expr("wallet_balances.balance + ?", amount),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&balance).Error
}
