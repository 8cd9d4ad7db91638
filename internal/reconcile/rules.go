package reconcile

import (
	"context"

	"gorm.io/gorm"
)

// Rule is one idempotent data repair. Apply returns the number of rows it
// changed; running a rule against already-clean data must change nothing.
type Rule interface {
	Name() string
	Apply(ctx context.Context, db *gorm.DB) (int64, error)
}

type nullStockRule struct {
	defaultStock int
}

// NewNullStockRule backfills products whose stock was never recorded.
func NewNullStockRule(defaultStock int) Rule {
	if defaultStock <= 0 {
		defaultStock = 10
	}
	return &nullStockRule{defaultStock: defaultStock}
}

func (r *nullStockRule) Name() string { return "null-stock" }

func (r *nullStockRule) Apply(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE products SET stock_quantity = ? WHERE stock_quantity IS NULL`,
		r.defaultStock,
	)
	return res.RowsAffected, res.Error
}

type emptyImagesRule struct{}

// NewEmptyImagesRule replaces null image arrays with empty ones so readers
// never have to null-check.
func NewEmptyImagesRule() Rule {
	return &emptyImagesRule{}
}

func (r *emptyImagesRule) Name() string { return "empty-images" }

func (r *emptyImagesRule) Apply(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE products SET images = '{}' WHERE images IS NULL`,
	)
	return res.RowsAffected, res.Error
}

type partnerFKRule struct{}

// NewPartnerFKRule rewrites partner_products rows whose partner_id points at
// a partner_profiles row id instead of the partner's user id. Rows whose
// rewrite would collide with an existing (partner_id, product_id) pair are
// left alone for manual review.
func NewPartnerFKRule() Rule {
	return &partnerFKRule{}
}

func (r *partnerFKRule) Name() string { return "partner-fk" }

func (r *partnerFKRule) Apply(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Exec(`
UPDATE partner_products
SET partner_id = (
    SELECT user_id FROM partner_profiles
    WHERE partner_profiles.id = partner_products.partner_id
)
WHERE partner_id IN (SELECT id FROM partner_profiles)
  AND partner_id NOT IN (SELECT user_id FROM partner_profiles)
  AND NOT EXISTS (
    SELECT 1 FROM partner_products dup
    WHERE dup.partner_id = (
        SELECT user_id FROM partner_profiles
        WHERE partner_profiles.id = partner_products.partner_id
    )
      AND dup.product_id = partner_products.product_id
  )`)
	return res.RowsAffected, res.Error
}

// DefaultRules is the production rule set, in execution order.
func DefaultRules(defaultStock int) []Rule {
	return []Rule{
		NewNullStockRule(defaultStock),
		NewEmptyImagesRule(),
		NewPartnerFKRule(),
	}
}
