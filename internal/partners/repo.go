package partners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
)

// Repository manages partner profiles and their product listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProfileByID(ctx context.Context, id uuid.UUID) (*models.PartnerProfile, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.PartnerProfile, error)
	// FindActiveListing matches partner_products strictly on the partner's
	// user id; a profile row id will never match.
	FindActiveListing(ctx context.Context, partnerUserID, productID uuid.UUID) (*models.PartnerProduct, error)
	ListListingsByPartner(ctx context.Context, partnerUserID uuid.UUID) ([]models.PartnerProduct, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a partners repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProfileByID(ctx context.Context, id uuid.UUID) (*models.PartnerProfile, error) {
	var profile models.PartnerProfile
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.PartnerProfile, error) {
	var profile models.PartnerProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindActiveListing(ctx context.Context, partnerUserID, productID uuid.UUID) (*models.PartnerProduct, error) {
	var listing models.PartnerProduct
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND product_id = ? AND is_active = ?", partnerUserID, productID, true).
		First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) ListListingsByPartner(ctx context.Context, partnerUserID uuid.UUID) ([]models.PartnerProduct, error) {
	var listings []models.PartnerProduct
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND is_active = ?", partnerUserID, true).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}
