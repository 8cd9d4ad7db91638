package partners

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
)

// PriceSource tells callers where a resolved unit price came from.
type PriceSource string

const (
	// PriceSourcePartner means an active partner listing supplied the price.
	PriceSourcePartner PriceSource = "partner"
	// PriceSourceCatalog means the catalog original price applied (direct purchase).
	PriceSourceCatalog PriceSource = "catalog"
	// PriceSourceInvalid means no positive price could be resolved; callers
	// must reject the operation instead of coalescing to zero.
	PriceSourceInvalid PriceSource = "invalid"
)

// PriceResolution is the explicit outcome of a price lookup.
type PriceResolution struct {
	Source        PriceSource
	UnitPrice     decimal.Decimal
	PartnerUserID *uuid.UUID
}

// Valid reports whether the resolution carries a usable price.
func (p PriceResolution) Valid() bool {
	return p.Source != PriceSourceInvalid && p.UnitPrice.IsPositive()
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Resolver maps a (partner, product) pair to the selling price to charge.
type Resolver interface {
	// ResolvePartnerUserID translates a partner identifier that may be a
	// profile row id into the partner's user id. A user id passes through.
	ResolvePartnerUserID(ctx context.Context, identifier uuid.UUID) (uuid.UUID, error)
	// ResolvePrice returns the price to charge for productID, honoring the
	// partner's listing when partnerIdentifier is set.
	ResolvePrice(ctx context.Context, partnerIdentifier *uuid.UUID, productID uuid.UUID) (PriceResolution, error)
}

type resolver struct {
	repo     Repository
	products productLoader
}

// NewResolver builds a partner price resolver.
func NewResolver(repo Repository, products productLoader) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("partners repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &resolver{repo: repo, products: products}, nil
}

// ResolvePartnerUserID exists because the storefront historically passed the
// partner_profiles row id around while partner_products.partner_id stores the
// user id. Both shapes arrive here; only the user id is usable downstream.
func (r *resolver) ResolvePartnerUserID(ctx context.Context, identifier uuid.UUID) (uuid.UUID, error) {
	if identifier == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "partner identifier is required")
	}

	profile, err := r.repo.FindProfileByID(ctx, identifier)
	if err == nil {
		return profile.UserID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner profile")
	}

	// Not a profile row id; treat the identifier as a user id if a profile
	// exists for it.
	if _, err := r.repo.FindProfileByUserID(ctx, identifier); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner profile")
	}
	return identifier, nil
}

func (r *resolver) ResolvePrice(ctx context.Context, partnerIdentifier *uuid.UUID, productID uuid.UUID) (PriceResolution, error) {
	if productID == uuid.Nil {
		return PriceResolution{Source: PriceSourceInvalid}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := r.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PriceResolution{Source: PriceSourceInvalid}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return PriceResolution{Source: PriceSourceInvalid}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if partnerIdentifier != nil && *partnerIdentifier != uuid.Nil {
		partnerUserID, err := r.ResolvePartnerUserID(ctx, *partnerIdentifier)
		if err != nil {
			return PriceResolution{Source: PriceSourceInvalid}, err
		}

		listing, err := r.repo.FindActiveListing(ctx, partnerUserID, productID)
		switch {
		case err == nil:
			if !listing.SellingPrice.IsPositive() {
				return PriceResolution{Source: PriceSourceInvalid}, nil
			}
			return PriceResolution{
				Source:        PriceSourcePartner,
				UnitPrice:     listing.SellingPrice,
				PartnerUserID: &partnerUserID,
			}, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No active listing; fall through to the catalog price.
		default:
			return PriceResolution{Source: PriceSourceInvalid}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner listing")
		}
	}

	if !product.OriginalPrice.IsPositive() {
		return PriceResolution{Source: PriceSourceInvalid}, nil
	}
	return PriceResolution{
		Source:    PriceSourceCatalog,
		UnitPrice: product.OriginalPrice,
	}, nil
}
