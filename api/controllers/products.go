package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/autotradehub/autotradehub-backend/api/responses"
	"github.com/autotradehub/autotradehub-backend/api/validators"
	"github.com/autotradehub/autotradehub-backend/internal/catalog"
	"github.com/autotradehub/autotradehub-backend/internal/partners"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

type resolvedPrice struct {
	Source    partners.PriceSource `json:"source"`
	UnitPrice decimal.Decimal      `json:"unit_price"`
}

type productDetail struct {
	catalog.ProductView
	ResolvedPrice *resolvedPrice `json:"resolved_price,omitempty"`
}

func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": views})
	}
}

// GetProduct returns the normalized detail; ?partner_id= additionally reports
// the price that partner's storefront would charge.
func GetProduct(svc catalog.Service, resolver partners.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		partnerID, err := validators.ParseQueryUUID(r, "partner_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.GetProduct(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail := productDetail{ProductView: *view}
		if partnerID != nil {
			resolution, err := resolver.ResolvePrice(ctx, partnerID, productID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			detail.ResolvedPrice = &resolvedPrice{
				Source:    resolution.Source,
				UnitPrice: resolution.UnitPrice,
			}
		}
		responses.WriteSuccess(w, detail)
	}
}
