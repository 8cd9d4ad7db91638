package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autotradehub/autotradehub-backend/api/responses"
	"github.com/autotradehub/autotradehub-backend/internal/orders"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

// PublicOrderLookup serves the unauthenticated tracking page.
func PublicOrderLookup(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		view, err := svc.GetByOrderNumber(ctx, chi.URLParam(r, "orderNumber"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
