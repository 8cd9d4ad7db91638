package controllers

import (
	"net/http"

	"github.com/autotradehub/autotradehub-backend/api/responses"
	"github.com/autotradehub/autotradehub-backend/api/validators"
	"github.com/autotradehub/autotradehub-backend/internal/payouts"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

// PayoutOrder settles one order into the partner wallet. Double submission is
// safe: the second call gets a state conflict.
func PayoutOrder(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.PayoutOrder(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
