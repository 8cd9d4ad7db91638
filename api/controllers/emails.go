package controllers

import (
	"net/http"

	"github.com/autotradehub/autotradehub-backend/api/responses"
	"github.com/autotradehub/autotradehub-backend/api/validators"
	"github.com/autotradehub/autotradehub-backend/internal/emails"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

func SendPasswordResetEmail(svc emails.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input emails.PasswordResetInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SendPasswordReset(ctx, input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "password reset email sent"})
	}
}
