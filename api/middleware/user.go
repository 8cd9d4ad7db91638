package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/autotradehub/autotradehub-backend/api/responses"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

const userIDHeader = "X-User-ID"

// UserContext lifts the platform-provided identity header into the request
// context. Authentication happens upstream; this service trusts the header.
func UserContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(userIDHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid user id header"))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that reached a user-scoped route without an
// identity header.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == uuid.Nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
