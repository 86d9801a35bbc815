package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/smc-analytics/attendance-dashboard/internal/domain/auth"
	"github.com/smc-analytics/attendance-dashboard/internal/handler/http/response"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/validator"
)

// RequirePosition admits tokens whose position claim is one of positions,
// compared case-insensitively.
func RequirePosition(positions []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			position, ok := claims["position"].(string)
			if !ok {
				response.HandleError(w, auth.ErrPositionNotAllowed)
				return
			}

			if !validator.IsInSliceFold(position, positions) {
				response.HandleError(w, auth.ErrPositionNotAllowed)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
