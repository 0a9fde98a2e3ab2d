package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/sitework/workforce-backend-go/internal/domain/employee"
	"github.com/sitework/workforce-backend-go/internal/handler/http/response"
	"github.com/sitework/workforce-backend-go/internal/pkg/jwt"
)

// AuthRequired accepts only verified access tokens that carry an admin identity.
// It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		tokenType, ok := claims[jwt.ClaimType].(string)
		if !ok || tokenType != jwt.TokenTypeAccess {
			response.Unauthorized(w, "Invalid token")
			return
		}

		if adminID, ok := claims[jwt.ClaimAdminID].(string); !ok || adminID == "" {
			response.HandleError(w, employee.ErrMissingScope)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// adminIDFromRequest returns the caller's admin id, or "" before authentication.
func adminIDFromRequest(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	adminID, _ := claims[jwt.ClaimAdminID].(string)
	return adminID
}
