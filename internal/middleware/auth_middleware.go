package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/poofware/logistics-gateway/internal/services"
	"github.com/poofware/logistics-gateway/internal/utils"
)

type contextKey string

const ContextKeyIdentity = contextKey("identity")

// AuthMiddleware requires a valid bearer token. The resolved identity is
// stored in the request context under ContextKeyIdentity.
func AuthMiddleware(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractBearerToken(r)
			if err != nil {
				RespondUnauthorized(w, utils.ErrCodeUnauthorized, "Not authenticated", err)
				return
			}

			identity, err := tokens.Validate(r.Context(), tokenStr)
			if err != nil {
				var authErr *services.AuthError
				if !errors.As(err, &authErr) {
					utils.RespondErrorWithCode(
						w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not validate credentials", nil, err,
					)
					return
				}
				utils.Logger.WithFields(logrus.Fields{
					"kind": authErr.Kind.String(),
					"peer": utils.GetClientIP(r, nil),
				}).Debug("Rejected bearer token")

				if authErr.Kind == services.AuthExpired {
					RespondUnauthorized(w, utils.ErrCodeTokenExpired, "Token expired", err)
					return
				}
				RespondUnauthorized(w, utils.ErrCodeUnauthorized, "Could not validate credentials", err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the caller resolved by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*services.Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(*services.Identity)
	return identity, ok && identity != nil
}

// RespondUnauthorized writes a 401 carrying the bearer challenge.
func RespondUnauthorized(w http.ResponseWriter, code, message string, devErr error) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	utils.RespondErrorWithCode(w, http.StatusUnauthorized, code, message, nil, devErr)
}

func extractBearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("missing Authorization header")
	}
	return strings.TrimSpace(token), nil
}
