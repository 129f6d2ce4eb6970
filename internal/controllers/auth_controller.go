package controllers

import (
	"errors"
	"net"
	"net/http"

	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/dtos"
	"github.com/poofware/logistics-gateway/internal/middleware"
	"github.com/poofware/logistics-gateway/internal/services"
	"github.com/poofware/logistics-gateway/internal/utils"
)

type AuthController struct {
	tokenService       services.TokenService
	rateLimiterService services.RateLimiterService
	trustedProxies     []*net.IPNet
}

// NewAuthController keys login attempts on the client address. Forwarding
// headers count only when they come from one of trustedProxies.
func NewAuthController(
	tokens services.TokenService,
	rateLimiter services.RateLimiterService,
	trustedProxies []*net.IPNet,
) *AuthController {
	return &AuthController{
		tokenService:       tokens,
		rateLimiterService: rateLimiter,
		trustedProxies:     trustedProxies,
	}
}

// Token handles the OAuth2 password grant: form fields username and password.
func (c *AuthController) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid form body", nil, err,
		)
		return
	}
	req := dtos.TokenRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if !validateRequest(w, &req) {
		return
	}

	if err := c.rateLimiterService.CheckLoginRateLimit(r.Context(), utils.GetClientIP(r, c.trustedProxies)); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusTooManyRequests, utils.ErrCodeRateLimitExceeded, "Too many login attempts", nil, err,
		)
		return
	}

	token, err := c.tokenService.Issue(r.Context(), req.Username, req.Password)
	if err != nil {
		var authErr *services.AuthError
		if errors.As(err, &authErr) {
			// Unknown login and wrong secret look the same from outside.
			middleware.RespondUnauthorized(w, utils.ErrCodeInvalidCredentials, "Incorrect username or password", err)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not issue token", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.TokenResponse{
		AccessToken: token,
		TokenType:   constants.TokenTypeBearer,
	})
}

// Revoke invalidates the bearer token the request was made with.
func (c *AuthController) Revoke(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := c.tokenService.Revoke(r.Context(), identity); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not revoke token", nil, err,
		)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.RevokeResponse{Message: "Token revoked"})
}
