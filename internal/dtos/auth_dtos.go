package dtos

// ----------------------
// Requests
// ----------------------

// TokenRequest is the OAuth2 password-grant form posted to /auth/token.
type TokenRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

// ----------------------
// Responses
// ----------------------

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RevokeResponse struct {
	Message string `json:"message"`
}
