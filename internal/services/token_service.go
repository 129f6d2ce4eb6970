package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/poofware/logistics-gateway/internal/config"
	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/models"
	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/utils"
)

// dummySecretHash is compared against when the login is unknown so that a
// missing partner costs the same as a wrong secret.
const dummySecretHash = constants.DemoPartnerSecretHash

// Identity is the authenticated caller behind a valid token.
type Identity struct {
	Partner   *models.Partner
	TokenID   string
	ExpiresAt time.Time
}

// ---------------------------------------------------------------------
// TokenService interface
// ---------------------------------------------------------------------

type TokenService interface {
	// Issue checks the secret and returns a signed access token.
	Issue(ctx context.Context, login, secret string) (string, error)

	// Validate returns the identity behind a token. The partner is always
	// re-read from the credential store.
	Validate(ctx context.Context, token string) (*Identity, error)

	// Revoke blacklists the token for the rest of its lifetime.
	Revoke(ctx context.Context, identity *Identity) error
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type tokenService struct {
	secret      []byte
	issuer      string
	tokenExpiry time.Duration
	partnerRepo repositories.PartnerRepository
	tokenRepo   repositories.TokenRepository
	now         func() time.Time
}

func NewTokenService(
	cfg *config.Config,
	partnerRepo repositories.PartnerRepository,
	tokenRepo repositories.TokenRepository,
) TokenService {
	return &tokenService{
		secret:      cfg.JWTSecret,
		issuer:      cfg.OrganizationName,
		tokenExpiry: cfg.AccessTokenExpiry,
		partnerRepo: partnerRepo,
		tokenRepo:   tokenRepo,
		now:         time.Now,
	}
}

// ---------------------------------------------------------------------
// Issue
// ---------------------------------------------------------------------

func (s *tokenService) Issue(ctx context.Context, login, secret string) (string, error) {
	partner, err := s.partnerRepo.GetByLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if partner == nil {
		_ = utils.CheckPasswordHash(secret, dummySecretHash)
		return "", &AuthError{Kind: AuthNotFound}
	}
	if !utils.CheckPasswordHash(secret, partner.SecretHash) {
		return "", &AuthError{Kind: AuthBadSecret}
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   partner.Login,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	utils.Logger.WithFields(logrus.Fields{
		"login":      partner.Login,
		"partner_id": partner.PartnerID,
	}).Info("Issued access token")
	return signed, nil
}

// ---------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------

func (s *tokenService) Validate(ctx context.Context, token string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &AuthError{Kind: AuthExpired, Err: err}
		}
		return nil, &AuthError{Kind: AuthMalformed, Err: err}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, &AuthError{Kind: AuthMalformed, Err: errors.New("missing sub or jti claim")}
	}

	revoked, err := s.tokenRepo.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, &AuthError{Kind: AuthRevoked}
	}

	partner, err := s.partnerRepo.GetByLogin(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, &AuthError{Kind: AuthUnknownSubject}
	}

	return &Identity{
		Partner:   partner,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ---------------------------------------------------------------------
// Revoke
// ---------------------------------------------------------------------

func (s *tokenService) Revoke(ctx context.Context, identity *Identity) error {
	if err := s.tokenRepo.BlacklistToken(ctx, identity.TokenID, identity.ExpiresAt.Sub(s.now())); err != nil {
		return err
	}
	utils.Logger.WithField("login", identity.Partner.Login).Info("Revoked access token")
	return nil
}
