package services

import (
	"context"
	"fmt"

	"github.com/poofware/logistics-gateway/internal/config"
	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/utils"
)

// RateLimiterService guards the token endpoint against credential stuffing.
type RateLimiterService interface {
	CheckLoginRateLimit(ctx context.Context, ip string) error
}

type rateLimiterService struct {
	repo repositories.RateLimitRepository
	cfg  *config.Config
}

func NewRateLimiterService(repo repositories.RateLimitRepository, cfg *config.Config) RateLimiterService {
	return &rateLimiterService{repo: repo, cfg: cfg}
}

// CheckLoginRateLimit counts a login attempt from ip. A store failure lets the
// attempt through; authentication itself still runs.
func (s *rateLimiterService) CheckLoginRateLimit(ctx context.Context, ip string) error {
	if ip == "" {
		ip = "unknown"
	}
	key := fmt.Sprintf("%s:%s", constants.LoginRateLimitKeyPrefix, ip)
	allowed, err := s.repo.IncrementAndCheck(ctx, key, s.cfg.MaxLoginAttempts, s.cfg.LoginAttemptWindow)
	if err != nil {
		utils.Logger.WithError(err).Warn("Login rate limiter unavailable; allowing attempt")
		return nil
	}
	if !allowed {
		utils.Logger.Warnf("Login rate limit exceeded (key: %s)", key)
		return utils.ErrRateLimitExceeded
	}
	return nil
}
