package app

import (
	"context"
	"fmt"

	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/models"
	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/utils"
)

// SeedDemoPartner provisions the demo partner used by integration clients.
// It is idempotent: an existing login is left untouched. With an empty
// secret the legacy fixture hash is stored.
func SeedDemoPartner(ctx context.Context, partners repositories.PartnerRepository, secret string) error {
	existing, err := partners.GetByLogin(ctx, constants.DemoPartnerLogin)
	if err != nil {
		return fmt.Errorf("failed to check for demo partner: %w", err)
	}
	if existing != nil {
		utils.Logger.Info("Demo partner already present; skipping seeding.")
		return nil
	}

	hash := constants.DemoPartnerSecretHash
	if secret != "" {
		if hash, err = utils.HashPassword(secret); err != nil {
			return fmt.Errorf("hash demo partner secret: %w", err)
		}
	}

	err = partners.Create(ctx, &models.Partner{
		Login:      constants.DemoPartnerLogin,
		SecretHash: hash,
		PartnerID:  constants.DemoPartnerID,
	})
	if err != nil {
		return fmt.Errorf("create demo partner: %w", err)
	}

	utils.Logger.Infof("Seeded demo partner %q (partner_id %d)", constants.DemoPartnerLogin, constants.DemoPartnerID)
	return nil
}
