package repositories

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/logistics-gateway/internal/models"
)

// DB is the subset of *pgxpool.Pool the Postgres repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const partnersSchema = `
	CREATE TABLE IF NOT EXISTS partners (
		api_login  TEXT PRIMARY KEY,
		api_key    TEXT NOT NULL,
		partner_id INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

type pgPartnerRepo struct {
	db DB
}

// NewPostgresPartnerRepository keeps credentials in the partners table.
func NewPostgresPartnerRepository(db DB) PartnerRepository {
	return &pgPartnerRepo{db: db}
}

// EnsurePartnersSchema creates the partners table if it does not exist.
func EnsurePartnersSchema(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, partnersSchema)
	return err
}

func (r *pgPartnerRepo) GetByLogin(ctx context.Context, login string) (*models.Partner, error) {
	row := r.db.QueryRow(ctx, `
		SELECT api_login, api_key, partner_id
		FROM partners
		WHERE api_login=$1`, login)

	var p models.Partner
	if err := row.Scan(&p.Login, &p.SecretHash, &p.PartnerID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *pgPartnerRepo) Create(ctx context.Context, partner *models.Partner) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO partners (api_login, api_key, partner_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (api_login) DO NOTHING`,
		partner.Login, partner.SecretHash, partner.PartnerID,
	)
	return err
}
