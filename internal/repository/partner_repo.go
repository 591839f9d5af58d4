package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

type PartnerRepository struct {
	pool *pgxpool.Pool
}

func NewPartnerRepository(pool *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

// FindByID returns nil, nil when the partner does not exist.
func (r *PartnerRepository) FindByID(ctx context.Context, id int64) (*model.Partner, error) {
	p := &model.Partner{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, active, created_at FROM partners WHERE id = $1`, id).
		Scan(&p.ID, &p.Code, &p.Name, &p.Active, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PartnerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM partners WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
