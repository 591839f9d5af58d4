package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

const feePolicyColumns = `id, partner_id, effective_from, percentage, fixed_fee`

type FeePolicyRepository struct {
	pool *pgxpool.Pool
}

func NewFeePolicyRepository(pool *pgxpool.Pool) *FeePolicyRepository {
	return &FeePolicyRepository{pool: pool}
}

// FindEffective returns the latest policy with effective_from <= at, or nil.
func (r *FeePolicyRepository) FindEffective(ctx context.Context, partnerID int64, at time.Time) (*model.FeePolicy, error) {
	p := &model.FeePolicy{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+feePolicyColumns+`
		FROM partner_fee_policies
		WHERE partner_id = $1 AND effective_from <= $2
		ORDER BY effective_from DESC, id DESC
		LIMIT 1`, partnerID, at).
		Scan(&p.ID, &p.PartnerID, &p.EffectiveFrom, &p.Percentage, &p.FixedFee)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.EffectiveFrom = p.EffectiveFrom.UTC()
	return p, nil
}

func (r *FeePolicyRepository) ListByPartner(ctx context.Context, partnerID int64) ([]model.FeePolicy, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+feePolicyColumns+`
		FROM partner_fee_policies
		WHERE partner_id = $1
		ORDER BY effective_from DESC, id DESC`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []model.FeePolicy
	for rows.Next() {
		var p model.FeePolicy
		if err := rows.Scan(&p.ID, &p.PartnerID, &p.EffectiveFrom, &p.Percentage, &p.FixedFee); err != nil {
			return nil, err
		}
		p.EffectiveFrom = p.EffectiveFrom.UTC()
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (r *FeePolicyRepository) Save(ctx context.Context, p *model.FeePolicy) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO partner_fee_policies (partner_id, effective_from, percentage, fixed_fee)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		p.PartnerID, p.EffectiveFrom.UTC(), p.Percentage, p.FixedFee,
	).Scan(&p.ID)
}
