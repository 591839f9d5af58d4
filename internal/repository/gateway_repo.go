package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

type PaymentGatewayRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentGatewayRepository(pool *pgxpool.Pool) *PaymentGatewayRepository {
	return &PaymentGatewayRepository{pool: pool}
}

// FindProviderCodesByPriority lists the gateways a partner may use, lowest
// priority value first. Inactive partners and inactive gateways yield nothing.
func (r *PaymentGatewayRepository) FindProviderCodesByPriority(ctx context.Context, partnerID int64) ([]model.ProviderCode, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.code
		FROM partner_pg_support s
		JOIN partners p ON p.id = s.partner_id
		JOIN payment_gateways g ON g.id = s.payment_gateway_id
		WHERE s.partner_id = $1 AND p.active AND g.active
		ORDER BY g.priority ASC, g.id ASC`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []model.ProviderCode{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, model.ProviderCode(code))
	}
	return codes, rows.Err()
}

func (r *PaymentGatewayRepository) ListActive(ctx context.Context) ([]model.PaymentGateway, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, priority, active
		FROM payment_gateways
		WHERE active
		ORDER BY priority ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gateways []model.PaymentGateway
	for rows.Next() {
		var g model.PaymentGateway
		var code string
		if err := rows.Scan(&g.ID, &code, &g.Name, &g.Priority, &g.Active); err != nil {
			return nil, err
		}
		g.Code = model.ProviderCode(code)
		gateways = append(gateways, g)
	}
	return gateways, rows.Err()
}
