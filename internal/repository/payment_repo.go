package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Save inserts p and fills in its generated ID.
func (r *PaymentRepository) Save(ctx context.Context, p *model.Payment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO payments (partner_id, amount, applied_fee_rate, fee_amount, net_amount, card_bin, card_last4,
			approval_code, approved_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		p.PartnerID, p.Amount, p.AppliedFeeRate, p.FeeAmount, p.NetAmount, p.CardBin, p.CardLast4,
		p.ApprovalCode, p.ApprovedAt, string(p.Status), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

// FindPageWithSummary reads one page in (created_at DESC, id DESC) order.
// limit+1 rows are fetched in a single statement so that the page and
// HasNext are taken from the same snapshot.
func (r *PaymentRepository) FindPageWithSummary(ctx context.Context, q model.PaymentQuery) (*model.PaymentPage, error) {
	var status *string
	if q.Status != nil {
		s := string(*q.Status)
		status = &s
	}
	var cursorAt *time.Time
	var cursorID *int64
	if q.CursorCreatedAt != nil && q.CursorID != nil {
		cursorAt, cursorID = q.CursorCreatedAt, q.CursorID
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, partner_id, amount, applied_fee_rate, fee_amount, net_amount, card_bin, card_last4,
			approval_code, approved_at, status, created_at, updated_at
		FROM payments
		WHERE ($1::bigint IS NULL OR partner_id = $1)
			AND ($2::text IS NULL OR status = $2)
			AND ($3::timestamptz IS NULL OR created_at >= $3)
			AND ($4::timestamptz IS NULL OR created_at <= $4)
			AND ($5::timestamptz IS NULL OR (created_at, id) < ($5::timestamptz, $6::bigint))
		ORDER BY created_at DESC, id DESC
		LIMIT $7`,
		q.PartnerID, status, q.From, q.To, cursorAt, cursorID, q.Limit+1)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	items, err := scanPayments(rows)
	if err != nil {
		return nil, err
	}
	return NewPaymentPage(items, q.Limit), nil
}

func scanPayments(rows pgx.Rows) ([]model.Payment, error) {
	var items []model.Payment
	for rows.Next() {
		var p model.Payment
		var status string
		if err := rows.Scan(&p.ID, &p.PartnerID, &p.Amount, &p.AppliedFeeRate, &p.FeeAmount, &p.NetAmount,
			&p.CardBin, &p.CardLast4, &p.ApprovalCode, &p.ApprovedAt, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Status = model.PaymentStatus(status)
		p.ApprovedAt = p.ApprovedAt.UTC()
		p.CreatedAt = p.CreatedAt.UTC()
		p.UpdatedAt = p.UpdatedAt.UTC()
		items = append(items, p)
	}
	return items, rows.Err()
}
