package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/fee"
	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

type gatewaySeed struct {
	Code     model.ProviderCode
	Name     string
	Priority int
	Active   bool
}

type policySeed struct {
	EffectiveFrom time.Time
	Percentage    string
	FixedFee      string // empty means none
}

type partnerSeed struct {
	Code     string
	Name     string
	Active   bool
	Gateways []model.ProviderCode
	Policies []policySeed
	Payments int
}

var gateways = []gatewaySeed{
	{model.ProviderTestPG, "Test PG", 10, true},
	{model.ProviderMock, "Mock PG", 20, true},
	{model.ProviderTossPay, "Toss Payments", 30, true},
	{model.ProviderNHNKCP, "NHN KCP", 40, false},
	{model.ProviderKGInicis, "KG Inicis", 50, false},
}

var partners = []partnerSeed{
	{
		Code: "MOCK1", Name: "Mock Partner 1", Active: true,
		Gateways: []model.ProviderCode{model.ProviderMock},
		Policies: []policySeed{
			{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "0.0300", "100"},
			{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "0.0250", "50"},
		},
		Payments: 40,
	},
	{
		Code: "TESTPAY1", Name: "Test Pay Partner", Active: true,
		Gateways: []model.ProviderCode{model.ProviderTestPG, model.ProviderMock},
		Policies: []policySeed{
			{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "0.0235", ""},
		},
		Payments: 25,
	},
	{
		Code: "FALLBACK1", Name: "Fallback Partner", Active: true,
		Gateways: []model.ProviderCode{model.ProviderTossPay, model.ProviderNHNKCP, model.ProviderMock},
		Policies: []policySeed{
			{time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), "0.0250", "200"},
		},
	},
	{
		Code: "DORMANT1", Name: "Dormant Partner", Active: false,
		Gateways: []model.ProviderCode{model.ProviderMock},
		Policies: []policySeed{
			{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "0.0300", ""},
		},
	},
}

// SeedData inserts demo gateways, partners, fee policies and a payment
// history. It does nothing when partners already exist.
func SeedData(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM partners").Scan(&count)
	if err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed data already exists, skipping")
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	gatewayIDs := make(map[model.ProviderCode]int64, len(gateways))
	for _, g := range gateways {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO payment_gateways (code, name, priority, active) VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			string(g.Code), g.Name, g.Priority, g.Active).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert gateway %s: %w", g.Code, err)
		}
		gatewayIDs[g.Code] = id
	}
	log.Info().Int("count", len(gateways)).Msg("inserted payment gateways")

	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var paymentCount int
	for _, p := range partners {
		var partnerID int64
		err := tx.QueryRow(ctx,
			"INSERT INTO partners (code, name, active) VALUES ($1, $2, $3) RETURNING id",
			p.Code, p.Name, p.Active).Scan(&partnerID)
		if err != nil {
			return fmt.Errorf("insert partner %s: %w", p.Code, err)
		}

		for _, code := range p.Gateways {
			_, err := tx.Exec(ctx,
				"INSERT INTO partner_pg_support (partner_id, payment_gateway_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				partnerID, gatewayIDs[code])
			if err != nil {
				return fmt.Errorf("insert support %s-%s: %w", p.Code, code, err)
			}
		}

		policies := make([]model.FeePolicy, 0, len(p.Policies))
		for _, ps := range p.Policies {
			policy := model.FeePolicy{
				PartnerID:     partnerID,
				EffectiveFrom: ps.EffectiveFrom,
				Percentage:    decimal.RequireFromString(ps.Percentage),
			}
			if ps.FixedFee != "" {
				policy.FixedFee = decimal.NewNullDecimal(decimal.RequireFromString(ps.FixedFee))
			}
			err := tx.QueryRow(ctx,
				`INSERT INTO partner_fee_policies (partner_id, effective_from, percentage, fixed_fee)
				VALUES ($1, $2, $3, $4) RETURNING id`,
				policy.PartnerID, policy.EffectiveFrom, policy.Percentage, policy.FixedFee).Scan(&policy.ID)
			if err != nil {
				return fmt.Errorf("insert fee policy for %s: %w", p.Code, err)
			}
			policies = append(policies, policy)
		}

		n, err := seedPayments(ctx, tx, rng, partnerID, policies, p.Payments, end)
		if err != nil {
			return fmt.Errorf("seed payments for %s: %w", p.Code, err)
		}
		paymentCount += n
	}
	log.Info().Int("partners", len(partners)).Int("payments", paymentCount).Msg("inserted partners")

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed data: %w", err)
	}

	log.Info().Msg("seed data generation complete")
	return nil
}

func seedPayments(ctx context.Context, tx pgx.Tx, rng *rand.Rand, partnerID int64, policies []model.FeePolicy, n int, end time.Time) (int, error) {
	if n == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := 0; i < n; i++ {
		createdAt := end.Add(-time.Duration(rng.Intn(2*365*24*60)) * time.Minute)
		policy, ok := fee.EffectivePolicy(policies, createdAt)
		if !ok {
			continue
		}
		amount := decimal.NewFromInt(int64(1000 + rng.Intn(200)*500))
		feeAmount, net := fee.Calculate(amount, policy.Percentage, policy.FixedFee)

		status := model.StatusApproved
		if rng.Float64() < 0.1 {
			status = model.StatusCanceled
		}
		last4 := fmt.Sprintf("%04d", rng.Intn(10000))
		batch.Queue(
			`INSERT INTO payments (partner_id, amount, applied_fee_rate, fee_amount, net_amount, card_bin, card_last4,
				approval_code, approved_at, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
			partnerID, amount, policy.Percentage, feeAmount, net, "123456", last4,
			fmt.Sprintf("SEED%08d", rng.Intn(100000000)), createdAt, string(status), createdAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("insert payment %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}
	return batch.Len(), nil
}
