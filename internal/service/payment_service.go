package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/anyulbade/pg-gateway-facade/internal/events"
	"github.com/anyulbade/pg-gateway-facade/internal/fee"
	"github.com/anyulbade/pg-gateway-facade/internal/model"
	"github.com/anyulbade/pg-gateway-facade/internal/pg"
)

var tracer = otel.Tracer("github.com/anyulbade/pg-gateway-facade/internal/service")

type PartnerFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Partner, error)
}

type FeePolicyFinder interface {
	FindEffectivePolicy(ctx context.Context, partnerID int64, at time.Time) (*model.FeePolicy, error)
}

type Approver interface {
	Approve(ctx context.Context, req pg.ApproveRequest) (*pg.Result, error)
}

type PaymentSaver interface {
	Save(ctx context.Context, p *model.Payment) error
}

type PaymentCommand struct {
	PartnerID   int64
	Amount      decimal.Decimal
	CardBin     *string
	CardLast4   *string
	ProductName *string
}

type PaymentService struct {
	partners  PartnerFinder
	policies  FeePolicyFinder
	approver  Approver
	payments  PaymentSaver
	publisher events.Publisher
	now       func() time.Time

	publishTimeout time.Duration
}

// DefaultPublishTimeout bounds the best-effort payment event write.
const DefaultPublishTimeout = 2 * time.Second

// NewPaymentService wires the pay use case. publisher may be nil.
func NewPaymentService(partners PartnerFinder, policies FeePolicyFinder, approver Approver, payments PaymentSaver, publisher events.Publisher) *PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PaymentService{
		partners:  partners,
		policies:  policies,
		approver:  approver,
		payments:  payments,
		publisher: publisher,
		now:       time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
}

// Pay approves a payment through the partner's gateways and records it.
// Nothing is persisted unless every step succeeds. Approval errors are
// returned unwrapped, and so are the precondition sentinels (ErrInvalidAmount,
// ErrPartnerNotFound, ErrPartnerInactive, ErrNoFeePolicy).
func (s *PaymentService) Pay(ctx context.Context, cmd PaymentCommand) (*model.Payment, error) {
	ctx, span := tracer.Start(ctx, "payment.pay", trace.WithAttributes(
		attribute.Int64("partner.id", cmd.PartnerID),
	))
	defer span.End()

	p, err := s.pay(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int64("payment.id", p.ID))
	return p, nil
}

func (s *PaymentService) pay(ctx context.Context, cmd PaymentCommand) (*model.Payment, error) {
	log.Debug().Int64("partner_id", cmd.PartnerID).Str("amount", cmd.Amount.String()).Msg("payment started")

	if !cmd.Amount.IsPositive() || !cmd.Amount.IsInteger() {
		log.Warn().Int64("partner_id", cmd.PartnerID).Str("amount", cmd.Amount.String()).Msg("payment rejected: invalid amount")
		return nil, ErrInvalidAmount
	}

	partner, err := s.partners.FindByID(ctx, cmd.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("find partner: %w", err)
	}
	if partner == nil {
		log.Warn().Int64("partner_id", cmd.PartnerID).Msg("payment rejected: partner not found")
		return nil, ErrPartnerNotFound
	}
	if !partner.Active {
		log.Warn().Int64("partner_id", partner.ID).Msg("payment rejected: partner inactive")
		return nil, ErrPartnerInactive
	}

	policy, err := s.policies.FindEffectivePolicy(ctx, partner.ID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("find fee policy: %w", err)
	}
	if policy == nil {
		log.Error().Int64("partner_id", partner.ID).Msg("payment rejected: no fee policy in effect")
		return nil, ErrNoFeePolicy
	}
	log.Debug().
		Int64("partner_id", partner.ID).
		Int64("policy_id", policy.ID).
		Str("rate", policy.Percentage.String()).
		Msg("fee policy applied")

	result, err := s.approver.Approve(ctx, pg.ApproveRequest{
		PartnerID:   partner.ID,
		Amount:      cmd.Amount,
		CardBin:     cmd.CardBin,
		CardLast4:   cmd.CardLast4,
		ProductName: cmd.ProductName,
	})
	if err != nil {
		return nil, err
	}

	feeAmount, net := fee.Calculate(cmd.Amount, policy.Percentage, policy.FixedFee)
	createdAt := s.now().UTC().Truncate(time.Millisecond)
	payment := &model.Payment{
		PartnerID:      partner.ID,
		Amount:         cmd.Amount,
		AppliedFeeRate: policy.Percentage,
		FeeAmount:      feeAmount,
		NetAmount:      net,
		CardBin:        cmd.CardBin,
		CardLast4:      cmd.CardLast4,
		ApprovalCode:   result.ApprovalCode,
		ApprovedAt:     result.ApprovedAt.UTC(),
		Status:         result.Status,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}

	log.Info().
		Int64("payment_id", payment.ID).
		Int64("partner_id", payment.PartnerID).
		Str("amount", payment.Amount.String()).
		Str("fee", payment.FeeAmount.String()).
		Str("net_amount", payment.NetAmount.String()).
		Str("status", string(payment.Status)).
		Msg("payment completed")

	pubCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.PaymentCreated(pubCtx, payment); err != nil {
		log.Warn().Err(err).Int64("payment_id", payment.ID).Msg("payment event not published")
	}
	return payment, nil
}
