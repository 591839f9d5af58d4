package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

var tracer = otel.Tracer("github.com/anyulbade/pg-gateway-facade/internal/pg")

// ClientRegistry looks up a client by provider code.
type ClientRegistry interface {
	Client(code model.ProviderCode) (Client, bool)
}

// ApprovalService tries each of a partner's gateways in priority order and
// returns the first approval. Every kind of failure, including a code with
// no registered client, moves on to the next gateway.
type ApprovalService struct {
	resolver       Resolver
	registry       ClientRegistry
	factory        RequestFactory
	metrics        *Metrics
	attemptTimeout time.Duration
}

// NewApprovalService builds the orchestrator. metrics may be nil and a zero
// attemptTimeout leaves each call bounded only by ctx.
func NewApprovalService(resolver Resolver, registry ClientRegistry, factory RequestFactory, metrics *Metrics, attemptTimeout time.Duration) *ApprovalService {
	return &ApprovalService{
		resolver:       resolver,
		registry:       registry,
		factory:        factory,
		metrics:        metrics,
		attemptTimeout: attemptTimeout,
	}
}

func (s *ApprovalService) Approve(ctx context.Context, req ApproveRequest) (*Result, error) {
	ctx, span := tracer.Start(ctx, "pg.approve", trace.WithAttributes(
		attribute.Int64("partner.id", req.PartnerID),
	))
	defer span.End()

	providers, err := s.resolver.Resolve(ctx, req.PartnerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve gateways")
		return nil, fmt.Errorf("resolve gateways for partner %d: %w", req.PartnerID, err)
	}
	if len(providers) == 0 {
		err := &NoProviderError{PartnerID: req.PartnerID}
		span.RecordError(err)
		span.SetStatus(codes.Error, "no gateway")
		log.Warn().Int64("partner_id", req.PartnerID).Msg("No payment gateway configured for partner")
		return nil, err
	}

	var last error
	for i, code := range providers {
		result, err := s.attempt(ctx, code, req)
		if err == nil {
			span.SetAttributes(attribute.String("pg.provider", string(code)), attribute.Int("pg.attempts", i+1))
			log.Info().
				Int64("partner_id", req.PartnerID).
				Str("provider", string(code)).
				Int("attempt", i+1).
				Str("approval_code", result.ApprovalCode).
				Msg("Payment approved")
			return result, nil
		}
		log.Warn().Err(err).
			Int64("partner_id", req.PartnerID).
			Str("provider", string(code)).
			Int("attempt", i+1).
			Msg("Payment gateway attempt failed")
		last = err
	}

	tried := make([]model.ProviderCode, len(providers))
	copy(tried, providers)
	aggregate := &ApprovalError{PartnerID: req.PartnerID, Tried: tried, Cause: last}
	s.metrics.exhaust()
	span.RecordError(aggregate)
	span.SetStatus(codes.Error, "all gateways failed")
	log.Error().Err(last).
		Int64("partner_id", req.PartnerID).
		Int("tried", len(tried)).
		Msg("All payment gateways failed")
	return nil, aggregate
}

func (s *ApprovalService) attempt(ctx context.Context, code model.ProviderCode, req ApproveRequest) (*Result, error) {
	client, ok := s.registry.Client(code)
	if !ok {
		s.metrics.attempt(code, outcomeNotRegistered)
		return nil, fmt.Errorf("%w: %s", ErrClientNotRegistered, code)
	}
	preq, err := s.factory.Build(code, req)
	if err != nil {
		s.metrics.attempt(code, outcomeUnsupported)
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "pg.attempt", trace.WithAttributes(
		attribute.String("pg.provider", string(code)),
	))
	defer span.End()

	if s.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.attemptTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := call(ctx, client, preq)
	s.metrics.call(code, time.Since(start))
	if err == nil && result == nil {
		err = errors.New("gateway returned no result")
	}
	if err != nil {
		s.metrics.attempt(code, outcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.metrics.attempt(code, outcomeApproved)
	return result, nil
}

func call(ctx context.Context, client Client, req ProviderRequest) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("gateway %s panicked: %v", client.Code(), r)
		}
	}()
	return client.Approve(ctx, req)
}
