package fee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

var ErrInvalidPolicy = errors.New("invalid fee policy")

// PolicyStore is the persistence side of fee policies.
type PolicyStore interface {
	// FindEffective returns nil, nil when no policy is effective at the given time.
	FindEffective(ctx context.Context, partnerID int64, at time.Time) (*model.FeePolicy, error)
	ListByPartner(ctx context.Context, partnerID int64) ([]model.FeePolicy, error)
	Save(ctx context.Context, policy *model.FeePolicy) error
}

// PolicyCache holds the full policy history of a partner.
type PolicyCache interface {
	Get(ctx context.Context, partnerID int64) ([]model.FeePolicy, bool, error)
	Set(ctx context.Context, partnerID int64, policies []model.FeePolicy) error
	Invalidate(ctx context.Context, partnerID int64) error
}

// EffectivePolicy picks the policy with the greatest EffectiveFrom <= at.
// Equal EffectiveFrom values are resolved in favour of the highest ID.
func EffectivePolicy(policies []model.FeePolicy, at time.Time) (*model.FeePolicy, bool) {
	var best *model.FeePolicy
	for i := range policies {
		p := &policies[i]
		if p.EffectiveFrom.After(at) {
			continue
		}
		if best == nil ||
			p.EffectiveFrom.After(best.EffectiveFrom) ||
			(p.EffectiveFrom.Equal(best.EffectiveFrom) && p.ID > best.ID) {
			best = p
		}
	}
	if best == nil {
		return nil, false
	}
	found := *best
	return &found, true
}

type Resolver struct {
	store PolicyStore
	cache PolicyCache
	now   func() time.Time
}

// NewResolver builds a resolver. cache may be nil.
func NewResolver(store PolicyStore, cache PolicyCache) *Resolver {
	return &Resolver{store: store, cache: cache, now: time.Now}
}

// FindEffectivePolicy returns the policy in force for partnerID at the given
// instant, or nil when none is. A zero at means now. All comparisons are UTC.
func (r *Resolver) FindEffectivePolicy(ctx context.Context, partnerID int64, at time.Time) (*model.FeePolicy, error) {
	if at.IsZero() {
		at = r.now()
	}
	at = at.UTC()

	if r.cache == nil {
		return r.store.FindEffective(ctx, partnerID, at)
	}

	policies, hit, err := r.cache.Get(ctx, partnerID)
	if err != nil {
		log.Warn().Err(err).Int64("partner_id", partnerID).Msg("fee policy cache read failed")
		return r.store.FindEffective(ctx, partnerID, at)
	}
	if !hit {
		policies, err = r.store.ListByPartner(ctx, partnerID)
		if err != nil {
			return nil, fmt.Errorf("list fee policies: %w", err)
		}
		if err := r.cache.Set(ctx, partnerID, policies); err != nil {
			log.Warn().Err(err).Int64("partner_id", partnerID).Msg("fee policy cache write failed")
		}
	}

	policy, ok := EffectivePolicy(policies, at)
	if !ok {
		return nil, nil
	}
	return policy, nil
}

// Register stores a new policy version. Existing versions are never edited.
func (r *Resolver) Register(ctx context.Context, partnerID int64, effectiveFrom time.Time, percentage decimal.Decimal, fixedFee decimal.NullDecimal) (*model.FeePolicy, error) {
	if percentage.IsNegative() {
		return nil, fmt.Errorf("%w: percentage must not be negative: %s", ErrInvalidPolicy, percentage)
	}
	if fixedFee.Valid && fixedFee.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: fixed fee must not be negative: %s", ErrInvalidPolicy, fixedFee.Decimal)
	}

	policy := &model.FeePolicy{
		PartnerID:     partnerID,
		EffectiveFrom: effectiveFrom.UTC(),
		Percentage:    percentage,
		FixedFee:      fixedFee,
	}
	if err := r.store.Save(ctx, policy); err != nil {
		return nil, fmt.Errorf("save fee policy: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Invalidate(ctx, partnerID); err != nil {
			log.Warn().Err(err).Int64("partner_id", partnerID).Msg("fee policy cache invalidation failed")
		}
	}

	log.Info().
		Int64("partner_id", partnerID).
		Int64("policy_id", policy.ID).
		Time("effective_from", policy.EffectiveFrom).
		Str("percentage", percentage.String()).
		Msg("fee policy registered")

	return policy, nil
}
