package pg

import (
	"context"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

// Resolver returns the provider codes a partner may use, in attempt order.
type Resolver interface {
	Resolve(ctx context.Context, partnerID int64) ([]model.ProviderCode, error)
}

// SupportStore reads the partner/gateway support table. Only active partners
// and active gateways are returned, ordered by gateway priority.
type SupportStore interface {
	FindProviderCodesByPriority(ctx context.Context, partnerID int64) ([]model.ProviderCode, error)
}

type PriorityResolver struct {
	store SupportStore
}

func NewPriorityResolver(store SupportStore) *PriorityResolver {
	return &PriorityResolver{store: store}
}

func (r *PriorityResolver) Resolve(ctx context.Context, partnerID int64) ([]model.ProviderCode, error) {
	return r.store.FindProviderCodesByPriority(ctx, partnerID)
}
