// Package pg routes payment approvals to external payment gateways.
//
// A partner is configured with an ordered list of provider codes. The
// ApprovalService walks that list sequentially and returns the first
// successful approval; failures fall through to the next provider.
package pg

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

// Client is one external payment gateway. Each implementation declares the
// provider code it serves; the registry is keyed on that declaration.
type Client interface {
	Code() model.ProviderCode
	Approve(ctx context.Context, req ProviderRequest) (*Result, error)
}

// ApproveRequest holds the fields every provider receives.
type ApproveRequest struct {
	PartnerID   int64
	Amount      decimal.Decimal
	CardBin     *string
	CardLast4   *string
	ProductName *string
}

func (r ApproveRequest) Common() ApproveRequest { return r }

// Result is a provider's answer to an approval. Status is trusted verbatim.
type Result struct {
	ApprovalCode    string
	ApprovedAt      time.Time
	Status          model.PaymentStatus
	MaskedCardLast4 *string
	Amount          decimal.NullDecimal
}
