package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest accepts amount as a JSON number or string. Amount
// rules (positive integer) are enforced by the payment service.
type CreatePaymentRequest struct {
	PartnerID   int64           `json:"partnerId" binding:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount"`
	CardBin     *string         `json:"cardBin" binding:"omitempty,min=6,max=8,numeric"`
	CardLast4   *string         `json:"cardLast4" binding:"omitempty,len=4,numeric"`
	ProductName *string         `json:"productName" binding:"omitempty,max=255"`
}

// CreateFeePolicyRequest takes effectiveFrom as RFC 3339; a missing value is
// rejected by the handler.
type CreateFeePolicyRequest struct {
	EffectiveFrom time.Time           `json:"effectiveFrom"`
	Percentage    decimal.Decimal     `json:"percentage"`
	FixedFee      decimal.NullDecimal `json:"fixedFee"`
}
