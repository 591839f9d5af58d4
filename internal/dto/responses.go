package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp renders as "2006-01-02 15:04:05" in UTC.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(TimestampLayout) + `"`), nil
}

type PaymentResponse struct {
	ID             int64           `json:"id"`
	PartnerID      int64           `json:"partnerId"`
	Amount         decimal.Decimal `json:"amount"`
	AppliedFeeRate decimal.Decimal `json:"appliedFeeRate"`
	FeeAmount      decimal.Decimal `json:"feeAmount"`
	NetAmount      decimal.Decimal `json:"netAmount"`
	CardLast4      *string         `json:"cardLast4"`
	ApprovalCode   string          `json:"approvalCode"`
	ApprovedAt     Timestamp       `json:"approvedAt"`
	Status         string          `json:"status"`
	CreatedAt      Timestamp       `json:"createdAt"`
}

func NewPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		PartnerID:      p.PartnerID,
		Amount:         p.Amount,
		AppliedFeeRate: p.AppliedFeeRate,
		FeeAmount:      p.FeeAmount,
		NetAmount:      p.NetAmount,
		CardLast4:      p.CardLast4,
		ApprovalCode:   p.ApprovalCode,
		ApprovedAt:     Timestamp(p.ApprovedAt),
		Status:         string(p.Status),
		CreatedAt:      Timestamp(p.CreatedAt),
	}
}

type SummaryResponse struct {
	Count          int64           `json:"count"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TotalNetAmount decimal.Decimal `json:"totalNetAmount"`
}

type QueryResponse struct {
	Items      []PaymentResponse `json:"items"`
	Summary    SummaryResponse   `json:"summary"`
	NextCursor *string           `json:"nextCursor"`
	HasNext    bool              `json:"hasNext"`
}

type FeePolicyResponse struct {
	ID            int64               `json:"id"`
	PartnerID     int64               `json:"partnerId"`
	EffectiveFrom Timestamp           `json:"effectiveFrom"`
	Percentage    decimal.Decimal     `json:"percentage"`
	FixedFee      decimal.NullDecimal `json:"fixedFee"`
}

func NewFeePolicyResponse(p *model.FeePolicy) FeePolicyResponse {
	return FeePolicyResponse{
		ID:            p.ID,
		PartnerID:     p.PartnerID,
		EffectiveFrom: Timestamp(p.EffectiveFrom),
		Percentage:    p.Percentage,
		FixedFee:      p.FixedFee,
	}
}
