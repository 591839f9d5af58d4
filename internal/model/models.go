package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusApproved PaymentStatus = "APPROVED"
	StatusCanceled PaymentStatus = "CANCELED"
)

func (s PaymentStatus) Valid() bool {
	return s == StatusApproved || s == StatusCanceled
}

// ProviderCode identifies an external payment gateway. Codes read from storage
// are kept verbatim, so an unknown code still flows through routing and fails
// at the registry instead of at parse time.
type ProviderCode string

const (
	ProviderTestPG   ProviderCode = "TEST_PG"
	ProviderMock     ProviderCode = "MOCK"
	ProviderTossPay  ProviderCode = "TOSSPAY"
	ProviderNHNKCP   ProviderCode = "NHN_KCP"
	ProviderKGInicis ProviderCode = "KG_INICIS"
)

type Partner struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// FeePolicy is one immutable version of a partner's pricing. Percentage is a
// fraction (0.025 means 2.5%).
type FeePolicy struct {
	ID            int64               `json:"id"`
	PartnerID     int64               `json:"partner_id"`
	EffectiveFrom time.Time           `json:"effective_from"`
	Percentage    decimal.Decimal     `json:"percentage"`
	FixedFee      decimal.NullDecimal `json:"fixed_fee"`
}

type PaymentGateway struct {
	ID       int64        `json:"id"`
	Code     ProviderCode `json:"code"`
	Name     string       `json:"name"`
	Priority int          `json:"priority"`
	Active   bool         `json:"active"`
}

type Payment struct {
	ID             int64           `json:"id"`
	PartnerID      int64           `json:"partner_id"`
	Amount         decimal.Decimal `json:"amount"`
	AppliedFeeRate decimal.Decimal `json:"applied_fee_rate"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	CardBin        *string         `json:"card_bin,omitempty"`
	CardLast4      *string         `json:"card_last4,omitempty"`
	ApprovalCode   string          `json:"approval_code"`
	ApprovedAt     time.Time       `json:"approved_at"`
	Status         PaymentStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type PaymentSummary struct {
	Count          int64           `json:"count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalNetAmount decimal.Decimal `json:"total_net_amount"`
}

// PaymentQuery is the storage-level filter for one page. Nil fields do not
// constrain the result. CursorCreatedAt and CursorID are either both set or
// both nil.
type PaymentQuery struct {
	PartnerID       *int64
	Status          *PaymentStatus
	From            *time.Time
	To              *time.Time
	CursorCreatedAt *time.Time
	CursorID        *int64
	Limit           int
}

type PaymentPage struct {
	Items               []Payment
	Summary             PaymentSummary
	HasNext             bool
	NextCursorCreatedAt *time.Time
	NextCursorID        *int64
}
