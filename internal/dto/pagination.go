package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

const DefaultLimit = 20

type PaymentListParams struct {
	PartnerID *int64
	Status    *model.PaymentStatus
	From      *time.Time
	To        *time.Time
	Cursor    *string
	Limit     int
}

// ParsePaymentListParams reads partnerId, status, from, to, cursor and limit.
// Dates are "2006-01-02 15:04:05" in UTC or RFC 3339. An explicit limit
// below 1 is rejected here; the upper bound is checked by the query service.
func ParsePaymentListParams(c *gin.Context) (PaymentListParams, error) {
	var p PaymentListParams

	if raw := c.Query("partnerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p, fmt.Errorf("invalid partnerId %q", raw)
		}
		p.PartnerID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := model.PaymentStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return p, fmt.Errorf("invalid status %q", raw)
		}
		p.Status = &status
	}

	var err error
	if p.From, err = parseTime(c.Query("from")); err != nil {
		return p, fmt.Errorf("invalid from: %w", err)
	}
	if p.To, err = parseTime(c.Query("to")); err != nil {
		return p, fmt.Errorf("invalid to: %w", err)
	}
	if p.From != nil && p.To != nil && p.From.After(*p.To) {
		return p, fmt.Errorf("from must not be after to")
	}

	if raw := c.Query("cursor"); raw != "" {
		p.Cursor = &raw
	}

	p.Limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil {
		return p, fmt.Errorf("invalid limit %q", c.Query("limit"))
	}
	if p.Limit < 1 {
		return p, fmt.Errorf("limit must be at least 1, got %d", p.Limit)
	}
	return p, nil
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(TimestampLayout, raw, time.UTC); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("expected %q or RFC 3339, got %q", TimestampLayout, raw)
	}
	t = t.UTC()
	return &t, nil
}

func NewQueryResponse(items []model.Payment, summary model.PaymentSummary, nextCursor *string, hasNext bool) QueryResponse {
	out := make([]PaymentResponse, len(items))
	for i := range items {
		out[i] = NewPaymentResponse(&items[i])
	}
	return QueryResponse{
		Items: out,
		Summary: SummaryResponse{
			Count:          summary.Count,
			TotalAmount:    summary.TotalAmount,
			TotalNetAmount: summary.TotalNetAmount,
		},
		NextCursor: nextCursor,
		HasNext:    hasNext,
	}
}
