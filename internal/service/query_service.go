package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anyulbade/pg-gateway-facade/internal/cursor"
	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 20
)

type PaymentPageFinder interface {
	FindPageWithSummary(ctx context.Context, q model.PaymentQuery) (*model.PaymentPage, error)
}

type PaymentFilter struct {
	PartnerID *int64
	Status    *model.PaymentStatus
	From      *time.Time
	To        *time.Time
	Cursor    *string
	Limit     int // zero means DefaultPageLimit
}

type PaymentQueryResult struct {
	Items      []model.Payment
	Summary    model.PaymentSummary
	NextCursor *string
	HasNext    bool
}

type QueryService struct {
	payments PaymentPageFinder
}

func NewQueryService(payments PaymentPageFinder) *QueryService {
	return &QueryService{payments: payments}
}

// Query returns one page of payments, newest first. An unreadable cursor
// starts from the first page. The summary covers the returned items.
func (s *QueryService) Query(ctx context.Context, f PaymentFilter) (*PaymentQueryResult, error) {
	limit := f.Limit
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxPageLimit)
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, *f.Status)
	}

	cursorAt, cursorID := cursor.Decode(f.Cursor)
	q := model.PaymentQuery{
		PartnerID:       f.PartnerID,
		Status:          f.Status,
		From:            utc(f.From),
		To:              utc(f.To),
		CursorCreatedAt: cursorAt,
		CursorID:        cursorID,
		Limit:           limit,
	}

	page, err := s.payments.FindPageWithSummary(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}

	res := &PaymentQueryResult{
		Items:   page.Items,
		Summary: page.Summary,
		HasNext: page.HasNext,
	}
	if page.HasNext {
		res.NextCursor = cursor.Encode(page.NextCursorCreatedAt, page.NextCursorID)
	}
	if res.NextCursor == nil {
		res.HasNext = false
	}
	return res, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
