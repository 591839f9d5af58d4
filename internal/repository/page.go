package repository

import (
	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

// NewPaymentPage turns up to limit+1 rows, already in (created_at DESC, id
// DESC) order, into a page. The extra row only signals that another page
// exists; it is dropped before summarising. Next-cursor fields are set if and
// only if HasNext is true.
func NewPaymentPage(rows []model.Payment, limit int) *model.PaymentPage {
	if limit < 1 {
		limit = 1
	}
	hasNext := len(rows) > limit
	if hasNext {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []model.Payment{}
	}

	page := &model.PaymentPage{
		Items:   rows,
		Summary: Summarize(rows),
		HasNext: hasNext,
	}
	if hasNext {
		last := rows[len(rows)-1]
		createdAt := last.CreatedAt
		id := last.ID
		page.NextCursorCreatedAt = &createdAt
		page.NextCursorID = &id
	}
	return page
}

func Summarize(items []model.Payment) model.PaymentSummary {
	total := decimal.Zero
	net := decimal.Zero
	for _, p := range items {
		total = total.Add(p.Amount)
		net = net.Add(p.NetAmount)
	}
	return model.PaymentSummary{
		Count:          int64(len(items)),
		TotalAmount:    total,
		TotalNetAmount: net,
	}
}
