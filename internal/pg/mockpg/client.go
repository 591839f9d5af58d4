// Package mockpg is an in-process payment gateway that approves every
// request. It backs the MOCK provider code for local runs and demos.
package mockpg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
	"github.com/anyulbade/pg-gateway-facade/internal/pg"
)

type Client struct {
	now func() time.Time
}

func NewClient() *Client {
	return &Client{now: time.Now}
}

func (c *Client) Code() model.ProviderCode { return model.ProviderMock }

func (c *Client) Approve(ctx context.Context, req pg.ProviderRequest) (*pg.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mreq, ok := req.(pg.MockRequest)
	if !ok {
		return nil, fmt.Errorf("mock gateway requires a MOCK request, got %s", req.Provider())
	}

	var masked *string
	if mreq.CardLast4 != nil {
		v := *mreq.CardLast4
		masked = &v
	}
	return &pg.Result{
		ApprovalCode:    "MOCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12]),
		ApprovedAt:      c.now().UTC(),
		Status:          model.StatusApproved,
		MaskedCardLast4: masked,
		Amount:          decimal.NewNullDecimal(mreq.Amount),
	}, nil
}
