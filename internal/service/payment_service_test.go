package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/pg-gateway-facade/internal/fee"
	"github.com/anyulbade/pg-gateway-facade/internal/model"
	"github.com/anyulbade/pg-gateway-facade/internal/pg"
	"github.com/anyulbade/pg-gateway-facade/internal/repository"
)

type memPartners map[int64]*model.Partner

func (m memPartners) FindByID(_ context.Context, id int64) (*model.Partner, error) {
	return m[id], nil
}

type memPolicies struct {
	policies []model.FeePolicy
	calls    int
	lastAt   time.Time
}

func (m *memPolicies) FindEffectivePolicy(_ context.Context, partnerID int64, at time.Time) (*model.FeePolicy, error) {
	m.calls++
	m.lastAt = at
	var own []model.FeePolicy
	for _, p := range m.policies {
		if p.PartnerID == partnerID {
			own = append(own, p)
		}
	}
	p, ok := fee.EffectivePolicy(own, at)
	if !ok {
		return nil, nil
	}
	return p, nil
}

type stubApprover struct {
	result *pg.Result
	err    error
	calls  int
	last   pg.ApproveRequest
	during func()
}

func (a *stubApprover) Approve(_ context.Context, req pg.ApproveRequest) (*pg.Result, error) {
	a.calls++
	a.last = req
	if a.during != nil {
		a.during()
	}
	return a.result, a.err
}

type memPayments struct {
	items   []model.Payment
	saveErr error
}

func (m *memPayments) Save(_ context.Context, p *model.Payment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	p.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *p)
	return nil
}

func (m *memPayments) FindPageWithSummary(_ context.Context, q model.PaymentQuery) (*model.PaymentPage, error) {
	var rows []model.Payment
	for _, p := range m.items {
		if q.PartnerID != nil && p.PartnerID != *q.PartnerID {
			continue
		}
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		if q.From != nil && p.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && p.CreatedAt.After(*q.To) {
			continue
		}
		if q.CursorCreatedAt != nil && q.CursorID != nil {
			after := p.CreatedAt.Before(*q.CursorCreatedAt) ||
				(p.CreatedAt.Equal(*q.CursorCreatedAt) && p.ID < *q.CursorID)
			if !after {
				continue
			}
		}
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	if len(rows) > q.Limit+1 {
		rows = rows[:q.Limit+1]
	}
	return repository.NewPaymentPage(rows, q.Limit), nil
}

type recordingPublisher struct {
	published []int64
	err       error
}

func (r *recordingPublisher) PaymentCreated(_ context.Context, p *model.Payment) error {
	r.published = append(r.published, p.ID)
	return r.err
}

type payFixture struct {
	partners  memPartners
	policies  *memPolicies
	approver  *stubApprover
	payments  *memPayments
	publisher *recordingPublisher
	svc       *PaymentService
}

var fixedNow = time.Date(2025, 3, 10, 12, 30, 45, 123456789, time.UTC)

func newPayFixture(t *testing.T) *payFixture {
	t.Helper()
	f := &payFixture{
		partners: memPartners{
			1: {ID: 1, Code: "MOCK1", Name: "Mock", Active: true},
			2: {ID: 2, Code: "OFF", Name: "Off", Active: false},
			3: {ID: 3, Code: "NOPOLICY", Name: "No policy", Active: true},
		},
		policies: &memPolicies{policies: []model.FeePolicy{
			{ID: 1, PartnerID: 1, EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				Percentage: decimal.RequireFromString("0.025"), FixedFee: decimal.NewNullDecimal(decimal.NewFromInt(200))},
			{ID: 2, PartnerID: 2, EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				Percentage: decimal.RequireFromString("0.03")},
		}},
		approver: &stubApprover{result: &pg.Result{
			ApprovalCode: "APPROVAL-1",
			ApprovedAt:   time.Date(2025, 3, 10, 21, 30, 45, 0, time.FixedZone("KST", 9*3600)),
			Status:       model.StatusApproved,
		}},
		payments:  &memPayments{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewPaymentService(f.partners, f.policies, f.approver, f.payments, f.publisher)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func strPtr(s string) *string { return &s }

func TestPay_FeeAndNet(t *testing.T) {
	f := newPayFixture(t)

	p, err := f.svc.Pay(context.Background(), PaymentCommand{
		PartnerID: 1,
		Amount:    decimal.NewFromInt(10000),
		CardBin:   strPtr("123456"),
		CardLast4: strPtr("4242"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.ID)
	assert.True(t, p.FeeAmount.Equal(decimal.NewFromInt(450)), p.FeeAmount.String())
	assert.True(t, p.NetAmount.Equal(decimal.NewFromInt(9550)), p.NetAmount.String())
	assert.True(t, p.AppliedFeeRate.Equal(decimal.RequireFromString("0.025")))
	assert.Equal(t, "APPROVAL-1", p.ApprovalCode)
	assert.Equal(t, model.StatusApproved, p.Status)
	assert.Equal(t, time.UTC, p.ApprovedAt.Location())
	assert.True(t, p.ApprovedAt.Equal(time.Date(2025, 3, 10, 12, 30, 45, 0, time.UTC)))
	assert.Equal(t, "4242", *p.CardLast4)

	assert.Equal(t, fixedNow.Truncate(time.Millisecond), p.CreatedAt)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	assert.Len(t, f.payments.items, 1)
	assert.Equal(t, []int64{1}, f.publisher.published)
	assert.Equal(t, int64(1), f.approver.last.PartnerID)
	assert.Equal(t, "123456", *f.approver.last.CardBin)
	assert.Equal(t, fixedNow, f.policies.lastAt)
}

func TestPay_UsesPolicyInEffectNow(t *testing.T) {
	f := newPayFixture(t)
	f.policies.policies = []model.FeePolicy{
		{ID: 10, PartnerID: 1, EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			Percentage: decimal.RequireFromString("0.03"), FixedFee: decimal.NewNullDecimal(decimal.NewFromInt(100))},
		{ID: 11, PartnerID: 1, EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Percentage: decimal.RequireFromString("0.025"), FixedFee: decimal.NewNullDecimal(decimal.NewFromInt(50))},
	}

	p, err := f.svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(10000)})
	require.NoError(t, err)
	assert.True(t, p.AppliedFeeRate.Equal(decimal.RequireFromString("0.025")))
	assert.True(t, p.FeeAmount.Equal(decimal.NewFromInt(300)), p.FeeAmount.String())
	assert.True(t, p.NetAmount.Equal(decimal.NewFromInt(9700)), p.NetAmount.String())
}

func TestPay_PolicyResolvedBeforeApproval(t *testing.T) {
	f := newPayFixture(t)
	f.approver.during = func() {
		f.policies.policies = append(f.policies.policies, model.FeePolicy{
			ID: 99, PartnerID: 1, EffectiveFrom: fixedNow.Add(-time.Second),
			Percentage: decimal.RequireFromString("0.5"),
		})
	}

	p, err := f.svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(10000)})
	require.NoError(t, err)
	assert.Equal(t, 1, f.policies.calls)
	assert.True(t, p.AppliedFeeRate.Equal(decimal.RequireFromString("0.025")))
	assert.True(t, p.FeeAmount.Equal(decimal.NewFromInt(450)))
}

func TestPay_CanceledStatusIsKept(t *testing.T) {
	f := newPayFixture(t)
	f.approver.result.Status = model.StatusCanceled

	p, err := f.svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, p.Status)
}

func TestPay_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		cmd     PaymentCommand
		wantErr error
	}{
		{"unknown partner", PaymentCommand{PartnerID: 404, Amount: decimal.NewFromInt(1000)}, ErrPartnerNotFound},
		{"inactive partner", PaymentCommand{PartnerID: 2, Amount: decimal.NewFromInt(1000)}, ErrPartnerInactive},
		{"no fee policy", PaymentCommand{PartnerID: 3, Amount: decimal.NewFromInt(1000)}, ErrNoFeePolicy},
		{"zero amount", PaymentCommand{PartnerID: 1, Amount: decimal.Zero}, ErrInvalidAmount},
		{"negative amount", PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(-5)}, ErrInvalidAmount},
		{"fractional amount", PaymentCommand{PartnerID: 1, Amount: decimal.RequireFromString("10.5")}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPayFixture(t)

			p, err := f.svc.Pay(context.Background(), tt.cmd)
			assert.Nil(t, p)
			assert.Same(t, tt.wantErr, err, "sentinel is returned as is")
			assert.Equal(t, 0, f.approver.calls, "no gateway may be called")
			assert.Empty(t, f.payments.items, "nothing may be persisted")
			assert.Empty(t, f.publisher.published)
		})
	}
}

func TestPay_ApprovalFailurePassesThrough(t *testing.T) {
	f := newPayFixture(t)
	approvalErr := &pg.ApprovalError{
		PartnerID: 1,
		Tried:     []model.ProviderCode{model.ProviderTestPG, model.ProviderMock},
		Cause:     errors.New("declined"),
	}
	f.approver.result, f.approver.err = nil, approvalErr

	_, err := f.svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(1000)})
	assert.Same(t, approvalErr, err)
	assert.ErrorIs(t, err, pg.ErrAllProvidersFailed)
	assert.Empty(t, f.payments.items)

	f.approver.err = &pg.NoProviderError{PartnerID: 1}
	_, err = f.svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(1000)})
	assert.ErrorIs(t, err, pg.ErrNoProviderConfigured)
	assert.Empty(t, f.payments.items)
}

func TestPay_SaveFailure(t *testing.T) {
	f := newPayFixture(t)
	boom := errors.New("disk full")
	f.payments.saveErr = boom

	_, err := f.svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(1000)})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, f.approver.calls)
	assert.Empty(t, f.publisher.published)
}

func TestPay_PublishFailureDoesNotFailPayment(t *testing.T) {
	f := newPayFixture(t)
	f.publisher.err = errors.New("broker down")

	p, err := f.svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Len(t, f.payments.items, 1)
}

type blockingPublisher struct {
	ctxErr chan error
}

func (b *blockingPublisher) PaymentCreated(ctx context.Context, _ *model.Payment) error {
	<-ctx.Done()
	b.ctxErr <- ctx.Err()
	return ctx.Err()
}

func TestPay_SlowPublisherIsBounded(t *testing.T) {
	f := newPayFixture(t)
	pub := &blockingPublisher{ctxErr: make(chan error, 1)}
	svc := NewPaymentService(f.partners, f.policies, f.approver, f.payments, pub)
	svc.now = func() time.Time { return fixedNow }
	svc.publishTimeout = 20 * time.Millisecond

	start := time.Now()
	p, err := svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.ErrorIs(t, <-pub.ctxErr, context.DeadlineExceeded)
	assert.Len(t, f.payments.items, 1)
}

func TestPay_DefaultPublishTimeout(t *testing.T) {
	f := newPayFixture(t)
	assert.Equal(t, DefaultPublishTimeout, f.svc.publishTimeout)
}

func TestPay_NilPublisher(t *testing.T) {
	f := newPayFixture(t)
	svc := NewPaymentService(f.partners, f.policies, f.approver, f.payments, nil)

	_, err := svc.Pay(context.Background(), PaymentCommand{PartnerID: 1, Amount: decimal.NewFromInt(1000)})
	assert.NoError(t, err)
}
