package dto

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

func contextFor(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/payments?"+query, nil)
	return c
}

func TestParsePaymentListParams_Defaults(t *testing.T) {
	p, err := ParsePaymentListParams(contextFor(""))
	require.NoError(t, err)
	assert.Nil(t, p.PartnerID)
	assert.Nil(t, p.Status)
	assert.Nil(t, p.From)
	assert.Nil(t, p.To)
	assert.Nil(t, p.Cursor)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestParsePaymentListParams_AllFields(t *testing.T) {
	p, err := ParsePaymentListParams(contextFor(
		"partnerId=7&status=canceled&from=2024-01-01+00:00:00&to=2024-01-31T23:59:59%2B09:00&cursor=abc&limit=5"))
	require.NoError(t, err)

	require.NotNil(t, p.PartnerID)
	assert.Equal(t, int64(7), *p.PartnerID)
	require.NotNil(t, p.Status)
	assert.Equal(t, model.StatusCanceled, *p.Status)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *p.From)
	assert.Equal(t, time.Date(2024, 1, 31, 14, 59, 59, 0, time.UTC), *p.To)
	assert.Equal(t, "abc", *p.Cursor)
	assert.Equal(t, 5, p.Limit)
}

func TestParsePaymentListParams_Invalid(t *testing.T) {
	for _, q := range []string{
		"partnerId=abc",
		"status=PENDING",
		"from=yesterday",
		"to=2024-13-01+00:00:00",
		"from=2024-02-01+00:00:00&to=2024-01-01+00:00:00",
		"limit=ten",
		"limit=0",
		"limit=-3",
	} {
		_, err := ParsePaymentListParams(contextFor(q))
		assert.Error(t, err, q)
	}
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	raw, err := json.Marshal(Timestamp(time.Date(2024, 1, 15, 19, 30, 5, 123000000, kst)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-15 10:30:05"`, string(raw))
}

func TestNewQueryResponse(t *testing.T) {
	last4 := "4242"
	items := []model.Payment{{
		ID:             3,
		PartnerID:      1,
		Amount:         decimal.NewFromInt(10000),
		AppliedFeeRate: decimal.RequireFromString("0.0300"),
		FeeAmount:      decimal.NewFromInt(400),
		NetAmount:      decimal.NewFromInt(9600),
		CardLast4:      &last4,
		ApprovalCode:   "MOCK-1",
		ApprovedAt:     time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Status:         model.StatusApproved,
		CreatedAt:      time.Date(2024, 1, 15, 10, 0, 1, 0, time.UTC),
	}}
	summary := model.PaymentSummary{Count: 1, TotalAmount: decimal.NewFromInt(10000), TotalNetAmount: decimal.NewFromInt(9600)}

	raw, err := json.Marshal(NewQueryResponse(items, summary, nil, false))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"items": [{
			"id": 3, "partnerId": 1, "amount": "10000", "appliedFeeRate": "0.03",
			"feeAmount": "400", "netAmount": "9600", "cardLast4": "4242",
			"approvalCode": "MOCK-1", "approvedAt": "2024-01-15 10:00:00",
			"status": "APPROVED", "createdAt": "2024-01-15 10:00:01"
		}],
		"summary": {"count": 1, "totalAmount": "10000", "totalNetAmount": "9600"},
		"nextCursor": null,
		"hasNext": false
	}`, string(raw))

	empty, err := json.Marshal(NewQueryResponse(nil, model.PaymentSummary{}, nil, false))
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"items":[]`)
}
