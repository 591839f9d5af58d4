// Package testpg calls the TEST_PG card approval API. Request bodies are
// JSON encrypted with AES-256-GCM; responses are plain JSON.
package testpg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
	"github.com/anyulbade/pg-gateway-facade/internal/pg"
)

const (
	DefaultBaseURL = "https://api-test-pg.bigs.im"
	approvePath    = "/api/v1/pay/credit-card"
)

var (
	ErrRejected     = errors.New("test pg rejected the payment")
	ErrUnauthorized = errors.New("test pg rejected the api key")
)

// Error is a non-2xx answer from TEST_PG.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	switch e.StatusCode {
	case http.StatusUnprocessableEntity:
		return "test pg approval rejected: " + e.Body
	case http.StatusUnauthorized:
		return "test pg authentication failed: invalid API-KEY"
	default:
		return fmt.Sprintf("test pg call failed: status %d: %s", e.StatusCode, e.Body)
	}
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrRejected:
		return e.StatusCode == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

type plainRequest struct {
	CardNumber string `json:"cardNumber"`
	BirthDate  string `json:"birthDate"`
	Expiry     string `json:"expiry"`
	Password   string `json:"password"`
	Amount     int64  `json:"amount"`
}

type response struct {
	ApprovalCode    string `json:"approvalCode"`
	ApprovedAt      string `json:"approvedAt"`
	MaskedCardLast4 string `json:"maskedCardLast4"`
	Amount          int64  `json:"amount"`
	Status          string `json:"status"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Code() model.ProviderCode { return model.ProviderTestPG }

func (c *Client) Approve(ctx context.Context, req pg.ProviderRequest) (*pg.Result, error) {
	treq, ok := req.(pg.TestPGRequest)
	if !ok {
		return nil, fmt.Errorf("test pg requires a TEST_PG request, got %s", req.Provider())
	}
	if !treq.Amount.IsInteger() {
		return nil, fmt.Errorf("test pg amount must be an integer: %s", treq.Amount)
	}

	plain, err := json.Marshal(plainRequest{
		CardNumber: treq.Extra.CardNumber,
		BirthDate:  treq.Extra.BirthDate,
		Expiry:     treq.Extra.Expiry,
		Password:   treq.Extra.Password,
		Amount:     treq.Amount.IntPart(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal test pg request: %w", err)
	}
	enc, err := Encrypt(plain, treq.Extra.APIKey, treq.Extra.IVBase64URL)
	if err != nil {
		return nil, fmt.Errorf("encrypt test pg request: %w", err)
	}
	payload, err := json.Marshal(map[string]string{"enc": enc})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+approvePath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("API-KEY", treq.Extra.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call test pg: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read test pg response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode test pg response: %w", err)
	}
	return r.toResult()
}

func (r response) toResult() (*pg.Result, error) {
	var status model.PaymentStatus
	switch strings.ToUpper(r.Status) {
	case string(model.StatusApproved):
		status = model.StatusApproved
	case string(model.StatusCanceled):
		status = model.StatusCanceled
	default:
		return nil, fmt.Errorf("unknown test pg payment status %q", r.Status)
	}
	approvedAt, err := parseApprovedAt(r.ApprovedAt)
	if err != nil {
		return nil, err
	}
	res := &pg.Result{
		ApprovalCode: r.ApprovalCode,
		ApprovedAt:   approvedAt,
		Status:       status,
		Amount:       decimal.NewNullDecimal(decimal.NewFromInt(r.Amount)),
	}
	if r.MaskedCardLast4 != "" {
		v := r.MaskedCardLast4
		res.MaskedCardLast4 = &v
	}
	return res, nil
}

// parseApprovedAt reads an ISO local date-time, taken as UTC. Offsets are
// accepted too.
func parseApprovedAt(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse test pg approvedAt %q: %w", s, err)
	}
	return t.UTC(), nil
}
