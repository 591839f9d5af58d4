package pg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

var (
	ErrNoProviderConfigured = errors.New("no supported payment gateway configured")
	ErrAllProvidersFailed   = errors.New("all payment gateways failed")
	ErrClientNotRegistered  = errors.New("payment gateway client not registered")
	ErrUnsupportedProvider  = errors.New("unsupported payment gateway")
)

type NoProviderError struct {
	PartnerID int64
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("no supported payment gateway for partner %d", e.PartnerID)
}

func (e *NoProviderError) Is(target error) bool { return target == ErrNoProviderConfigured }

// ApprovalError reports that every configured provider failed. Only the last
// failure is carried; earlier ones are logged as they happen.
type ApprovalError struct {
	PartnerID int64
	Tried     []model.ProviderCode
	Cause     error
}

func (e *ApprovalError) Error() string {
	codes := make([]string, len(e.Tried))
	for i, c := range e.Tried {
		codes[i] = string(c)
	}
	msg := fmt.Sprintf("failed to approve payment for partner %d: tried %d gateway(s): %s",
		e.PartnerID, len(e.Tried), strings.Join(codes, ", "))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ApprovalError) Unwrap() error { return e.Cause }

func (e *ApprovalError) Is(target error) bool { return target == ErrAllProvidersFailed }
