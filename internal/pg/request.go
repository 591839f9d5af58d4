package pg

import (
	"fmt"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

// ProviderRequest is the provider-specific view of an ApproveRequest. The
// concrete type is selected by provider code in RequestFactory.Build.
type ProviderRequest interface {
	Provider() model.ProviderCode
	Common() ApproveRequest
}

// TestPGExtra carries the card and transport parameters TEST_PG requires on
// top of the common fields.
type TestPGExtra struct {
	CardNumber  string
	BirthDate   string
	Expiry      string
	Password    string
	APIKey      string
	IVBase64URL string
}

func DefaultTestPGExtra() TestPGExtra {
	return TestPGExtra{
		CardNumber:  "1111-1111-1111-1111",
		BirthDate:   "19900101",
		Expiry:      "1227",
		Password:    "12",
		APIKey:      "11111111-1111-4111-8111-111111111111",
		IVBase64URL: "AAAAAAAAAAAAAAAA",
	}
}

type TestPGRequest struct {
	ApproveRequest
	Extra TestPGExtra
}

func (TestPGRequest) Provider() model.ProviderCode { return model.ProviderTestPG }

type MockRequest struct {
	ApproveRequest
}

func (MockRequest) Provider() model.ProviderCode { return model.ProviderMock }

type RequestFactory struct {
	testPG TestPGExtra
}

// NewRequestFactory fills empty fields of testPG from DefaultTestPGExtra.
func NewRequestFactory(testPG TestPGExtra) RequestFactory {
	def := DefaultTestPGExtra()
	if testPG.CardNumber == "" {
		testPG.CardNumber = def.CardNumber
	}
	if testPG.BirthDate == "" {
		testPG.BirthDate = def.BirthDate
	}
	if testPG.Expiry == "" {
		testPG.Expiry = def.Expiry
	}
	if testPG.Password == "" {
		testPG.Password = def.Password
	}
	if testPG.APIKey == "" {
		testPG.APIKey = def.APIKey
	}
	if testPG.IVBase64URL == "" {
		testPG.IVBase64URL = def.IVBase64URL
	}
	return RequestFactory{testPG: testPG}
}

func (f RequestFactory) Build(code model.ProviderCode, req ApproveRequest) (ProviderRequest, error) {
	switch code {
	case model.ProviderTestPG:
		return TestPGRequest{ApproveRequest: req, Extra: f.testPG}, nil
	case model.ProviderMock:
		return MockRequest{ApproveRequest: req}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, code)
	}
}
