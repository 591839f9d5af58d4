package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/anyulbade/pg-gateway-facade/internal/fee"
	"github.com/anyulbade/pg-gateway-facade/internal/model"
	"github.com/anyulbade/pg-gateway-facade/internal/pg"
	"github.com/anyulbade/pg-gateway-facade/internal/service"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"partner not found", fmt.Errorf("%w: 9", service.ErrPartnerNotFound), http.StatusNotFound},
		{"partner inactive", fmt.Errorf("%w: 2", service.ErrPartnerInactive), http.StatusBadRequest},
		{"invalid amount", service.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid query", service.ErrInvalidQuery, http.StatusBadRequest},
		{"invalid policy", fmt.Errorf("%w: negative", fee.ErrInvalidPolicy), http.StatusBadRequest},
		{"no fee policy", service.ErrNoFeePolicy, http.StatusInternalServerError},
		{"no gateway", &pg.NoProviderError{PartnerID: 1}, http.StatusInternalServerError},
		{"all gateways failed", &pg.ApprovalError{PartnerID: 1, Tried: []model.ProviderCode{model.ProviderMock}, Cause: errors.New("x")}, http.StatusBadGateway},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound},
		{"fk violation", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"check violation", fmt.Errorf("save: %w", &pgconn.PgError{Code: "23514"}), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestMapError_AggregateDetailsNameGateways(t *testing.T) {
	err := &pg.ApprovalError{
		PartnerID: 4,
		Tried:     []model.ProviderCode{model.ProviderTestPG, model.ProviderMock},
		Cause:     errors.New("declined"),
	}
	_, resp := MapError(err)
	assert.Contains(t, resp.Details, "TEST_PG, MOCK")
	assert.Contains(t, resp.Details, "declined")
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("%w: 1", service.ErrPartnerNotFound))
	})
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "partner not found")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
