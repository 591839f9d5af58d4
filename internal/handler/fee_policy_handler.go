package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/anyulbade/pg-gateway-facade/internal/dto"
	"github.com/anyulbade/pg-gateway-facade/internal/middleware"
	"github.com/anyulbade/pg-gateway-facade/internal/model"
	"github.com/anyulbade/pg-gateway-facade/internal/service"
)

type PolicyRegistrar interface {
	Register(ctx context.Context, partnerID int64, effectiveFrom time.Time, percentage decimal.Decimal, fixedFee decimal.NullDecimal) (*model.FeePolicy, error)
}

type PartnerChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type FeePolicyHandler struct {
	policies PolicyRegistrar
	partners PartnerChecker
}

func NewFeePolicyHandler(policies PolicyRegistrar, partners PartnerChecker) *FeePolicyHandler {
	return &FeePolicyHandler{policies: policies, partners: partners}
}

// Create handles POST /api/v1/partners/:id/fee-policies.
func (h *FeePolicyHandler) Create(c *gin.Context) {
	partnerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || partnerID <= 0 {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid partner id"})
		return
	}

	var req dto.CreateFeePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "validation failed",
			Details: err.Error(),
		})
		return
	}
	if req.EffectiveFrom.IsZero() {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "validation failed",
			Details: "effectiveFrom is required",
		})
		return
	}

	exists, err := h.partners.Exists(c.Request.Context(), partnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !exists {
		_ = c.Error(service.ErrPartnerNotFound)
		return
	}

	policy, err := h.policies.Register(c.Request.Context(), partnerID, req.EffectiveFrom, req.Percentage, req.FixedFee)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewFeePolicyResponse(policy))
}
