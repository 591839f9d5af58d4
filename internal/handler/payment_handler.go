package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/pg-gateway-facade/internal/dto"
	"github.com/anyulbade/pg-gateway-facade/internal/middleware"
	"github.com/anyulbade/pg-gateway-facade/internal/model"
	"github.com/anyulbade/pg-gateway-facade/internal/service"
)

type Payer interface {
	Pay(ctx context.Context, cmd service.PaymentCommand) (*model.Payment, error)
}

type PaymentQuerier interface {
	Query(ctx context.Context, f service.PaymentFilter) (*service.PaymentQueryResult, error)
}

type PaymentHandler struct {
	payer   Payer
	querier PaymentQuerier
}

func NewPaymentHandler(payer Payer, querier PaymentQuerier) *PaymentHandler {
	return &PaymentHandler{payer: payer, querier: querier}
}

// Create handles POST /api/v1/payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "validation failed",
			Details: err.Error(),
		})
		return
	}

	payment, err := h.payer.Pay(c.Request.Context(), service.PaymentCommand{
		PartnerID:   req.PartnerID,
		Amount:      req.Amount,
		CardBin:     req.CardBin,
		CardLast4:   req.CardLast4,
		ProductName: req.ProductName,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewPaymentResponse(payment))
}

// List handles GET /api/v1/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	params, err := dto.ParsePaymentListParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	res, err := h.querier.Query(c.Request.Context(), service.PaymentFilter{
		PartnerID: params.PartnerID,
		Status:    params.Status,
		From:      params.From,
		To:        params.To,
		Cursor:    params.Cursor,
		Limit:     params.Limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQueryResponse(res.Items, res.Summary, res.NextCursor, res.HasNext))
}
