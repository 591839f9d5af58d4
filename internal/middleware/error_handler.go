package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/pg-gateway-facade/internal/fee"
	"github.com/anyulbade/pg-gateway-facade/internal/pg"
	"github.com/anyulbade/pg-gateway-facade/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MapError translates a use-case error into an HTTP status and body.
// Anything it does not recognise is treated as a database error.
func MapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidQuery),
		errors.Is(err, fee.ErrInvalidPolicy):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()}
	case errors.Is(err, service.ErrPartnerNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "partner not found", Details: err.Error()}
	case errors.Is(err, service.ErrPartnerInactive):
		return http.StatusBadRequest, ErrorResponse{Error: "partner is inactive", Details: err.Error()}
	case errors.Is(err, service.ErrNoFeePolicy):
		log.Error().Err(err).Msg("payment rejected: fee policy missing")
		return http.StatusInternalServerError, ErrorResponse{Error: "fee policy not configured", Details: err.Error()}
	case errors.Is(err, pg.ErrNoProviderConfigured):
		log.Error().Err(err).Msg("payment rejected: no gateway configured")
		return http.StatusInternalServerError, ErrorResponse{Error: "payment gateway not configured", Details: err.Error()}
	case errors.Is(err, pg.ErrAllProvidersFailed):
		return http.StatusBadGateway, ErrorResponse{Error: "payment approval failed", Details: err.Error()}
	}
	return MapDBError(err)
}

func MapDBError(err error) (int, ErrorResponse) {
	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, ErrorResponse{Error: "resource not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "resource already exists",
				Details: pgErr.Detail,
			}
		case "23503": // foreign_key_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "referenced resource does not exist",
				Details: pgErr.Detail,
			}
		case "23514": // check_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "constraint violation",
				Details: pgErr.Detail,
			}
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			status, resp := MapError(err)
			c.JSON(status, resp)
		}
	}
}
