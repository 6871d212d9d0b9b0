// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"haulbase/internal/modules/dispatch"
	"haulbase/internal/modules/fare"
	"haulbase/internal/modules/rate"
	"haulbase/internal/modules/settlement"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func parseInt64(v string) (int64, error) {
	return strconv.ParseInt(v, 10, 64)
}

// writeDomainError maps module sentinel errors onto HTTP statuses.
// Business-rule violations are client errors, never 500s.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fare.ErrStopCountMismatch),
		errors.Is(err, fare.ErrDuplicateRegions),
		errors.Is(err, fare.ErrNegotiatedFare),
		errors.Is(err, fare.ErrNoRegions),
		errors.Is(err, fare.ErrUnknownModel),
		errors.Is(err, rate.ErrBadRequest),
		errors.Is(err, rate.ErrInvalidCenterFare),
		errors.Is(err, settlement.ErrBadRequest),
		errors.Is(err, dispatch.ErrBadRequest),
		errors.Is(err, dispatch.ErrStopCountMismatch),
		errors.Is(err, dispatch.ErrAdjustmentReason):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, settlement.ErrNotFound),
		errors.Is(err, dispatch.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, settlement.ErrInvalidState),
		errors.Is(err, settlement.ErrConflict),
		errors.Is(err, settlement.ErrAlreadyExists):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, settlement.ErrFutureMonth):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
