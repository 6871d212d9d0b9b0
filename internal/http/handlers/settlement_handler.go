// README: Settlement lifecycle handlers (preview, finalize, confirm, paid, update, delete).
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"haulbase/internal/modules/settlement"
	"haulbase/internal/types"
)

type SettlementHandler struct {
	settlements *settlement.Service
}

func NewSettlementHandler(svc *settlement.Service) *SettlementHandler {
	return &SettlementHandler{settlements: svc}
}

type settlementKeyReq struct {
	DriverID  string `json:"driver_id"`
	YearMonth string `json:"year_month"`
}

type settlementResp struct {
	ID              types.ID          `json:"id,omitempty"`
	DriverID        types.ID          `json:"driver_id"`
	YearMonth       string            `json:"year_month"`
	TotalTrips      int               `json:"total_trips"`
	TotalBaseFare   int64             `json:"total_base_fare"`
	TotalDeductions int64             `json:"total_deductions"`
	TotalAdditions  int64             `json:"total_additions"`
	FinalAmount     int64             `json:"final_amount"`
	Status          settlement.Status `json:"status"`
	Remarks         string            `json:"remarks,omitempty"`
	ConfirmedBy     *types.ID         `json:"confirmed_by,omitempty"`
	ConfirmedAt     *time.Time        `json:"confirmed_at,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
}

func toSettlementResp(s *settlement.Settlement) settlementResp {
	return settlementResp{
		ID:              s.ID,
		DriverID:        s.DriverID,
		YearMonth:       s.YearMonth.String(),
		TotalTrips:      s.TotalTrips,
		TotalBaseFare:   s.TotalBaseFare,
		TotalDeductions: s.TotalDeductions,
		TotalAdditions:  s.TotalAdditions,
		FinalAmount:     s.FinalAmount,
		Status:          s.Status,
		Remarks:         s.Remarks,
		ConfirmedBy:     s.ConfirmedBy,
		ConfirmedAt:     s.ConfirmedAt,
		PaidAt:          s.PaidAt,
	}
}

func (h *SettlementHandler) parseKey(c *gin.Context) (types.ID, types.YearMonth, bool) {
	var req settlementKeyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return "", types.YearMonth{}, false
	}
	if req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "driver_id is required")
		return "", types.YearMonth{}, false
	}
	ym, err := types.ParseYearMonth(req.YearMonth)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return "", types.YearMonth{}, false
	}
	return types.ID(req.DriverID), ym, true
}

func (h *SettlementHandler) Preview(c *gin.Context) {
	driverID, ym, ok := h.parseKey(c)
	if !ok {
		return
	}
	s, err := h.settlements.Preview(c.Request.Context(), driverID, ym)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSettlementResp(s))
}

func (h *SettlementHandler) Finalize(c *gin.Context) {
	driverID, ym, ok := h.parseKey(c)
	if !ok {
		return
	}
	s, err := h.settlements.Finalize(c.Request.Context(), driverID, ym)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toSettlementResp(s))
}

type confirmReq struct {
	UserID string `json:"user_id"`
}

func (h *SettlementHandler) Confirm(c *gin.Context) {
	var req confirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))
	if err := h.settlements.Confirm(c.Request.Context(), id, types.ID(req.UserID)); err != nil {
		writeDomainError(c, err)
		return
	}
	s, err := h.settlements.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSettlementResp(s))
}

func (h *SettlementHandler) MarkPaid(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if err := h.settlements.MarkPaid(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	s, err := h.settlements.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSettlementResp(s))
}

type updateReq struct {
	TotalDeductions *int64  `json:"total_deductions"`
	TotalAdditions  *int64  `json:"total_additions"`
	Remarks         *string `json:"remarks"`
}

func (h *SettlementHandler) Update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))
	err := h.settlements.Update(c.Request.Context(), id, settlement.UpdatePatch{
		TotalDeductions: req.TotalDeductions,
		TotalAdditions:  req.TotalAdditions,
		Remarks:         req.Remarks,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	s, err := h.settlements.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSettlementResp(s))
}

func (h *SettlementHandler) Delete(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if err := h.settlements.Delete(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SettlementHandler) Get(c *gin.Context) {
	s, err := h.settlements.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSettlementResp(s))
}
