// README: Trip and dispatch handlers, plus per-dispatch profitability.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"haulbase/internal/modules/dispatch"
	"haulbase/internal/modules/profit"
	"haulbase/internal/types"
)

type TripHandler struct {
	dispatches *dispatch.Service
	profit     *profit.Evaluator
}

func NewTripHandler(dispatches *dispatch.Service, evaluator *profit.Evaluator) *TripHandler {
	return &TripHandler{dispatches: dispatches, profit: evaluator}
}

type createTripReq struct {
	CenterName       string    `json:"center_name"`
	LoadingPointID   string    `json:"loading_point_id"`
	VehicleType      string    `json:"vehicle_type"`
	Tonnage          string    `json:"tonnage"`
	Regions          []string  `json:"regions"`
	StopCount        int       `json:"stop_count"`
	AdjustmentAmount int64     `json:"adjustment_amount"`
	AdjustmentReason string    `json:"adjustment_reason"`
	DepartAt         time.Time `json:"depart_at"`
}

func (h *TripHandler) Create(c *gin.Context) {
	var req createTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.dispatches.CreateTrip(c.Request.Context(), dispatch.CreateTripCommand{
		CenterName:       req.CenterName,
		LoadingPointID:   types.ID(req.LoadingPointID),
		VehicleType:      req.VehicleType,
		Tonnage:          req.Tonnage,
		Regions:          req.Regions,
		StopCount:        req.StopCount,
		AdjustmentAmount: req.AdjustmentAmount,
		AdjustmentReason: req.AdjustmentReason,
		DepartAt:         req.DepartAt,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"trip_id": id})
}

type assignReq struct {
	DriverID    string `json:"driver_id"`
	DriverName  string `json:"driver_name"`
	DriverPhone string `json:"driver_phone"`
	VehicleNo   string `json:"vehicle_no"`
	DriverFee   int64  `json:"driver_fee"`
	Deduction   int64  `json:"deduction"`
	Addition    int64  `json:"addition"`
}

func (h *TripHandler) Assign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.dispatches.Assign(c.Request.Context(), dispatch.AssignCommand{
		TripID:      types.ID(c.Param("id")),
		DriverID:    types.ID(req.DriverID),
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		VehicleNo:   req.VehicleNo,
		DriverFee:   req.DriverFee,
		Deduction:   req.Deduction,
		Addition:    req.Addition,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"dispatch_id": id})
}

type setFareReq struct {
	BaseFare       int64  `json:"base_fare"`
	ExtraStopFee   int64  `json:"extra_stop_fee"`
	ExtraRegionFee int64  `json:"extra_region_fee"`
	TotalFare      *int64 `json:"total_fare"`
}

func (h *TripHandler) SetFare(c *gin.Context) {
	var req setFareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))
	if err := h.dispatches.SetTripFare(c.Request.Context(), id, req.BaseFare, req.ExtraStopFee, req.ExtraRegionFee, req.TotalFare); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type dispatchResp struct {
	ID          types.ID `json:"id"`
	TripID      types.ID `json:"trip_id"`
	DriverID    types.ID `json:"driver_id"`
	DriverName  string   `json:"driver_name"`
	DriverPhone string   `json:"driver_phone,omitempty"`
	VehicleNo   string   `json:"vehicle_no,omitempty"`
	DriverFee   int64    `json:"driver_fee"`
	Deduction   int64    `json:"deduction"`
	Addition    int64    `json:"addition"`
}

// ListDriverMonth returns a driver's dispatches for ?month=YYYY-MM, the
// detail rows behind that month's settlement.
func (h *TripHandler) ListDriverMonth(c *gin.Context) {
	ym, err := types.ParseYearMonth(c.Query("month"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.dispatches.ListMonth(c.Request.Context(), types.ID(c.Param("id")), ym)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]dispatchResp, 0, len(rows))
	for _, d := range rows {
		out = append(out, dispatchResp{
			ID:          d.ID,
			TripID:      d.TripID,
			DriverID:    d.DriverID,
			DriverName:  d.DriverName,
			DriverPhone: d.DriverPhone,
			VehicleNo:   d.VehicleNo,
			DriverFee:   d.DriverFee,
			Deduction:   d.Deduction,
			Addition:    d.Addition,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"dispatches": out})
}

// Profitability evaluates center billing against a driver fee supplied
// as a query param (the fee of the dispatch being examined).
func (h *TripHandler) Profitability(c *gin.Context) {
	t, err := h.dispatches.GetTrip(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	var driverFee int64
	if v, ok := c.GetQuery("driver_fee"); ok {
		fee, err := parseInt64(v)
		if err != nil || fee < 0 {
			writeError(c, http.StatusBadRequest, "invalid driver_fee")
			return
		}
		driverFee = fee
	}
	writeJSON(c, http.StatusOK, h.profit.Evaluate(profit.Billing(t), driverFee))
}
