// README: Rate table upsert handlers; duplicates are reported as skipped.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"haulbase/internal/modules/rate"
	"haulbase/internal/types"
)

type RateHandler struct {
	rates *rate.Service
}

func NewRateHandler(svc *rate.Service) *RateHandler {
	return &RateHandler{rates: svc}
}

type putBaseReq struct {
	CenterName string `json:"center_name"`
	Tonnage    string `json:"tonnage"`
	Region     string `json:"region"`
	BaseFare   int64  `json:"base_fare"`
}

type putAddonsReq struct {
	CenterName  string `json:"center_name"`
	Tonnage     string `json:"tonnage"`
	PerStop     int64  `json:"per_stop"`
	PerWaypoint int64  `json:"per_waypoint"`
}

type putCenterFareReq struct {
	LoadingPointID string `json:"loading_point_id"`
	VehicleType    string `json:"vehicle_type"`
	Region         string `json:"region"`
	FareType       string `json:"fare_type"`
	BaseFare       int64  `json:"base_fare"`
	ExtraStopFee   int64  `json:"extra_stop_fee"`
	ExtraRegionFee int64  `json:"extra_region_fee"`
}

type outcomeResp struct {
	Outcome rate.Outcome `json:"outcome"`
}

func writeOutcome(c *gin.Context, o rate.Outcome, err error) {
	if err != nil {
		writeDomainError(c, err)
		return
	}
	status := http.StatusCreated
	if o == rate.OutcomeSkipped {
		status = http.StatusOK
	}
	writeJSON(c, status, outcomeResp{Outcome: o})
}

func (h *RateHandler) PutBase(c *gin.Context) {
	var req putBaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.rates.PutBase(c.Request.Context(), rate.BaseRate{
		CenterName: req.CenterName,
		Tonnage:    req.Tonnage,
		Region:     req.Region,
		BaseFare:   req.BaseFare,
	})
	writeOutcome(c, o, err)
}

func (h *RateHandler) PutAddons(c *gin.Context) {
	var req putAddonsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.rates.PutAddons(c.Request.Context(), rate.AddonRate{
		CenterName:  req.CenterName,
		Tonnage:     req.Tonnage,
		PerStop:     req.PerStop,
		PerWaypoint: req.PerWaypoint,
	})
	writeOutcome(c, o, err)
}

func (h *RateHandler) PutCenterFare(c *gin.Context) {
	var req putCenterFareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.rates.PutCenterFare(c.Request.Context(), rate.CenterFare{
		LoadingPointID: types.ID(req.LoadingPointID),
		VehicleType:    req.VehicleType,
		Region:         req.Region,
		FareType:       rate.FareType(req.FareType),
		BaseFare:       req.BaseFare,
		ExtraStopFee:   req.ExtraStopFee,
		ExtraRegionFee: req.ExtraRegionFee,
	})
	writeOutcome(c, o, err)
}
