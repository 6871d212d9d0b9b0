// README: Quote handlers for charter quoting and simplified rate calculation.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"haulbase/internal/modules/fare"
	"haulbase/internal/modules/rate"
	"haulbase/internal/types"
)

type QuoteHandler struct {
	fares *fare.Service
}

func NewQuoteHandler(fares *fare.Service) *QuoteHandler {
	return &QuoteHandler{fares: fares}
}

type quoteReq struct {
	LoadingPointID string   `json:"loading_point_id"`
	VehicleType    string   `json:"vehicle_type"`
	Regions        []string `json:"regions"`
	StopCount      int      `json:"stop_count"`
	RegionMove     int64    `json:"region_move"`
	StopExtra      int64    `json:"stop_extra"`
	ExtraFare      int64    `json:"extra_fare"`
	IsNegotiated   bool     `json:"is_negotiated"`
	NegotiatedFare *int64   `json:"negotiated_fare"`
}

type quoteMeta struct {
	MissingRates []rate.Missing `json:"missing_rates"`
}

type quoteResp struct {
	fare.Breakdown
	Metadata quoteMeta `json:"metadata"`
}

// Quote returns 200 with a complete breakdown, or 422 carrying the
// partial breakdown plus missing-rate tags: still computed, but the
// caller decides whether unresolved rates block persistence.
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	b, err := h.fares.Price(c.Request.Context(), fare.PriceCommand{
		Model:          rate.ModelCenterFare,
		LoadingPointID: types.ID(req.LoadingPointID),
		VehicleType:    req.VehicleType,
		Regions:        req.Regions,
		StopCount:      req.StopCount,
		Extras:         fare.Extras{RegionMove: req.RegionMove, StopExtra: req.StopExtra},
		ExtraFare:      req.ExtraFare,
		IsNegotiated:   req.IsNegotiated,
		NegotiatedFare: req.NegotiatedFare,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	resp := quoteResp{Breakdown: b, Metadata: quoteMeta{MissingRates: b.Missing}}
	if len(b.Missing) > 0 {
		writeJSON(c, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

type calcMeta struct {
	Missing []rate.Missing `json:"missing"`
}

type calcResp struct {
	fare.Breakdown
	Meta calcMeta `json:"meta"`
}

// Calculate prices a trip with the simplified model from query params:
// center, tonnage, regions (comma separated), stops.
func (h *QuoteHandler) Calculate(c *gin.Context) {
	center := c.Query("center")
	tonnage := c.Query("tonnage")
	regionsParam := c.Query("regions")
	if center == "" || tonnage == "" || regionsParam == "" {
		writeError(c, http.StatusBadRequest, "center, tonnage and regions are required")
		return
	}
	regions := strings.Split(regionsParam, ",")

	stops, err := strconv.Atoi(c.DefaultQuery("stops", strconv.Itoa(len(regions))))
	if err != nil || stops < 0 {
		writeError(c, http.StatusBadRequest, "invalid stops")
		return
	}

	b, err := h.fares.Price(c.Request.Context(), fare.PriceCommand{
		Model:      rate.ModelSimplified,
		CenterName: center,
		Tonnage:    tonnage,
		Regions:    regions,
		StopCount:  stops,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, calcResp{Breakdown: b, Meta: calcMeta{Missing: b.Missing}})
}
