// README: Fare breakdown shapes shared by both rate models.
package fare

import "haulbase/internal/modules/rate"

// Extras are the flat charter surcharges. They are supplied by the caller
// (or sourced from the legacy STOP_FEE row), not computed per unit.
type Extras struct {
	RegionMove int64
	StopExtra  int64
}

// Breakdown is the full fare decomposition. The simplified model fills
// BaseFare/CallFee/WaypointFee; the charter model fills
// BaseFare/RegionFare/StopFare/ExtraFare. Total is always the exact
// integer sum of the populated components, or the negotiated amount.
type Breakdown struct {
	BaseFare    int64          `json:"base_fare"`
	CallFee     int64          `json:"call_fee"`
	WaypointFee int64          `json:"waypoint_fee"`
	RegionFare  int64          `json:"region_fare"`
	StopFare    int64          `json:"stop_fare"`
	ExtraFare   int64          `json:"extra_fare"`
	Total       int64          `json:"total"`
	Negotiated  bool           `json:"negotiated"`
	Missing     []rate.Missing `json:"missing,omitempty"`
}

// CharterInput is everything the charter calculator needs, rates already
// resolved. RegionRows holds the BASIC rows found for the distinct region
// set; absent regions simply have no row.
type CharterInput struct {
	Regions        []string
	StopCount      int
	RegionRows     []rate.CenterFare
	Extras         Extras
	ExtraFare      int64
	IsNegotiated   bool
	NegotiatedFare *int64
}
