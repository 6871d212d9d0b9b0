// README: Rate table rows, rate-model selection, and missing-component tags.
package rate

import "haulbase/internal/types"

// Model selects which of the two coexisting rate models a caller wants.
// Simplified is the rate_base/rate_addons pair keyed by center name and
// tonnage; CenterFare is the legacy per-loading-point table.
type Model string

const (
	ModelSimplified Model = "simplified"
	ModelCenterFare Model = "center_fare"
)

// FareType disambiguates legacy center-fare rows. BASIC rows are keyed by
// region and carry the base fare; STOP_FEE rows are global to the
// loading point + vehicle type and carry only the extra fees.
type FareType string

const (
	FareTypeBasic   FareType = "BASIC"
	FareTypeStopFee FareType = "STOP_FEE"
)

// Missing tags a rate component that had no row. A missing rate is data on
// a successful result, never an error; callers decide whether it blocks.
type Missing string

const (
	MissingBase     Missing = "BASE"
	MissingCall     Missing = "CALL"
	MissingWaypoint Missing = "WAYPOINT"
)

// BaseRate maps (centerName, tonnage, region) to a base fare.
type BaseRate struct {
	CenterName string
	Tonnage    string
	Region     string
	BaseFare   int64
}

// AddonRate maps (centerName, tonnage) to per-stop and per-waypoint
// surcharges. Addons do not vary by region.
type AddonRate struct {
	CenterName  string
	Tonnage     string
	PerStop     int64
	PerWaypoint int64
}

// CenterFare is one row of the legacy model.
type CenterFare struct {
	ID             types.ID
	LoadingPointID types.ID
	VehicleType    string
	Region         string
	FareType       FareType
	BaseFare       int64
	ExtraStopFee   int64
	ExtraRegionFee int64
}

// Resolved is the simplified-model rate set for one lookup. Absent
// components are zero and tagged in Missing.
type Resolved struct {
	BaseFare    int64
	PerStop     int64
	PerWaypoint int64
	Missing     []Missing
}

// Outcome reports what an upsert did. Duplicate keys are a soft
// OutcomeSkipped so bulk imports never fail half way through.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
)
