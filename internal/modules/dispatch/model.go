// README: Trip and dispatch aggregates; dispatches snapshot driver identity.
package dispatch

import (
	"time"

	"haulbase/internal/types"
)

// Trip is one transport job. Fare fields are written back once a quote
// has been computed; TotalFare, when set, is the authoritative billing
// amount and wins over the component sum.
type Trip struct {
	ID             types.ID
	CenterName     string
	LoadingPointID types.ID
	VehicleType    string
	Tonnage        string
	Regions        []string
	StopCount      int

	BaseFare       int64
	ExtraStopFee   int64
	ExtraRegionFee int64
	TotalFare      *int64

	AdjustmentAmount int64
	AdjustmentReason string

	DepartAt  time.Time
	CreatedAt time.Time
}

// Dispatch is one driver assignment against a trip. Driver name, phone,
// and vehicle are copied by value at assignment time so a later edit to
// the driver record never rewrites settled history.
type Dispatch struct {
	ID     types.ID
	TripID types.ID

	DriverID    types.ID
	DriverName  string
	DriverPhone string
	VehicleNo   string

	DriverFee int64
	Deduction int64
	Addition  int64

	CreatedAt time.Time
}
