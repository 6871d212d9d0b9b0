// README: Pure fare calculators for the simplified and charter models.
package fare

import (
	"errors"

	"haulbase/internal/modules/rate"
)

var (
	ErrStopCountMismatch = errors.New("stop count does not match region count")
	ErrDuplicateRegions  = errors.New("regions contain duplicates")
	ErrNegotiatedFare    = errors.New("negotiated fare missing or negative")
	ErrNoRegions         = errors.New("at least one region is required")
	ErrUnknownModel      = errors.New("unknown rate model")
)

// Simplified computes the rate-base + addons breakdown:
//
//	X = max(stopsTotal-1, 0)
//	Y = max(distinctRegions-1, 0)
//	total = baseFare + X*perStop + Y*perWaypoint
//
// The region list may contain repeats; distinctness is order-insensitive.
// The resolver has already pinned the base fare to regions[0].
func Simplified(r rate.Resolved, regions []string, stopsTotal int) Breakdown {
	x := int64(stopsTotal - 1)
	if x < 0 {
		x = 0
	}
	y := int64(distinctCount(regions) - 1)
	if y < 0 {
		y = 0
	}

	b := Breakdown{
		BaseFare:    r.BaseFare,
		CallFee:     x * r.PerStop,
		WaypointFee: y * r.PerWaypoint,
		Missing:     r.Missing,
	}
	b.Total = b.BaseFare + b.CallFee + b.WaypointFee
	return b
}

// ValidateCharter runs the input checks that must happen before any rate
// lookup: stop/region count agreement, no duplicate regions, and a
// present, non-negative fare when the quote is negotiated.
func ValidateCharter(regions []string, stopCount int, isNegotiated bool, negotiatedFare *int64) error {
	if len(regions) == 0 {
		return ErrNoRegions
	}
	if stopCount != len(regions) {
		return ErrStopCountMismatch
	}
	if distinctCount(regions) != len(regions) {
		return ErrDuplicateRegions
	}
	if isNegotiated && (negotiatedFare == nil || *negotiatedFare < 0) {
		return ErrNegotiatedFare
	}
	return nil
}

// Charter computes the legacy/negotiated breakdown. A negotiated fare
// takes absolute precedence: the supplied amount becomes the total and no
// rate data is consulted, so a negotiated quote is always satisfiable.
// Otherwise the most expensive matched region drives the base charge,
// the region-move surcharge applies from the second distinct region, and
// the call-extra surcharge from the second stop.
func Charter(in CharterInput) (Breakdown, error) {
	if err := ValidateCharter(in.Regions, in.StopCount, in.IsNegotiated, in.NegotiatedFare); err != nil {
		return Breakdown{}, err
	}

	if in.IsNegotiated {
		return Breakdown{Total: *in.NegotiatedFare, Negotiated: true}, nil
	}

	var b Breakdown
	for _, row := range in.RegionRows {
		if row.BaseFare > b.BaseFare {
			b.BaseFare = row.BaseFare
		}
	}
	if len(in.RegionRows) == 0 {
		b.Missing = append(b.Missing, rate.MissingBase)
	}

	if distinctCount(in.Regions) >= 2 {
		b.RegionFare = in.Extras.RegionMove
	}
	if in.StopCount >= 2 {
		b.StopFare = in.Extras.StopExtra
	}
	b.ExtraFare = in.ExtraFare
	b.Total = b.BaseFare + b.RegionFare + b.StopFare + b.ExtraFare
	return b, nil
}

func distinctCount(regions []string) int {
	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		seen[r] = struct{}{}
	}
	return len(seen)
}
