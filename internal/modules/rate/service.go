// README: Rate resolver; looks up rate rows and reports missing components instead of failing.
package rate

import (
	"context"
	"errors"
	"strings"

	"haulbase/internal/types"
)

var (
	ErrBadRequest = errors.New("bad rate request")
	// ErrInvalidCenterFare marks a legacy row that violates its fare-type shape.
	ErrInvalidCenterFare = errors.New("invalid center fare row")
)

// Source is the persistence surface the resolver reads and writes.
// The found flag distinguishes "no row" from a storage failure; the
// inserted flag is false when the key tuple already existed.
type Source interface {
	GetBaseFare(ctx context.Context, centerName, tonnage, region string) (int64, bool, error)
	GetAddons(ctx context.Context, centerName, tonnage string) (AddonRate, bool, error)
	ListRegionFares(ctx context.Context, loadingPointID types.ID, vehicleType string, regions []string) ([]CenterFare, error)
	GetStopFee(ctx context.Context, loadingPointID types.ID, vehicleType string) (CenterFare, bool, error)

	InsertBase(ctx context.Context, r BaseRate) (bool, error)
	InsertAddons(ctx context.Context, r AddonRate) (bool, error)
	InsertCenterFare(ctx context.Context, r CenterFare) (bool, error)
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// Resolve fetches the simplified-model rate set for a trip. The base fare
// is looked up only for the first region in the caller-supplied order;
// addons are keyed by center + tonnage alone. Absent rows come back as
// zero with a tag in Missing rather than an error.
func (s *Service) Resolve(ctx context.Context, centerName, tonnage string, regions []string) (Resolved, error) {
	centerName = strings.TrimSpace(centerName)
	tonnage = strings.TrimSpace(tonnage)
	if centerName == "" || tonnage == "" || len(regions) == 0 {
		return Resolved{}, ErrBadRequest
	}

	var res Resolved

	baseRegion := regions[0]
	base, found, err := s.src.GetBaseFare(ctx, centerName, tonnage, baseRegion)
	if err != nil {
		return Resolved{}, err
	}
	if found {
		res.BaseFare = base
	} else {
		res.Missing = append(res.Missing, MissingBase)
	}

	addons, found, err := s.src.GetAddons(ctx, centerName, tonnage)
	if err != nil {
		return Resolved{}, err
	}
	if found {
		res.PerStop = addons.PerStop
		res.PerWaypoint = addons.PerWaypoint
	} else {
		res.Missing = append(res.Missing, MissingCall, MissingWaypoint)
	}

	return res, nil
}

// RegionFares returns the legacy BASIC rows matching the distinct region
// set. Regions with no row are simply absent from the result.
func (s *Service) RegionFares(ctx context.Context, loadingPointID types.ID, vehicleType string, regions []string) ([]CenterFare, error) {
	if loadingPointID == "" || vehicleType == "" || len(regions) == 0 {
		return nil, ErrBadRequest
	}
	return s.src.ListRegionFares(ctx, loadingPointID, vehicleType, distinct(regions))
}

// StopFeeRow returns the loading-point-global STOP_FEE row, if any.
func (s *Service) StopFeeRow(ctx context.Context, loadingPointID types.ID, vehicleType string) (CenterFare, bool, error) {
	if loadingPointID == "" || vehicleType == "" {
		return CenterFare{}, false, ErrBadRequest
	}
	return s.src.GetStopFee(ctx, loadingPointID, vehicleType)
}

// PutBase inserts a base-fare row. An existing (center, tonnage, region)
// tuple is reported as OutcomeSkipped, never overwritten.
func (s *Service) PutBase(ctx context.Context, r BaseRate) (Outcome, error) {
	r.CenterName = strings.TrimSpace(r.CenterName)
	r.Tonnage = strings.TrimSpace(r.Tonnage)
	r.Region = strings.TrimSpace(r.Region)
	if r.CenterName == "" || r.Tonnage == "" || r.Region == "" || r.BaseFare < 0 {
		return "", ErrBadRequest
	}
	return outcome(s.src.InsertBase(ctx, r))
}

// PutAddons inserts a per-stop/per-waypoint row keyed by center + tonnage.
func (s *Service) PutAddons(ctx context.Context, r AddonRate) (Outcome, error) {
	r.CenterName = strings.TrimSpace(r.CenterName)
	r.Tonnage = strings.TrimSpace(r.Tonnage)
	if r.CenterName == "" || r.Tonnage == "" || r.PerStop < 0 || r.PerWaypoint < 0 {
		return "", ErrBadRequest
	}
	return outcome(s.src.InsertAddons(ctx, r))
}

// PutCenterFare inserts a legacy row after checking its fare-type shape:
// BASIC needs a region and a base fare, STOP_FEE needs both extra fees
// and must not carry a region.
func (s *Service) PutCenterFare(ctx context.Context, r CenterFare) (Outcome, error) {
	r.Region = strings.TrimSpace(r.Region)
	if r.LoadingPointID == "" || strings.TrimSpace(r.VehicleType) == "" {
		return "", ErrBadRequest
	}
	switch r.FareType {
	case FareTypeBasic:
		if r.Region == "" || r.BaseFare <= 0 {
			return "", ErrInvalidCenterFare
		}
	case FareTypeStopFee:
		if r.Region != "" || r.ExtraStopFee <= 0 || r.ExtraRegionFee <= 0 {
			return "", ErrInvalidCenterFare
		}
	default:
		return "", ErrInvalidCenterFare
	}
	if r.ID == "" {
		r.ID = types.NewID()
	}
	return outcome(s.src.InsertCenterFare(ctx, r))
}

func outcome(inserted bool, err error) (Outcome, error) {
	if err != nil {
		return "", err
	}
	if !inserted {
		return OutcomeSkipped, nil
	}
	return OutcomeCreated, nil
}

// distinct preserves first-seen order while dropping repeats.
func distinct(regions []string) []string {
	seen := make(map[string]struct{}, len(regions))
	out := make([]string, 0, len(regions))
	for _, r := range regions {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
