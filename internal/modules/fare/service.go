// README: Quote service; resolves rates then delegates to the pure calculators.
package fare

import (
	"context"

	"haulbase/internal/modules/rate"
	"haulbase/internal/types"
)

// Resolver is the slice of the rate service the quote flow needs.
type Resolver interface {
	Resolve(ctx context.Context, centerName, tonnage string, regions []string) (rate.Resolved, error)
	RegionFares(ctx context.Context, loadingPointID types.ID, vehicleType string, regions []string) ([]rate.CenterFare, error)
	StopFeeRow(ctx context.Context, loadingPointID types.ID, vehicleType string) (rate.CenterFare, bool, error)
}

type Service struct {
	rates Resolver
}

func NewService(rates Resolver) *Service {
	return &Service{rates: rates}
}

type QuoteCommand struct {
	LoadingPointID types.ID
	VehicleType    string
	Regions        []string
	StopCount      int
	Extras         Extras
	ExtraFare      int64
	IsNegotiated   bool
	NegotiatedFare *int64
}

type CalculateCommand struct {
	CenterName string
	Tonnage    string
	Regions    []string
	StopsTotal int
}

// Quote prices an ad-hoc charter with the legacy center-fare model.
// Validation happens before any lookup, and a negotiated quote never
// touches the rate tables at all.
func (s *Service) Quote(ctx context.Context, cmd QuoteCommand) (Breakdown, error) {
	if err := ValidateCharter(cmd.Regions, cmd.StopCount, cmd.IsNegotiated, cmd.NegotiatedFare); err != nil {
		return Breakdown{}, err
	}
	if cmd.IsNegotiated {
		return Breakdown{Total: *cmd.NegotiatedFare, Negotiated: true}, nil
	}

	rows, err := s.rates.RegionFares(ctx, cmd.LoadingPointID, cmd.VehicleType, cmd.Regions)
	if err != nil {
		return Breakdown{}, err
	}

	extras := cmd.Extras
	if extras.RegionMove == 0 && extras.StopExtra == 0 {
		// No caller-supplied surcharges; fall back to the STOP_FEE row.
		if row, found, err := s.rates.StopFeeRow(ctx, cmd.LoadingPointID, cmd.VehicleType); err != nil {
			return Breakdown{}, err
		} else if found {
			extras = Extras{RegionMove: row.ExtraRegionFee, StopExtra: row.ExtraStopFee}
		}
	}

	return Charter(CharterInput{
		Regions:        cmd.Regions,
		StopCount:      cmd.StopCount,
		RegionRows:     rows,
		Extras:         extras,
		ExtraFare:      cmd.ExtraFare,
		IsNegotiated:   cmd.IsNegotiated,
		NegotiatedFare: cmd.NegotiatedFare,
	})
}

// Calculate prices a trip with the simplified rate-base + addons model.
func (s *Service) Calculate(ctx context.Context, cmd CalculateCommand) (Breakdown, error) {
	resolved, err := s.rates.Resolve(ctx, cmd.CenterName, cmd.Tonnage, cmd.Regions)
	if err != nil {
		return Breakdown{}, err
	}
	return Simplified(resolved, cmd.Regions, cmd.StopsTotal), nil
}

// PriceCommand carries the inputs for either rate model; Model selects
// which one prices the trip. The two models key their rate lookups
// differently (center+tonnage vs loading point+vehicle type), so both key
// pairs are present and only the selected model's pair is read.
type PriceCommand struct {
	Model rate.Model

	CenterName string
	Tonnage    string

	LoadingPointID types.ID
	VehicleType    string

	Regions        []string
	StopCount      int
	Extras         Extras
	ExtraFare      int64
	IsNegotiated   bool
	NegotiatedFare *int64
}

// Price dispatches on the explicitly selected rate model. Callers always
// name the model; it is never inferred from which fields are populated.
func (s *Service) Price(ctx context.Context, cmd PriceCommand) (Breakdown, error) {
	switch cmd.Model {
	case rate.ModelSimplified:
		return s.Calculate(ctx, CalculateCommand{
			CenterName: cmd.CenterName,
			Tonnage:    cmd.Tonnage,
			Regions:    cmd.Regions,
			StopsTotal: cmd.StopCount,
		})
	case rate.ModelCenterFare:
		return s.Quote(ctx, QuoteCommand{
			LoadingPointID: cmd.LoadingPointID,
			VehicleType:    cmd.VehicleType,
			Regions:        cmd.Regions,
			StopCount:      cmd.StopCount,
			Extras:         cmd.Extras,
			ExtraFare:      cmd.ExtraFare,
			IsNegotiated:   cmd.IsNegotiated,
			NegotiatedFare: cmd.NegotiatedFare,
		})
	default:
		return Breakdown{}, ErrUnknownModel
	}
}
