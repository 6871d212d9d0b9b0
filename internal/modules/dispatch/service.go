// README: Dispatch service; trip boundary validation and driver assignment.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"haulbase/internal/modules/settlement"
	"haulbase/internal/types"
)

var (
	ErrNotFound          = errors.New("trip not found")
	ErrBadRequest        = errors.New("bad dispatch request")
	ErrStopCountMismatch = errors.New("stop count does not match region count")
	ErrAdjustmentReason  = errors.New("manual adjustment requires a reason")
)

// Store is the persistence surface for trips and dispatches.
type Store interface {
	InsertTrip(ctx context.Context, t *Trip) error
	GetTrip(ctx context.Context, id types.ID) (*Trip, error)
	SetTripFare(ctx context.Context, id types.ID, baseFare, extraStopFee, extraRegionFee int64, totalFare *int64) error
	InsertDispatch(ctx context.Context, d *Dispatch) error
	ListByDriverMonth(ctx context.Context, driverID types.ID, from, to time.Time) ([]Dispatch, error)
	SumByDriverMonth(ctx context.Context, driverID types.ID, from, to time.Time) (int, int64, int64, int64, error)
}

type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

type CreateTripCommand struct {
	CenterName       string
	LoadingPointID   types.ID
	VehicleType      string
	Tonnage          string
	Regions          []string
	StopCount        int
	AdjustmentAmount int64
	AdjustmentReason string
	DepartAt         time.Time
}

type AssignCommand struct {
	TripID      types.ID
	DriverID    types.ID
	DriverName  string
	DriverPhone string
	VehicleNo   string
	DriverFee   int64
	Deduction   int64
	Addition    int64
}

// CreateTrip enforces the boundary invariants the calculators trust:
// the stop count must equal the region count, and a non-zero manual
// adjustment must carry a reason.
func (s *Service) CreateTrip(ctx context.Context, cmd CreateTripCommand) (types.ID, error) {
	if strings.TrimSpace(cmd.CenterName) == "" || len(cmd.Regions) == 0 {
		return "", ErrBadRequest
	}
	if cmd.StopCount != len(cmd.Regions) {
		return "", ErrStopCountMismatch
	}
	if cmd.AdjustmentAmount != 0 && strings.TrimSpace(cmd.AdjustmentReason) == "" {
		return "", ErrAdjustmentReason
	}

	departAt := cmd.DepartAt
	if departAt.IsZero() {
		departAt = s.clock()
	}
	t := &Trip{
		ID:               types.NewID(),
		CenterName:       cmd.CenterName,
		LoadingPointID:   cmd.LoadingPointID,
		VehicleType:      cmd.VehicleType,
		Tonnage:          cmd.Tonnage,
		Regions:          cmd.Regions,
		StopCount:        cmd.StopCount,
		AdjustmentAmount: cmd.AdjustmentAmount,
		AdjustmentReason: cmd.AdjustmentReason,
		DepartAt:         departAt,
		CreatedAt:        s.clock(),
	}
	if err := s.store.InsertTrip(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// Assign books a driver onto a trip, snapshotting identity fields so the
// dispatch row stays historically accurate.
func (s *Service) Assign(ctx context.Context, cmd AssignCommand) (types.ID, error) {
	if cmd.TripID == "" || cmd.DriverID == "" || strings.TrimSpace(cmd.DriverName) == "" {
		return "", ErrBadRequest
	}
	if cmd.DriverFee < 0 || cmd.Deduction < 0 || cmd.Addition < 0 {
		return "", ErrBadRequest
	}
	if _, err := s.store.GetTrip(ctx, cmd.TripID); err != nil {
		return "", err
	}

	d := &Dispatch{
		ID:          types.NewID(),
		TripID:      cmd.TripID,
		DriverID:    cmd.DriverID,
		DriverName:  cmd.DriverName,
		DriverPhone: cmd.DriverPhone,
		VehicleNo:   cmd.VehicleNo,
		DriverFee:   cmd.DriverFee,
		Deduction:   cmd.Deduction,
		Addition:    cmd.Addition,
		CreatedAt:   s.clock(),
	}
	if err := s.store.InsertDispatch(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

// SetTripFare persists a computed breakdown onto the trip record.
func (s *Service) SetTripFare(ctx context.Context, id types.ID, baseFare, extraStopFee, extraRegionFee int64, totalFare *int64) error {
	if id == "" {
		return ErrBadRequest
	}
	return s.store.SetTripFare(ctx, id, baseFare, extraStopFee, extraRegionFee, totalFare)
}

func (s *Service) GetTrip(ctx context.Context, id types.ID) (*Trip, error) {
	return s.store.GetTrip(ctx, id)
}

// ListMonth returns a driver's dispatches for one settlement month, in
// departure order. This is the detail view behind a monthly settlement.
func (s *Service) ListMonth(ctx context.Context, driverID types.ID, ym types.YearMonth) ([]Dispatch, error) {
	if driverID == "" || ym.IsZero() {
		return nil, ErrBadRequest
	}
	return s.store.ListByDriverMonth(ctx, driverID, ym.Start(), ym.Next())
}

// MonthlySummary aggregates a driver's dispatch fees over [from, to).
// It satisfies the settlement engine's DispatchSource.
func (s *Service) MonthlySummary(ctx context.Context, driverID types.ID, from, to time.Time) (settlement.MonthlySummary, error) {
	trips, fees, deductions, additions, err := s.store.SumByDriverMonth(ctx, driverID, from, to)
	if err != nil {
		return settlement.MonthlySummary{}, err
	}
	return settlement.MonthlySummary{
		Trips:      trips,
		BaseFare:   fees,
		Deductions: deductions,
		Additions:  additions,
	}, nil
}

var _ settlement.DispatchSource = (*Service)(nil)
