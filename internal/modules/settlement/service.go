// README: Settlement engine; monthly aggregation and the DRAFT → CONFIRMED → PAID lifecycle.
package settlement

import (
	"context"
	"errors"
	"time"

	"haulbase/internal/types"
)

var (
	ErrNotFound      = errors.New("settlement not found")
	ErrInvalidState  = errors.New("invalid settlement state transition")
	ErrConflict      = errors.New("settlement state conflict")
	ErrAlreadyExists = errors.New("settlement already exists")
	ErrFutureMonth   = errors.New("settlement month is in the future")
	ErrBadRequest    = errors.New("bad settlement request")
)

// Store is the persistence surface for settlements. Insert must map the
// store's unique-constraint violation on (driver_id, year_month) to
// ErrAlreadyExists. The guarded mutations take the expected current
// status and report false when no row matched, so check-then-act races
// lose cleanly instead of overwriting.
type Store interface {
	Insert(ctx context.Context, s *Settlement) error
	Get(ctx context.Context, id types.ID) (*Settlement, error)
	GetByDriverMonth(ctx context.Context, driverID types.ID, ym types.YearMonth) (*Settlement, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, confirmedBy *types.ID, at time.Time) (bool, error)
	UpdateGuarded(ctx context.Context, id types.ID, expect Status, patch UpdatePatch) (bool, error)
	DeleteDraft(ctx context.Context, id types.ID) (bool, error)
}

// DispatchSource supplies the month's dispatch aggregates for a driver.
type DispatchSource interface {
	MonthlySummary(ctx context.Context, driverID types.ID, from, to time.Time) (MonthlySummary, error)
}

type MonthlySummary struct {
	Trips      int
	BaseFare   int64
	Deductions int64
	Additions  int64
}

func (m MonthlySummary) FinalAmount() int64 {
	return m.BaseFare - m.Deductions + m.Additions
}

type Service struct {
	store      Store
	dispatches DispatchSource
	clock      func() time.Time
}

func NewService(store Store, dispatches DispatchSource) *Service {
	return &Service{store: store, dispatches: dispatches, clock: time.Now}
}

// Preview computes the settlement a driver+month would produce without
// persisting anything. Months that have not started yet are rejected.
func (s *Service) Preview(ctx context.Context, driverID types.ID, ym types.YearMonth) (*Settlement, error) {
	if driverID == "" || ym.IsZero() {
		return nil, ErrBadRequest
	}
	if ym.After(s.clock()) {
		return nil, ErrFutureMonth
	}

	sum, err := s.dispatches.MonthlySummary(ctx, driverID, ym.Start(), ym.Next())
	if err != nil {
		return nil, err
	}
	return &Settlement{
		DriverID:        driverID,
		YearMonth:       ym,
		TotalTrips:      sum.Trips,
		TotalBaseFare:   sum.BaseFare,
		TotalDeductions: sum.Deductions,
		TotalAdditions:  sum.Additions,
		FinalAmount:     sum.FinalAmount(),
		Status:          StatusDraft,
	}, nil
}

// Finalize persists the preview as a DRAFT settlement. It is idempotent
// on (driverID, yearMonth): a second call returns the existing row
// untouched rather than creating a duplicate or doubling totals. Two
// concurrent calls race on the unique constraint; the loser re-reads the
// winner's row.
func (s *Service) Finalize(ctx context.Context, driverID types.ID, ym types.YearMonth) (*Settlement, error) {
	if existing, err := s.store.GetByDriverMonth(ctx, driverID, ym); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	draft, err := s.Preview(ctx, driverID, ym)
	if err != nil {
		return nil, err
	}
	draft.ID = types.NewID()
	draft.CreatedAt = s.clock()

	if err := s.store.Insert(ctx, draft); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return s.store.GetByDriverMonth(ctx, driverID, ym)
		}
		return nil, err
	}
	return draft, nil
}

// Confirm locks a draft's totals: DRAFT → CONFIRMED, recording who
// confirmed and when. The store-level guard makes a lost confirm
// surface as ErrConflict instead of silently overwriting.
func (s *Service) Confirm(ctx context.Context, id, userID types.ID) error {
	if userID == "" {
		return ErrBadRequest
	}
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(st.Status, StatusConfirmed) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, id, st.Status, StatusConfirmed, &userID, s.clock())
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// MarkPaid records payment: CONFIRMED → PAID.
func (s *Service) MarkPaid(ctx context.Context, id types.ID) error {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(st.Status, StatusPaid) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, id, st.Status, StatusPaid, nil, s.clock())
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// Update patches a settlement. Financial fields are writable only while
// DRAFT; a remarks-only patch is also accepted while CONFIRMED. PAID
// settlements are immutable.
func (s *Service) Update(ctx context.Context, id types.ID, patch UpdatePatch) error {
	if patch.IsEmpty() {
		return ErrBadRequest
	}
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	switch st.Status {
	case StatusDraft:
		// anything goes
	case StatusConfirmed:
		if patch.HasFinancial() {
			return ErrInvalidState
		}
	default:
		return ErrInvalidState
	}

	ok, err := s.store.UpdateGuarded(ctx, id, st.Status, patch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// Delete removes a settlement; only drafts may go. The guarded delete
// leaves confirmed and paid rows untouched.
func (s *Service) Delete(ctx context.Context, id types.ID) error {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(st.Status) {
		return ErrInvalidState
	}
	ok, err := s.store.DeleteDraft(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Settlement, error) {
	return s.store.Get(ctx, id)
}
