// README: Settlement engine tests (lifecycle, idempotent finalize, races).
package settlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"haulbase/internal/types"
)

// memStore mirrors the guarded-update semantics of the SQL store: every
// mutation checks the expected prior state under one lock.
type memStore struct {
	mu   sync.Mutex
	rows map[types.ID]*Settlement
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[types.ID]*Settlement)}
}

func (m *memStore) Insert(ctx context.Context, s *Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.DriverID == s.DriverID && row.YearMonth == s.YearMonth {
			return ErrAlreadyExists
		}
	}
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memStore) Get(ctx context.Context, id types.ID) (*Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memStore) GetByDriverMonth(ctx context.Context, driverID types.ID, ym types.YearMonth) (*Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.DriverID == driverID && row.YearMonth == ym {
			cp := *row
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, confirmedBy *types.ID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	switch to {
	case StatusConfirmed:
		row.ConfirmedBy = confirmedBy
		t := at
		row.ConfirmedAt = &t
	case StatusPaid:
		t := at
		row.PaidAt = &t
	}
	return true, nil
}

func (m *memStore) UpdateGuarded(ctx context.Context, id types.ID, expect Status, patch UpdatePatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Status != expect {
		return false, nil
	}
	if patch.TotalDeductions != nil {
		row.TotalDeductions = *patch.TotalDeductions
	}
	if patch.TotalAdditions != nil {
		row.TotalAdditions = *patch.TotalAdditions
	}
	row.FinalAmount = row.TotalBaseFare - row.TotalDeductions + row.TotalAdditions
	if patch.Remarks != nil {
		row.Remarks = *patch.Remarks
	}
	return true, nil
}

func (m *memStore) DeleteDraft(ctx context.Context, id types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Status != StatusDraft {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

type stubDispatches struct {
	summary MonthlySummary
}

func (s *stubDispatches) MonthlySummary(ctx context.Context, driverID types.ID, from, to time.Time) (MonthlySummary, error) {
	return s.summary, nil
}

var testNow = time.Date(2024, time.April, 15, 10, 0, 0, 0, time.UTC)

func newTestService(sum MonthlySummary) (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store, &stubDispatches{summary: sum})
	svc.clock = func() time.Time { return testNow }
	return svc, store
}

func mustYM(t *testing.T, s string) types.YearMonth {
	t.Helper()
	ym, err := types.ParseYearMonth(s)
	if err != nil {
		t.Fatalf("parse year month: %v", err)
	}
	return ym
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusConfirmed, true},
		{StatusConfirmed, StatusPaid, true},
		// no skips
		{StatusDraft, StatusPaid, false},
		// no reversals
		{StatusConfirmed, StatusDraft, false},
		{StatusPaid, StatusConfirmed, false},
		{StatusPaid, StatusDraft, false},
		// no self-loops
		{StatusDraft, StatusDraft, false},
		{StatusPaid, StatusPaid, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestPreviewSums(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{Trips: 12, BaseFare: 2400000, Deductions: 100000, Additions: 50000})

	s, err := svc.Preview(context.Background(), "d1", mustYM(t, "2024-03"))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if s.TotalTrips != 12 || s.TotalBaseFare != 2400000 {
		t.Errorf("totals = %+v", s)
	}
	if s.FinalAmount != 2400000-100000+50000 {
		t.Errorf("final amount = %d, want 2350000", s.FinalAmount)
	}
	if s.Status != StatusDraft {
		t.Errorf("status = %s, want DRAFT", s.Status)
	}
	if s.ID != "" {
		t.Error("preview must not assign an ID")
	}
}

func TestPreviewRejectsFutureMonth(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{})

	if _, err := svc.Preview(context.Background(), "d1", mustYM(t, "2024-05")); err != ErrFutureMonth {
		t.Fatalf("err = %v, want ErrFutureMonth", err)
	}
	// The current month has started, so it previews fine.
	if _, err := svc.Preview(context.Background(), "d1", mustYM(t, "2024-04")); err != nil {
		t.Fatalf("current month: %v", err)
	}
}

func TestFinalizeCreatesDraft(t *testing.T) {
	svc, store := newTestService(MonthlySummary{Trips: 3, BaseFare: 600000})
	ctx := context.Background()

	s, err := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if s.ID == "" {
		t.Fatal("expected an ID")
	}
	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDraft || got.FinalAmount != 600000 {
		t.Errorf("persisted = %+v", got)
	}
}

// Finalize is idempotent on (driver, month): the second call returns the
// existing row, with no duplicate and no doubled totals.
func TestFinalizeIdempotent(t *testing.T) {
	svc, store := newTestService(MonthlySummary{Trips: 3, BaseFare: 600000})
	ctx := context.Background()
	ym := mustYM(t, "2024-03")

	first, err := svc.Finalize(ctx, "d1", ym)
	if err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	second, err := svc.Finalize(ctx, "d1", ym)
	if err != nil {
		t.Fatalf("second finalize: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second finalize created a new row: %s vs %s", first.ID, second.ID)
	}
	if second.TotalBaseFare != 600000 {
		t.Errorf("totals doubled: %d", second.TotalBaseFare)
	}
	if len(store.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(store.rows))
	}
}

func TestFinalizeConcurrent(t *testing.T) {
	svc, store := newTestService(MonthlySummary{Trips: 3, BaseFare: 600000})
	ctx := context.Background()
	ym := mustYM(t, "2024-03")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Finalize(ctx, "d1", ym)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent finalize: %v", err)
		}
	}
	if len(store.rows) != 1 {
		t.Fatalf("rows = %d, want exactly 1", len(store.rows))
	}
}

func TestConfirmHappyPath(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{Trips: 3, BaseFare: 600000})
	ctx := context.Background()

	s, err := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := svc.Confirm(ctx, s.ID, "admin1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	got, _ := svc.Get(ctx, s.ID)
	if got.Status != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", got.Status)
	}
	if got.ConfirmedBy == nil || *got.ConfirmedBy != "admin1" {
		t.Errorf("confirmed_by = %v, want admin1", got.ConfirmedBy)
	}
	if got.ConfirmedAt == nil || !got.ConfirmedAt.Equal(testNow) {
		t.Errorf("confirmed_at = %v, want %v", got.ConfirmedAt, testNow)
	}
}

func TestConfirmOnlyOnce(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{})
	ctx := context.Background()

	s, _ := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
	if err := svc.Confirm(ctx, s.ID, "admin1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := svc.Confirm(ctx, s.ID, "admin2"); err != ErrInvalidState {
		t.Fatalf("second confirm: err = %v, want ErrInvalidState", err)
	}

	got, _ := svc.Get(ctx, s.ID)
	if *got.ConfirmedBy != "admin1" {
		t.Errorf("confirmed_by overwritten: %s", *got.ConfirmedBy)
	}
}

func TestConfirmOnPaidFails(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{})
	ctx := context.Background()

	s, _ := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
	_ = svc.Confirm(ctx, s.ID, "admin1")
	if err := svc.MarkPaid(ctx, s.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if err := svc.Confirm(ctx, s.ID, "admin1"); err != ErrInvalidState {
		t.Fatalf("confirm on paid: err = %v, want ErrInvalidState", err)
	}
}

func TestMarkPaidRequiresConfirmed(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{})
	ctx := context.Background()

	s, _ := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
	if err := svc.MarkPaid(ctx, s.ID); err != ErrInvalidState {
		t.Fatalf("paid from draft: err = %v, want ErrInvalidState", err)
	}

	_ = svc.Confirm(ctx, s.ID, "admin1")
	if err := svc.MarkPaid(ctx, s.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	got, _ := svc.Get(ctx, s.ID)
	if got.Status != StatusPaid || got.PaidAt == nil {
		t.Errorf("paid settlement = %+v", got)
	}
}

func TestDeleteOnlyDraft(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{Trips: 1, BaseFare: 100000})
	ctx := context.Background()

	s, _ := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
	_ = svc.Confirm(ctx, s.ID, "admin1")

	if err := svc.Delete(ctx, s.ID); err != ErrInvalidState {
		t.Fatalf("delete confirmed: err = %v, want ErrInvalidState", err)
	}
	// Row is untouched.
	got, err := svc.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("row vanished after failed delete: %v", err)
	}
	if got.Status != StatusConfirmed || got.FinalAmount != 100000 {
		t.Errorf("row changed after failed delete: %+v", got)
	}

	// Drafts delete fine.
	d, _ := svc.Finalize(ctx, "d2", mustYM(t, "2024-03"))
	if err := svc.Delete(ctx, d.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := svc.Get(ctx, d.ID); err != ErrNotFound {
		t.Fatalf("draft still present: %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{})
	if err := svc.Delete(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRules(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{Trips: 2, BaseFare: 500000})
	ctx := context.Background()

	s, _ := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
	ded := int64(50000)
	remarks := "toll refund pending"

	// DRAFT: financial fields are writable, final amount follows.
	if err := svc.Update(ctx, s.ID, UpdatePatch{TotalDeductions: &ded}); err != nil {
		t.Fatalf("draft update: %v", err)
	}
	got, _ := svc.Get(ctx, s.ID)
	if got.TotalDeductions != 50000 || got.FinalAmount != 450000 {
		t.Errorf("after draft update: %+v", got)
	}

	// CONFIRMED: remarks only.
	_ = svc.Confirm(ctx, s.ID, "admin1")
	if err := svc.Update(ctx, s.ID, UpdatePatch{TotalDeductions: &ded}); err != ErrInvalidState {
		t.Fatalf("financial update on confirmed: err = %v, want ErrInvalidState", err)
	}
	if err := svc.Update(ctx, s.ID, UpdatePatch{Remarks: &remarks}); err != nil {
		t.Fatalf("remarks update on confirmed: %v", err)
	}

	// PAID: immutable.
	_ = svc.MarkPaid(ctx, s.ID)
	if err := svc.Update(ctx, s.ID, UpdatePatch{Remarks: &remarks}); err != ErrInvalidState {
		t.Fatalf("update on paid: err = %v, want ErrInvalidState", err)
	}

	if err := svc.Update(ctx, s.ID, UpdatePatch{}); err != ErrBadRequest {
		t.Fatalf("empty patch: err = %v, want ErrBadRequest", err)
	}
}

// Concurrent confirm and delete must not both win.
func TestConcurrentConfirmVsDelete(t *testing.T) {
	for i := 0; i < 20; i++ {
		svc, _ := newTestService(MonthlySummary{Trips: 1, BaseFare: 100000})
		ctx := context.Background()
		s, err := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}

		var wg sync.WaitGroup
		results := make(chan error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			results <- svc.Confirm(ctx, s.ID, "admin1")
		}()
		go func() {
			defer wg.Done()
			results <- svc.Delete(ctx, s.ID)
		}()
		wg.Wait()
		close(results)

		success := 0
		for err := range results {
			if err == nil {
				success++
				continue
			}
			if err != ErrConflict && err != ErrInvalidState && err != ErrNotFound {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if success > 1 {
			// Both winning would mean a confirmed settlement was deleted.
			t.Fatalf("confirm and delete both succeeded")
		}
	}
}

func TestConcurrentConfirmSameSettlement(t *testing.T) {
	svc, _ := newTestService(MonthlySummary{Trips: 1, BaseFare: 100000})
	ctx := context.Background()
	s, err := svc.Finalize(ctx, "d1", mustYM(t, "2024-03"))
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	const attempts = 6
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Confirm(ctx, s.ID, "admin1")
		}()
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if err != ErrConflict && err != ErrInvalidState {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 successful confirm, got %d", success)
	}
}
