// README: Settlement store backed by PostgreSQL with guarded status updates.
package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"haulbase/internal/types"
)

// uniqueViolation is the Postgres error code for a unique-constraint hit.
const uniqueViolation = "23505"

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

var _ Store = (*PGStore)(nil)

func (s *PGStore) Insert(ctx context.Context, st *Settlement) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO settlements (
			id, driver_id, year_month, total_trips,
			total_base_fare, total_deductions, total_additions, final_amount,
			status, remarks, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(st.ID), string(st.DriverID), st.YearMonth.String(), st.TotalTrips,
		st.TotalBaseFare, st.TotalDeductions, st.TotalAdditions, st.FinalAmount,
		string(st.Status), st.Remarks, st.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

const settlementColumns = `
	id, driver_id, year_month, total_trips,
	total_base_fare, total_deductions, total_additions, final_amount,
	status, remarks, confirmed_by, confirmed_at, paid_at, created_at`

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Settlement, error) {
	row := s.db.QueryRow(ctx, `SELECT`+settlementColumns+` FROM settlements WHERE id = $1`, string(id))
	return scanSettlement(row)
}

func (s *PGStore) GetByDriverMonth(ctx context.Context, driverID types.ID, ym types.YearMonth) (*Settlement, error) {
	row := s.db.QueryRow(ctx, `SELECT`+settlementColumns+` FROM settlements WHERE driver_id = $1 AND year_month = $2`,
		string(driverID), ym.String())
	return scanSettlement(row)
}

// UpdateStatus transitions only when the row is still in the expected
// prior state. Zero rows affected means another writer got there first.
func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, confirmedBy *types.ID, at time.Time) (bool, error) {
	var by *string
	if confirmedBy != nil {
		v := string(*confirmedBy)
		by = &v
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE settlements
		SET status = $1,
		    confirmed_by = CASE WHEN $1 = 'CONFIRMED' THEN $2 ELSE confirmed_by END,
		    confirmed_at = CASE WHEN $1 = 'CONFIRMED' THEN $3 ELSE confirmed_at END,
		    paid_at      = CASE WHEN $1 = 'PAID'      THEN $3 ELSE paid_at      END
		WHERE id = $4 AND status = $5`,
		string(to), by, at, string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateGuarded patches fields only while the row is in the expected
// status. FinalAmount is recomputed in the same statement so a draft's
// totals never drift from its components.
func (s *PGStore) UpdateGuarded(ctx context.Context, id types.ID, expect Status, patch UpdatePatch) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE settlements
		SET total_deductions = COALESCE($1, total_deductions),
		    total_additions  = COALESCE($2, total_additions),
		    final_amount     = total_base_fare - COALESCE($1, total_deductions) + COALESCE($2, total_additions),
		    remarks          = COALESCE($3, remarks)
		WHERE id = $4 AND status = $5`,
		patch.TotalDeductions, patch.TotalAdditions, patch.Remarks, string(id), string(expect),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) DeleteDraft(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM settlements WHERE id = $1 AND status = 'DRAFT'`, string(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanSettlement(row pgx.Row) (*Settlement, error) {
	var st Settlement
	var ym string
	var confirmedBy *string
	var confirmedAt, paidAt *time.Time

	err := row.Scan(
		&st.ID, &st.DriverID, &ym, &st.TotalTrips,
		&st.TotalBaseFare, &st.TotalDeductions, &st.TotalAdditions, &st.FinalAmount,
		&st.Status, &st.Remarks, &confirmedBy, &confirmedAt, &paidAt, &st.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	parsed, err := types.ParseYearMonth(ym)
	if err != nil {
		return nil, err
	}
	st.YearMonth = parsed
	if confirmedBy != nil {
		v := types.ID(*confirmedBy)
		st.ConfirmedBy = &v
	}
	st.ConfirmedAt = confirmedAt
	st.PaidAt = paidAt
	return &st, nil
}
