// README: Trip and dispatch store backed by PostgreSQL.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"haulbase/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

var _ Store = (*PGStore)(nil)

func (s *PGStore) InsertTrip(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, center_name, loading_point_id, vehicle_type, tonnage,
			regions, stop_count, base_fare, extra_stop_fee, extra_region_fee,
			total_fare, adjustment_amount, adjustment_reason, depart_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		string(t.ID), t.CenterName, string(t.LoadingPointID), t.VehicleType, t.Tonnage,
		t.Regions, t.StopCount, t.BaseFare, t.ExtraStopFee, t.ExtraRegionFee,
		t.TotalFare, t.AdjustmentAmount, t.AdjustmentReason, t.DepartAt, t.CreatedAt,
	)
	return err
}

func (s *PGStore) GetTrip(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, center_name, loading_point_id, vehicle_type, tonnage,
		       regions, stop_count, base_fare, extra_stop_fee, extra_region_fee,
		       total_fare, adjustment_amount, adjustment_reason, depart_at, created_at
		FROM trips WHERE id = $1`, string(id),
	)
	var t Trip
	err := row.Scan(
		&t.ID, &t.CenterName, &t.LoadingPointID, &t.VehicleType, &t.Tonnage,
		&t.Regions, &t.StopCount, &t.BaseFare, &t.ExtraStopFee, &t.ExtraRegionFee,
		&t.TotalFare, &t.AdjustmentAmount, &t.AdjustmentReason, &t.DepartAt, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PGStore) SetTripFare(ctx context.Context, id types.ID, baseFare, extraStopFee, extraRegionFee int64, totalFare *int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET base_fare = $1, extra_stop_fee = $2, extra_region_fee = $3, total_fare = $4
		WHERE id = $5`,
		baseFare, extraStopFee, extraRegionFee, totalFare, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) InsertDispatch(ctx context.Context, d *Dispatch) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO dispatches (
			id, trip_id, driver_id, driver_name, driver_phone, vehicle_no,
			driver_fee, deduction, addition, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(d.ID), string(d.TripID), string(d.DriverID), d.DriverName, d.DriverPhone, d.VehicleNo,
		d.DriverFee, d.Deduction, d.Addition, d.CreatedAt,
	)
	return err
}

func (s *PGStore) ListByDriverMonth(ctx context.Context, driverID types.ID, from, to time.Time) ([]Dispatch, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.id, d.trip_id, d.driver_id, d.driver_name, d.driver_phone, d.vehicle_no,
		       d.driver_fee, d.deduction, d.addition, d.created_at
		FROM dispatches d
		JOIN trips t ON t.id = d.trip_id
		WHERE d.driver_id = $1 AND t.depart_at >= $2 AND t.depart_at < $3
		ORDER BY t.depart_at`,
		string(driverID), from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dispatch
	for rows.Next() {
		var d Dispatch
		if err := rows.Scan(
			&d.ID, &d.TripID, &d.DriverID, &d.DriverName, &d.DriverPhone, &d.VehicleNo,
			&d.DriverFee, &d.Deduction, &d.Addition, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PGStore) SumByDriverMonth(ctx context.Context, driverID types.ID, from, to time.Time) (int, int64, int64, int64, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(d.driver_fee), 0),
		       COALESCE(SUM(d.deduction), 0),
		       COALESCE(SUM(d.addition), 0)
		FROM dispatches d
		JOIN trips t ON t.id = d.trip_id
		WHERE d.driver_id = $1 AND t.depart_at >= $2 AND t.depart_at < $3`,
		string(driverID), from, to,
	)
	var trips int
	var fees, deductions, additions int64
	if err := row.Scan(&trips, &fees, &deductions, &additions); err != nil {
		return 0, 0, 0, 0, err
	}
	return trips, fees, deductions, additions, nil
}
