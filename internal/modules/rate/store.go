// README: Rate store backed by PostgreSQL with a Redis read-through cache.
package rate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"haulbase/internal/types"
)

const (
	baseKeyPrefix  = "rate:base:"
	addonKeyPrefix = "rate:addons:"
)

type Store struct {
	db       *pgxpool.Pool
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewStore(db *pgxpool.Pool, rdb *redis.Client, cacheTTL time.Duration) *Store {
	return &Store{db: db, redis: rdb, cacheTTL: cacheTTL}
}

var _ Source = (*Store)(nil)

func baseKey(centerName, tonnage, region string) string {
	return fmt.Sprintf("%s%s:%s:%s", baseKeyPrefix, centerName, tonnage, region)
}

func addonKey(centerName, tonnage string) string {
	return fmt.Sprintf("%s%s:%s", addonKeyPrefix, centerName, tonnage)
}

func (s *Store) GetBaseFare(ctx context.Context, centerName, tonnage, region string) (int64, bool, error) {
	if s.redis != nil {
		if v, err := s.redis.Get(ctx, baseKey(centerName, tonnage, region)).Result(); err == nil {
			if fare, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				return fare, true, nil
			}
		}
	}

	var fare int64
	err := s.db.QueryRow(ctx, `
		SELECT base_fare FROM rate_base
		WHERE center_name = $1 AND tonnage = $2 AND region = $3`,
		centerName, tonnage, region,
	).Scan(&fare)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	if s.redis != nil {
		// Fire-and-forget cache fill.
		_ = s.redis.Set(ctx, baseKey(centerName, tonnage, region), strconv.FormatInt(fare, 10), s.cacheTTL).Err()
	}
	return fare, true, nil
}

func (s *Store) GetAddons(ctx context.Context, centerName, tonnage string) (AddonRate, bool, error) {
	if s.redis != nil {
		vals, err := s.redis.HGetAll(ctx, addonKey(centerName, tonnage)).Result()
		if err == nil && len(vals) == 2 {
			perStop, e1 := strconv.ParseInt(vals["per_stop"], 10, 64)
			perWaypoint, e2 := strconv.ParseInt(vals["per_waypoint"], 10, 64)
			if e1 == nil && e2 == nil {
				return AddonRate{CenterName: centerName, Tonnage: tonnage, PerStop: perStop, PerWaypoint: perWaypoint}, true, nil
			}
		}
	}

	r := AddonRate{CenterName: centerName, Tonnage: tonnage}
	err := s.db.QueryRow(ctx, `
		SELECT per_stop, per_waypoint FROM rate_addons
		WHERE center_name = $1 AND tonnage = $2`,
		centerName, tonnage,
	).Scan(&r.PerStop, &r.PerWaypoint)
	if errors.Is(err, pgx.ErrNoRows) {
		return AddonRate{}, false, nil
	}
	if err != nil {
		return AddonRate{}, false, err
	}

	if s.redis != nil {
		key := addonKey(centerName, tonnage)
		_ = s.redis.HSet(ctx, key, "per_stop", r.PerStop, "per_waypoint", r.PerWaypoint).Err()
		_ = s.redis.Expire(ctx, key, s.cacheTTL).Err()
	}
	return r, true, nil
}

func (s *Store) ListRegionFares(ctx context.Context, loadingPointID types.ID, vehicleType string, regions []string) ([]CenterFare, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, loading_point_id, vehicle_type, region, fare_type,
		       base_fare, extra_stop_fee, extra_region_fee
		FROM center_fares
		WHERE loading_point_id = $1 AND vehicle_type = $2
		  AND fare_type = 'BASIC' AND region = ANY($3)`,
		string(loadingPointID), vehicleType, regions,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CenterFare
	for rows.Next() {
		var cf CenterFare
		if err := rows.Scan(
			&cf.ID, &cf.LoadingPointID, &cf.VehicleType, &cf.Region, &cf.FareType,
			&cf.BaseFare, &cf.ExtraStopFee, &cf.ExtraRegionFee,
		); err != nil {
			return nil, err
		}
		out = append(out, cf)
	}
	return out, rows.Err()
}

func (s *Store) GetStopFee(ctx context.Context, loadingPointID types.ID, vehicleType string) (CenterFare, bool, error) {
	var cf CenterFare
	err := s.db.QueryRow(ctx, `
		SELECT id, loading_point_id, vehicle_type, fare_type,
		       base_fare, extra_stop_fee, extra_region_fee
		FROM center_fares
		WHERE loading_point_id = $1 AND vehicle_type = $2 AND fare_type = 'STOP_FEE'`,
		string(loadingPointID), vehicleType,
	).Scan(
		&cf.ID, &cf.LoadingPointID, &cf.VehicleType, &cf.FareType,
		&cf.BaseFare, &cf.ExtraStopFee, &cf.ExtraRegionFee,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CenterFare{}, false, nil
	}
	if err != nil {
		return CenterFare{}, false, err
	}
	return cf, true, nil
}

// InsertBase writes a row unless the key tuple already exists. ON CONFLICT
// DO NOTHING keeps the duplicate path a soft skip instead of an error.
func (s *Store) InsertBase(ctx context.Context, r BaseRate) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO rate_base (center_name, tonnage, region, base_fare)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (center_name, tonnage, region) DO NOTHING`,
		r.CenterName, r.Tonnage, r.Region, r.BaseFare,
	)
	if err != nil {
		return false, err
	}
	inserted := tag.RowsAffected() == 1
	if inserted && s.redis != nil {
		_ = s.redis.Del(ctx, baseKey(r.CenterName, r.Tonnage, r.Region)).Err()
	}
	return inserted, nil
}

func (s *Store) InsertAddons(ctx context.Context, r AddonRate) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO rate_addons (center_name, tonnage, per_stop, per_waypoint)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (center_name, tonnage) DO NOTHING`,
		r.CenterName, r.Tonnage, r.PerStop, r.PerWaypoint,
	)
	if err != nil {
		return false, err
	}
	inserted := tag.RowsAffected() == 1
	if inserted && s.redis != nil {
		_ = s.redis.Del(ctx, addonKey(r.CenterName, r.Tonnage)).Err()
	}
	return inserted, nil
}

func (s *Store) InsertCenterFare(ctx context.Context, r CenterFare) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO center_fares (
			id, loading_point_id, vehicle_type, region, fare_type,
			base_fare, extra_stop_fee, extra_region_fee
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`,
		string(r.ID), string(r.LoadingPointID), r.VehicleType, r.Region, string(r.FareType),
		r.BaseFare, r.ExtraStopFee, r.ExtraRegionFee,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
