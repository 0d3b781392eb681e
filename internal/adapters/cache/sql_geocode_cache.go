package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/db"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/obs"
)

// SQLGeocodeCache maps normalized addresses to coordinates in the geocode_cache table.
//
// On postgres lookups and writes bind whole arrays (ANY / unnest) so a batch is
// one round trip with a fixed statement; sqlite expands an IN list and writes
// row by row inside a transaction.
type SQLGeocodeCache struct {
	DB      *sql.DB
	Dialect string
}

func NewSQLGeocodeCache(conn *sql.DB, dialect string) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: conn, Dialect: dialect}
}

// uniqueAddresses trims, drops empties and dedupes while keeping input order.
func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// lookupQuery builds the select for n addresses and its arguments.
func (s *SQLGeocodeCache) lookupQuery(addresses []string) (string, []any) {
	if s.Dialect == db.DialectPostgres {
		return `
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address = ANY($1);
	`, []any{addresses}
	}

	args := make([]any, len(addresses))
	for i, a := range addresses {
		args[i] = a
	}
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address IN (%s);
	`, strings.TrimSuffix(strings.Repeat("?,", len(addresses)), ","))

	return q, args
}

// Fetch cached coordinates for the given addresses. Misses are simply absent.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	keys := uniqueAddresses(addresses)
	if len(keys) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	q, args := s.lookupQuery(keys)
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(keys))
	for rows.Next() {
		var addr string
		var c domain.Coordinates
		if err := rows.Scan(&addr, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

const upsertGeocodeSuffix = `
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`

// Store address -> coordinate mappings, overwriting existing entries.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	addrs := make([]string, 0, len(results))
	lons := make([]float64, 0, len(results))
	lats := make([]float64, 0, len(results))
	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		addrs = append(addrs, addr)
		lons = append(lons, c.Lon)
		lats = append(lats, c.Lat)
	}

	if s.Dialect == db.DialectPostgres {
		_, err := s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (address, lon, lat)
	SELECT * FROM unnest($1::text[], $2::double precision[], $3::double precision[])`+upsertGeocodeSuffix,
			addrs, lons, lats,
		)
		if err != nil {
			return fmt.Errorf("insert geocode cache: bulk upsert: %w", err)
		}
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (address, lon, lat)
	VALUES (?, ?, ?)`+upsertGeocodeSuffix)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, addr := range addrs {
		if _, err := stmt.ExecContext(ctx, addr, lons[i], lats[i]); err != nil {
			return fmt.Errorf("insert geocode cache address=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache: commit: %w", err)
	}

	return nil
}
