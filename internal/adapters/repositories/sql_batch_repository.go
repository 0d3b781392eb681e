package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/db"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/obs"
)

// SQL-backed implementation of the BatchRepository port.
// Dialect selects placeholder style (sqlite or postgres).
type SQLBatchRepository struct {
	DB      *sql.DB
	Dialect string
}

func NewSQLBatchRepository(conn *sql.DB, dialect string) *SQLBatchRepository {
	return &SQLBatchRepository{DB: conn, Dialect: dialect}
}

func (s *SQLBatchRepository) q(query string) string { return db.Rebind(s.Dialect, query) }

// Return identifiers of all stored batches.
func (s *SQLBatchRepository) ListBatchIDs(ctx context.Context) ([]string, error) {
	if s.DB == nil {
		return nil, errors.New("batch repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT batch_id
	FROM delivery_batches
	ORDER BY delivery_date, batch_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list batches: query delivery_batches table: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list batches: scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batches: row iteration: %w", err)
	}

	return ids, nil
}

// Return a batch with its stops in stored (caller-supplied) order.
func (s *SQLBatchRepository) GetBatch(ctx context.Context, batchID string) (_ *domain.DeliveryBatch, err error) {
	defer obs.Time(ctx, "batches.GetBatch")(&err)

	if s.DB == nil {
		return nil, errors.New("batch repository: DB is nil")
	}

	var (
		batch     domain.DeliveryBatch
		date      string
		originLat sql.NullFloat64
		originLon sql.NullFloat64
		routeJSON sql.NullString
	)

	err = s.DB.QueryRowContext(ctx, s.q(`
	SELECT
		batch_id,
		driver_id,
		branch_id,
		delivery_date,
		origin_lat,
		origin_lon,
		route_json
	FROM delivery_batches
	WHERE batch_id = ?;
	`), batchID).Scan(
		&batch.BatchID,
		&batch.DriverID,
		&batch.BranchID,
		&date,
		&originLat,
		&originLon,
		&routeJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get batch %q: %w", batchID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %q: query delivery_batches table: %w", batchID, err)
	}

	batch.DeliveryDate, err = time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("get batch %q: parse delivery_date: %w", batchID, err)
	}

	if originLat.Valid && originLon.Valid {
		batch.Origin = &domain.Coordinates{Lat: originLat.Float64, Lon: originLon.Float64}
	}

	if routeJSON.Valid {
		var route domain.RouteResult
		if err := json.Unmarshal([]byte(routeJSON.String), &route); err != nil {
			return nil, fmt.Errorf("get batch %q: decode route: %w", batchID, err)
		}
		batch.Route = &route
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT
		stop_id,
		label,
		order_ref,
		lat,
		lon
	FROM batch_stops
	WHERE batch_id = ?
	ORDER BY stop_index;
	`), batchID)
	if err != nil {
		return nil, fmt.Errorf("get batch %q: query batch_stops table: %w", batchID, err)
	}
	defer rows.Close()

	batch.Stops = make([]domain.Stop, 0, 32)
	for rows.Next() {
		var st domain.Stop
		if err := rows.Scan(&st.ID, &st.Label, &st.OrderRef, &st.Location.Lat, &st.Location.Lon); err != nil {
			return nil, fmt.Errorf("get batch %q: scan stop row: %w", batchID, err)
		}
		batch.Stops = append(batch.Stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get batch %q: stop row iteration: %w", batchID, err)
	}

	return &batch, nil
}

// Insert or replace a batch and its stops. Any stored route is cleared.
func (s *SQLBatchRepository) CreateBatch(ctx context.Context, batch *domain.DeliveryBatch) error {
	if s.DB == nil {
		return errors.New("batch repository: DB is nil")
	}
	if batch == nil || batch.BatchID == "" {
		return errors.New("create batch: batch id must be non-empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create batch %q: begin tx: %w", batch.BatchID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var originLat, originLon sql.NullFloat64
	if batch.Origin != nil {
		originLat = sql.NullFloat64{Float64: batch.Origin.Lat, Valid: true}
		originLon = sql.NullFloat64{Float64: batch.Origin.Lon, Valid: true}
	}

	_, err = tx.ExecContext(ctx, s.q(`
	INSERT INTO delivery_batches (
		batch_id,
		driver_id,
		branch_id,
		delivery_date,
		origin_lat,
		origin_lon,
		route_json,
		optimized_at
	)
	VALUES (?, ?, ?, ?, ?, ?, NULL, NULL)
	ON CONFLICT (batch_id) DO UPDATE
	SET driver_id = EXCLUDED.driver_id,
		branch_id = EXCLUDED.branch_id,
		delivery_date = EXCLUDED.delivery_date,
		origin_lat = EXCLUDED.origin_lat,
		origin_lon = EXCLUDED.origin_lon,
		route_json = NULL,
		optimized_at = NULL;
	`),
		batch.BatchID,
		batch.DriverID,
		batch.BranchID,
		batch.DeliveryDate.Format(time.DateOnly),
		originLat,
		originLon,
	)
	if err != nil {
		return fmt.Errorf("create batch %q: upsert batch: %w", batch.BatchID, err)
	}

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM batch_stops WHERE batch_id = ?;`), batch.BatchID); err != nil {
		return fmt.Errorf("create batch %q: clear stops: %w", batch.BatchID, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO batch_stops (
		batch_id,
		stop_index,
		stop_id,
		label,
		order_ref,
		lat,
		lon
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("create batch %q: prepare stop insert: %w", batch.BatchID, err)
	}
	defer stmt.Close()

	for i, st := range batch.Stops {
		if _, err := stmt.ExecContext(ctx, batch.BatchID, i, st.ID, st.Label, st.OrderRef, st.Location.Lat, st.Location.Lon); err != nil {
			return fmt.Errorf("create batch %q: insert stop_id=%q: %w", batch.BatchID, st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create batch %q: commit tx: %w", batch.BatchID, err)
	}

	return nil
}

// Store the route result against the batch record.
func (s *SQLBatchRepository) SaveRoute(ctx context.Context, batchID string, route *domain.RouteResult) (err error) {
	defer obs.Time(ctx, "batches.SaveRoute")(&err)

	if s.DB == nil {
		return errors.New("batch repository: DB is nil")
	}
	if route == nil {
		return errors.New("save route: route must be non-nil")
	}

	payload, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("save route %q: marshal route: %w", batchID, err)
	}

	res, err := s.DB.ExecContext(ctx, s.q(`
	UPDATE delivery_batches
	SET route_json = ?,
		optimized_at = ?
	WHERE batch_id = ?;
	`), string(payload), time.Now().UTC().Format(time.RFC3339), batchID)
	if err != nil {
		return fmt.Errorf("save route %q: update delivery_batches table: %w", batchID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save route %q: rows affected: %w", batchID, err)
	}
	if n == 0 {
		return fmt.Errorf("save route %q: %w", batchID, domain.ErrNotFound)
	}

	return nil
}

// Return the stored route for a batch.
func (s *SQLBatchRepository) GetRoute(ctx context.Context, batchID string) (*domain.RouteResult, error) {
	if s.DB == nil {
		return nil, errors.New("batch repository: DB is nil")
	}

	var routeJSON sql.NullString
	err := s.DB.QueryRowContext(ctx, s.q(`
	SELECT route_json
	FROM delivery_batches
	WHERE batch_id = ?;
	`), batchID).Scan(&routeJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %q: batch: %w", batchID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %q: query delivery_batches table: %w", batchID, err)
	}

	if !routeJSON.Valid {
		return nil, fmt.Errorf("get route %q: route: %w", batchID, domain.ErrNotFound)
	}

	var route domain.RouteResult
	if err := json.Unmarshal([]byte(routeJSON.String), &route); err != nil {
		return nil, fmt.Errorf("get route %q: decode route: %w", batchID, err)
	}

	return &route, nil
}
