package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
)

// Initialize the database schema. Statements are valid for both sqlite and postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createBatchesQuery := `
	CREATE TABLE IF NOT EXISTS delivery_batches (
		batch_id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL,
		branch_id TEXT NOT NULL,
		delivery_date TEXT NOT NULL,
		origin_lat DOUBLE PRECISION,
		origin_lon DOUBLE PRECISION,
		route_json TEXT,
		optimized_at TEXT
	);
	`

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS batch_stops (
		batch_id TEXT NOT NULL REFERENCES delivery_batches(batch_id),
		stop_index INTEGER NOT NULL,
		stop_id TEXT NOT NULL,
		label TEXT NOT NULL,
		order_ref TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (batch_id, stop_index),
		UNIQUE (batch_id, stop_id)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_batches_driver_date
	ON delivery_batches(driver_id, delivery_date);
	`

	statements := []string{
		createBatchesQuery,
		createStopsQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StopSeed struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	OrderRef string  `json:"order_ref"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

type BatchSeed struct {
	BatchID      string              `json:"batch_id"`
	DriverID     string              `json:"driver_id"`
	BranchID     string              `json:"branch_id"`
	DeliveryDate string              `json:"delivery_date"`
	Origin       *domain.Coordinates `json:"origin"`
	Stops        []StopSeed          `json:"stops"`
}

// Populate the database with delivery batches from a JSON file.
// Re-seeding a batch replaces its stops and clears any stored route.
func SeedFromJSON(ctx context.Context, repo *SQLBatchRepository, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed batches: read %q: %w", jsonPath, err)
	}

	var data []BatchSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed batches: parse json: %w", err)
	}

	for i, item := range data {
		batchID := strings.TrimSpace(item.BatchID)
		if batchID == "" {
			return fmt.Errorf("seed batches: item at index %d: batch_id cannot be empty", i+1)
		}

		date, err := time.Parse(time.DateOnly, item.DeliveryDate)
		if err != nil {
			return fmt.Errorf("seed batches: batch %q: invalid delivery_date: %w", batchID, err)
		}

		stops := make([]domain.Stop, 0, len(item.Stops))
		for _, s := range item.Stops {
			stops = append(stops, domain.Stop{
				ID:       strings.TrimSpace(s.ID),
				Label:    s.Label,
				OrderRef: s.OrderRef,
				Location: domain.Coordinates{Lat: s.Lat, Lon: s.Lon},
			})
		}

		batch := &domain.DeliveryBatch{
			BatchID:      batchID,
			DriverID:     item.DriverID,
			BranchID:     item.BranchID,
			DeliveryDate: date,
			Origin:       item.Origin,
			Stops:        stops,
		}
		if err := repo.CreateBatch(ctx, batch); err != nil {
			return fmt.Errorf("seed batches: %w", err)
		}
	}

	return nil
}
