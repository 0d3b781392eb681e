package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/adapters/cache"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/adapters/geocoding"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/adapters/repositories"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/api"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/config"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/db"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/services"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, Redis, ORS geocoding) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DBDialect, cfg.DBURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	repo := repositories.NewSQLBatchRepository(conn, cfg.DBDialect)

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, repo, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	estimator, err := services.NewHaversineEstimator(cfg.Optimizer.AverageSpeedKmh)
	if err != nil {
		log.Fatal(err)
	}

	routeCache, err := newRouteCache(cfg.RedisAddr)
	if err != nil {
		log.Fatal(err)
	}

	// Address-only stops need ORS; without a key only coordinate stops are accepted.
	var geocoder ports.Geocoder
	if cfg.ORSAPIKey != "" {
		g, err := geocoding.NewORSGeocoder(cfg.ORSAPIKey, cache.NewSQLGeocodeCache(conn, cfg.DBDialect))
		if err != nil {
			log.Fatal(err)
		}
		geocoder = g
	} else {
		log.Println("ORS_API_KEY not set (address geocoding disabled)")
	}

	router := api.NewRouter(api.Deps{
		Repo:      repo,
		Estimator: estimator,
		Cache:     routeCache,
		Geocoder:  geocoder,
		Options:   cfg.Optimizer,
		CacheTTL:  cfg.RouteTTL,
		Timeout:   cfg.OptTimeout,
	})

	log.Printf("Server listening addr=:%s dialect=%s speed_kmh=%.1f", cfg.Port, cfg.DBDialect, cfg.Optimizer.AverageSpeedKmh)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func newRouteCache(addr string) (ports.RouteCache, error) {
	if addr == "" {
		log.Println("REDIS_ADDR not set (using in-memory route cache)")
		return cache.NewMemoryRouteCache(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("route cache: ping redis %q: %w", addr, err)
	}

	return cache.NewRedisRouteCache(client), nil
}

func initAndSeed(conn *sql.DB, repo *repositories.SQLBatchRepository, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}

	if err := repositories.SeedFromJSON(context.Background(), repo, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
