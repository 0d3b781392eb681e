package main

import (
	"context"
	"log"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/adapters/repositories"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/config"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/db"
)

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

	seedPath := config.Get("SEED_PATH", "data/seeds/batches.json")

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	repo := repositories.NewSQLBatchRepository(conn, cfg.DBDialect)
	if err := repositories.SeedFromJSON(context.Background(), repo, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
