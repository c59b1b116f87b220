// Command seed resets the berth inventory to the standard coach layout.
// Run it after migrating an empty database, or with -reset to wipe all
// bookings and start over.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	intconfig "railway/internal/config"
	"railway/internal/domain"
)

func main() {
	reset := flag.Bool("reset", false, "delete existing tickets and passengers before seeding")
	flag.Parse()

	intconfig.LoadEnv()
	db := intconfig.ConnectDB()
	defer intconfig.CloseDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Fatalf("failed to begin transaction: %v", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if *reset {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tickets"); err != nil {
			log.Fatalf("failed to clear tickets: %v", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM passengers"); err != nil {
			log.Fatalf("failed to clear passengers: %v", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM berths"); err != nil {
		log.Fatalf("failed to clear berths: %v", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO berths (berth_number, berth_type, status) VALUES (?, ?, 'AVAILABLE')")
	if err != nil {
		log.Fatalf("failed to prepare insert: %v", err)
	}
	defer stmt.Close()

	layout := domain.DefaultBerthLayout()
	for _, slot := range layout {
		if _, err := stmt.ExecContext(ctx, slot.Number, string(slot.Type)); err != nil {
			log.Fatalf("failed to insert berth %d: %v", slot.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("failed to commit seed: %v", err)
	}
	committed = true

	log.Printf("seeded %d berths", len(layout))
}
