// Command migrate applies or rolls back the schema migrations in ./migrations.
package main

import (
	"errors"
	"flag"
	"log"

	intconfig "railway/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var (
		dir  = flag.String("dir", "migrations", "directory holding the migration files")
		down = flag.Bool("down", false, "roll back one migration instead of migrating up")
	)
	flag.Parse()

	env := intconfig.LoadEnv()
	m, err := migrate.New("file://"+*dir, "mysql://"+intconfig.DSN(env))
	if err != nil {
		log.Fatalf("failed to initialize migrations: %v", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("warning: failed to close migrator: %v %v", srcErr, dbErr)
		}
	}()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("database schema already up to date")
		return
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("failed to read schema version: %v", err)
	}
	log.Printf("database schema at version %d (dirty=%v)", version, dirty)
}
