package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationResult reports the schema version after Migrate.
type MigrationResult struct {
	Version  uint
	Dirty    bool
	NoChange bool
}

// Migrate applies the migrations in dir to the database at dsn. steps > 0
// moves that many versions in direction; steps == 0 migrates all the way.
//
// Precondition: direction is "up" or "down"; dir holds golang-migrate *.sql files.
// Postcondition: Returns the resulting version, or an error if any migration failed.
func Migrate(dsn, dir, direction string, steps int) (MigrationResult, error) {
	if direction != "up" && direction != "down" {
		return MigrationResult{}, fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
	}
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch {
	case direction == "up" && steps > 0:
		err = m.Steps(steps)
	case direction == "up":
		err = m.Up()
	case steps > 0:
		err = m.Steps(-steps)
	default:
		err = m.Down()
	}

	var res MigrationResult
	if errors.Is(err, migrate.ErrNoChange) {
		res.NoChange = true
	} else if err != nil {
		return MigrationResult{}, fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("reading schema version: %w", verr)
	}
	res.Version, res.Dirty = version, dirty
	return res, nil
}
