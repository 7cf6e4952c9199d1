package fixture

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/matheus3301/wxbak/internal/fixture/migrations"
)

// ContactSchemaVersion is the version the embedded contact schema ends at.
const ContactSchemaVersion = 2

// migrateContacts brings a contact database up to the embedded schema and
// reports the resulting version and whether anything was applied.
func migrateContacts(db *sql.DB) (version uint, changed bool, err error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return 0, false, fmt.Errorf("contact schema source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return 0, false, fmt.Errorf("contact schema driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return 0, false, fmt.Errorf("contact schema: %w", err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return 0, false, fmt.Errorf("contact schema up: %w", err)
	default:
		changed = true
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("contact schema version: %w", err)
	}
	if dirty {
		return version, changed, fmt.Errorf("contact schema dirty at version %d", version)
	}
	return version, changed, nil
}
