package db_test

import (
	"context"
	"testing"

	dbfs "github.com/mfreitas/devmarket/db"
	dbpkg "github.com/mfreitas/devmarket/internal/db"
)

func TestMigrate_AppliesEmbeddedMigrations(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "file:migrate_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer d.Close()

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	// core tables must exist after the migration
	for _, table := range []string{"accounts", "profiles", "developer_profiles", "projects", "applications", "conversations", "messages", "ratings", "jobs", "dead_letter_jobs"} {
		var name string
		row := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("expected table %q to exist: %v", table, err)
		}
	}

	var applied int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if applied == 0 {
		t.Fatalf("expected at least one recorded migration")
	}

	// running again must be a no-op
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}
	var appliedAgain int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&appliedAgain); err != nil {
		t.Fatalf("count schema_migrations after rerun: %v", err)
	}
	if appliedAgain != applied {
		t.Fatalf("expected migration count to stay %d, got %d", applied, appliedAgain)
	}
}
