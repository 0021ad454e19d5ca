package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/andalib/andalib-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := fs.Glob(migrate.Migrations(), pattern)
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := fs.ReadFile(migrate.Migrations(), matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestLibraryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_library_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS loans",
		"CREATE TABLE IF NOT EXISTS returns",
		"CONSTRAINT chk_books_stock_non_negative CHECK (stock >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_returns_loan_id ON returns (loan_id)",
		"CHECK (status IN ('ACTIVE', 'RETURNED'))",
		"DROP TABLE IF EXISTS returns",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestNotificationMigrationIndexesJanitorPredicate(t *testing.T) {
	content := readMigration(t, "*_create_notifications.sql")

	checks := []string{
		"metadata JSONB",
		"CHECK (is_read = (read_at IS NOT NULL))",
		"ON notifications (is_read, read_at)",
		"DROP TABLE IF EXISTS notifications",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEmbeddedMigrationsValidate(t *testing.T) {
	if err := migrate.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateFSRejectsBrokenFiles(t *testing.T) {
	ok := "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	cases := map[string]fstest.MapFS{
		"bad name": {"bad-name.sql": {Data: []byte(ok)}},
		"duplicate version": {
			"20240101000000_a.sql": {Data: []byte(ok)},
			"20240101000000_b.sql": {Data: []byte(ok)},
		},
		"missing down": {"20240101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}},
		"down first":   {"20240101000000_a.sql": {Data: []byte("-- +goose Down\n-- +goose Up\n")}},
		"unbalanced":   {"20240101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n")}},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if err := migrate.ValidateFS(fsys); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Loan Index")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_loan_index.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateFS(os.DirFS(dir)); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected empty sanitized name to fail")
	}
}

func TestCreateSQLMigrationVersionsAfterNewestFile(t *testing.T) {
	dir := t.TempDir()
	future := time.Now().UTC().Add(24 * time.Hour).Format("20060102150405")
	if err := os.WriteFile(filepath.Join(dir, future+"_seed.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	first, err := migrate.CreateSQLMigration(dir, "first")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := migrate.CreateSQLMigration(dir, "second")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if filepath.Base(first) <= future || filepath.Base(second) <= filepath.Base(first) {
		t.Fatalf("versions must increase: %s, %s after %s", first, second, future)
	}
	if err := migrate.ValidateFS(os.DirFS(dir)); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
