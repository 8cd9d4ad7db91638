package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestInitSchemaCoversCoreTables(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var combined strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		combined.Write(b)
	}

	sql := combined.String()
	for _, table := range []string{
		"products",
		"partner_profiles",
		"partner_products",
		"orders",
		"order_items",
		"wallet_transactions",
		"wallet_balances",
		"payment_methods",
	} {
		if !strings.Contains(sql, "CREATE TABLE "+table) {
			t.Fatalf("migrations missing table %s", table)
		}
	}

	if !strings.Contains(sql, "paid_out BOOLEAN NOT NULL DEFAULT FALSE") {
		t.Fatal("orders table must carry the paid_out gate column")
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad_name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail validation")
	}
}
