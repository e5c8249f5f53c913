package testsupport

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"cnpjscan/internal/company"
)

// ClientsQuery reads the table written by SeedWarehouse.
const ClientsQuery = "SELECT codcli, cnpj FROM clients ORDER BY rowid"

// SeedWarehouse creates a SQLite database at path holding items in a clients
// table. Tax ids are stored verbatim so callers can exercise cleaning.
func SeedWarehouse(t testing.TB, path string, items []company.WorkItem) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite %s: %v", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS clients (codcli TEXT, cnpj TEXT)`); err != nil {
		t.Fatalf("create clients table: %v", err)
	}
	for _, item := range items {
		if _, err := db.Exec(`INSERT INTO clients (codcli, cnpj) VALUES (?, ?)`, item.ClientID, item.TaxID); err != nil {
			t.Fatalf("insert client %s: %v", item.TaxID, err)
		}
	}
}
