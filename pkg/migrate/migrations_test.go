package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShippedMigrationsValidate(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations invalid: %v", err)
	}
}

func TestAuditLogsMigrationDeclaresEveryAction(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	var sql string
	for _, e := range entries {
		if strings.Contains(e.Name(), "audit_logs") {
			b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
			if err != nil {
				t.Fatalf("read migration: %v", err)
			}
			sql = string(b)
		}
	}
	if sql == "" {
		t.Fatal("audit_logs migration not found")
	}

	for _, action := range []string{
		"customer_created",
		"customer_updated",
		"customer_deleted",
		"points_added",
		"points_redeemed",
		"tier_changed",
	} {
		if !strings.Contains(sql, action) {
			t.Fatalf("audit_action_enum missing %q", action)
		}
	}
	if !strings.Contains(sql, "ON DELETE SET NULL") {
		t.Fatal("customer reference must null out on delete")
	}
}
