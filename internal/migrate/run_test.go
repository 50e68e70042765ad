package migrate

import (
	"strings"
	"testing"
)

func TestVersions(t *testing.T) {
	versions, err := Versions()
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	if len(versions) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if versions[0] != "0001_identities" {
		t.Errorf("first migration = %q, want 0001_identities", versions[0])
	}
	for i := 1; i < len(versions); i++ {
		if versions[i-1] >= versions[i] {
			t.Errorf("versions not strictly ordered: %q before %q", versions[i-1], versions[i])
		}
	}
}

func TestIdentitiesMigrationDeclaresUniqueConstraints(t *testing.T) {
	body, err := migrationsFS.ReadFile("migrations/0001_identities.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(body)
	for _, name := range []string{
		"identities_email_key",
		"identities_national_id_key",
		"driver_profiles_license_number_key",
	} {
		if !strings.Contains(sql, name) {
			t.Errorf("migration does not declare constraint %s", name)
		}
	}
}
