package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pronoleague/pronostics/models"
)

const usersHeader = "username,email,first_name,last_name\n"

func newUserImporter(t *testing.T, content string) (*UserImporter, *fakeUserRepo, *recordingHub) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.csv")
	if content != "" {
		writeFile(t, path, content)
	}
	users := newFakeUserRepo()
	hub := &recordingHub{}
	imp := NewUserImporter(nil, users, discardLogger(), hub, path, "Alex")
	return imp, users, hub
}

func TestUserImporter_CreatesWithUnusablePassword(t *testing.T) {
	imp, users, _ := newUserImporter(t, usersHeader+
		"marie,marie@example.com,Marie,Durand\n"+
		"paul,paul@example.com,,\n")

	stats, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 2 {
		t.Errorf("Created = %d, want 2", stats.Created)
	}

	marie, err := users.GetByUsername(context.Background(), nil, "marie")
	if err != nil {
		t.Fatalf("marie not created: %v", err)
	}
	if marie.HasUsablePassword() {
		t.Error("imported user must not have a usable password")
	}
	if marie.Email != "marie@example.com" || marie.FirstName != "Marie" || marie.LastName != "Durand" {
		t.Errorf("marie fields wrong: %+v", marie)
	}

	paul, _ := users.GetByUsername(context.Background(), nil, "paul")
	if paul.FirstName != "" || paul.LastName != "" {
		t.Errorf("optional fields should default to empty: %+v", paul)
	}
}

func TestUserImporter_FieldsTrimmed(t *testing.T) {
	imp, users, _ := newUserImporter(t, usersHeader+
		"  marie , marie@example.com , Marie , Durand \n")

	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	marie, err := users.GetByUsername(context.Background(), nil, "marie")
	if err != nil {
		t.Fatalf("trimmed username not found: %v", err)
	}
	if marie.Email != "marie@example.com" {
		t.Errorf("email = %q, want trimmed", marie.Email)
	}
}

func TestUserImporter_UpdatesOnlyOnChange(t *testing.T) {
	imp, users, hub := newUserImporter(t, usersHeader+"marie,marie@example.com,Marie,Durand\n")

	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	stats, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Updated != 0 || users.updates != 0 {
		t.Errorf("unchanged rerun produced %d updates, want 0", users.updates)
	}
	if hub.count() != 1 {
		t.Errorf("broadcasts = %d, want 1 (none for the no-op run)", hub.count())
	}

	writeFile(t, imp.Path, usersHeader+"marie,new@example.com,Marie,Durand\n")
	stats, err = imp.Run(context.Background())
	if err != nil {
		t.Fatalf("third Run: %v", err)
	}
	if stats.Updated != 1 {
		t.Errorf("Updated = %d, want 1", stats.Updated)
	}
	marie, _ := users.GetByUsername(context.Background(), nil, "marie")
	if marie.Email != "new@example.com" {
		t.Errorf("email = %q, want new@example.com", marie.Email)
	}
}

func TestUserImporter_SkipsBlankAndProtectedUsernames(t *testing.T) {
	imp, users, _ := newUserImporter(t, usersHeader+
		",blank@example.com,,\n"+
		"Alex,alex@example.com,Alex,Admin\n"+
		"marie,marie@example.com,,\n")

	stats, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 1 {
		t.Errorf("Created = %d, want 1 (blank and protected rows skipped)", stats.Created)
	}
	if _, err := users.GetByUsername(context.Background(), nil, "Alex"); err == nil {
		t.Error("protected username must never be created by import")
	}
}

func TestUserImporter_DeletesAbsentUsersButNeverProtected(t *testing.T) {
	imp, users, _ := newUserImporter(t, usersHeader+"marie,marie@example.com,,\n")

	// Pre-existing store: the protected superuser and a stale account.
	hash := "$2a$10$somethinghashed"
	if err := users.Create(context.Background(), nil, &models.User{
		Username: "Alex", Email: "alex@example.com", PasswordHash: &hash, IsProtected: true,
	}); err != nil {
		t.Fatal(err)
	}
	if err := users.Create(context.Background(), nil, &models.User{
		Username: "stale", Email: "stale@example.com",
	}); err != nil {
		t.Fatal(err)
	}
	users.creates = 0

	stats, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1 (only the stale account)", stats.Deleted)
	}
	if _, err := users.GetByUsername(context.Background(), nil, "Alex"); err != nil {
		t.Error("protected superuser was deleted by reconciliation")
	}
	if _, err := users.GetByUsername(context.Background(), nil, "stale"); err == nil {
		t.Error("stale user should have been deleted")
	}
	if _, err := users.GetByUsername(context.Background(), nil, "marie"); err != nil {
		t.Error("source user should have been created")
	}
}

func TestUserImporter_ProtectedSurvivesEmptySource(t *testing.T) {
	imp, users, _ := newUserImporter(t, usersHeader)

	hash := "$2a$10$somethinghashed"
	if err := users.Create(context.Background(), nil, &models.User{
		Username: "Alex", PasswordHash: &hash, IsProtected: true,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := users.GetByUsername(context.Background(), nil, "Alex"); err != nil {
		t.Error("protected superuser must survive an empty source file")
	}
}

func TestUserImporter_MissingFileIsNoOp(t *testing.T) {
	imp, users, _ := newUserImporter(t, "")

	if err := users.Create(context.Background(), nil, &models.User{Username: "marie"}); err != nil {
		t.Fatal(err)
	}

	stats, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run on missing file: %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if _, err := users.GetByUsername(context.Background(), nil, "marie"); err != nil {
		t.Error("missing source file must not delete stored users")
	}
}

func TestUserImporter_HeaderColumnsInAnyOrder(t *testing.T) {
	imp, users, _ := newUserImporter(t,
		"email,username,last_name,first_name\n"+
			"marie@example.com,marie,Durand,Marie\n")

	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	marie, err := users.GetByUsername(context.Background(), nil, "marie")
	if err != nil {
		t.Fatalf("marie not created: %v", err)
	}
	if marie.FirstName != "Marie" || marie.LastName != "Durand" {
		t.Errorf("columns resolved by position, not header: %+v", marie)
	}
}
