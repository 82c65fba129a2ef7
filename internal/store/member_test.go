package store

import (
	"database/sql"
	"testing"

	"github.com/coinsiseek/nomad-spirit-app/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMemberCreateAndGet(t *testing.T) {
	ms := NewMemberStore(setupTestDB(t))

	m, err := ms.Create("jo@example.com", "Jo Kim", "hash123", false)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if m.ID == "" {
		t.Error("expected non-empty id")
	}
	if m.Email != "jo@example.com" || m.FullName != "Jo Kim" {
		t.Errorf("unexpected member %+v", m)
	}
	if m.IsAdmin {
		t.Error("expected non-admin member")
	}
	if m.ProfilePictureURL != nil {
		t.Error("expected nil profile picture url")
	}

	got, err := ms.GetByID(m.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.Email != m.Email {
		t.Errorf("get by id returned %+v", got)
	}

	byEmail, err := ms.GetByEmail("jo@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != m.ID {
		t.Errorf("get by email returned %+v", byEmail)
	}
}

func TestMemberDuplicateEmail(t *testing.T) {
	ms := NewMemberStore(setupTestDB(t))

	if _, err := ms.Create("dup@example.com", "First", "h", false); err != nil {
		t.Fatalf("create member: %v", err)
	}
	_, err := ms.Create("dup@example.com", "Second", "h", false)
	if err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMemberGetMissing(t *testing.T) {
	ms := NewMemberStore(setupTestDB(t))

	m, err := ms.GetByID("nope")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil for missing member, got %+v", m)
	}

	hash, err := ms.GetPasswordHash("nope@example.com")
	if err != nil {
		t.Fatalf("get password hash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash for missing member, got %q", hash)
	}
}

func TestMemberPasswordHash(t *testing.T) {
	ms := NewMemberStore(setupTestDB(t))

	if _, err := ms.Create("jo@example.com", "Jo", "secret-hash", false); err != nil {
		t.Fatalf("create member: %v", err)
	}
	hash, err := ms.GetPasswordHash("jo@example.com")
	if err != nil {
		t.Fatalf("get password hash: %v", err)
	}
	if hash != "secret-hash" {
		t.Errorf("expected stored hash, got %q", hash)
	}
}

func TestMemberListNonAdmins(t *testing.T) {
	ms := NewMemberStore(setupTestDB(t))

	if _, err := ms.Create("admin@example.com", "Admin", "h", true); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if _, err := ms.Create("b@example.com", "Beta", "h", false); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := ms.Create("a@example.com", "Alpha", "h", false); err != nil {
		t.Fatalf("create member: %v", err)
	}

	members, err := ms.ListNonAdmins()
	if err != nil {
		t.Fatalf("list non-admins: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].FullName != "Alpha" || members[1].FullName != "Beta" {
		t.Errorf("expected name order, got %q then %q", members[0].FullName, members[1].FullName)
	}
}

func TestMemberSetProfilePictureURL(t *testing.T) {
	ms := NewMemberStore(setupTestDB(t))

	m, err := ms.Create("jo@example.com", "Jo", "h", false)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := ms.SetProfilePictureURL(m.ID, "https://cdn.example.com/avatars/jo"); err != nil {
		t.Fatalf("set profile picture: %v", err)
	}
	got, err := ms.GetByID(m.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got.ProfilePictureURL == nil || *got.ProfilePictureURL != "https://cdn.example.com/avatars/jo" {
		t.Errorf("unexpected picture url %v", got.ProfilePictureURL)
	}

	if err := ms.SetProfilePictureURL("missing", "x"); err != ErrMemberNotFound {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}
