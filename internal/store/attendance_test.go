package store

import (
	"testing"

	"github.com/coinsiseek/nomad-spirit-app/internal/config"
)

func TestAttendanceListDatesOrdered(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ps := NewPassStore(db, 8, config.CompletionRetain)
	as := NewAttendanceStore(db)

	m, err := ms.Create("student@example.com", "Student", "h", false)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	pass, err := ps.Create(m.ID)
	if err != nil {
		t.Fatalf("create pass: %v", err)
	}

	// marked out of order, listed ascending
	for _, date := range []string{"2025-06-10", "2025-06-02", "2025-06-05"} {
		if _, _, err := ps.MarkAttendance(m.ID, date); err != nil {
			t.Fatalf("mark %s: %v", date, err)
		}
	}

	dates, err := as.ListDates(pass.ID)
	if err != nil {
		t.Fatalf("list dates: %v", err)
	}
	want := []string{"2025-06-02", "2025-06-05", "2025-06-10"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("date %d: expected %s, got %s", i, want[i], dates[i])
		}
	}
}

func TestAttendanceListDatesEmpty(t *testing.T) {
	as := NewAttendanceStore(setupTestDB(t))

	dates, err := as.ListDates("no-such-pass")
	if err != nil {
		t.Fatalf("list dates: %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("expected empty list, got %v", dates)
	}
}

func TestAttendanceListAll(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	ps := NewPassStore(db, 8, config.CompletionRetain)
	as := NewAttendanceStore(db)

	m, err := ms.Create("student@example.com", "Student", "h", false)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	pass, err := ps.Create(m.ID)
	if err != nil {
		t.Fatalf("create pass: %v", err)
	}
	if _, _, err := ps.MarkAttendance(m.ID, "2025-06-02"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if _, _, err := ps.MarkAttendance(m.ID, "2025-06-01"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	records, err := as.ListAll()
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SessionDate != "2025-06-01" || records[1].SessionDate != "2025-06-02" {
		t.Errorf("expected date order, got %s then %s", records[0].SessionDate, records[1].SessionDate)
	}
	for _, r := range records {
		if r.PassID != pass.ID {
			t.Errorf("unexpected pass id %s", r.PassID)
		}
	}
}
