package database

import "testing"

func TestOpenAppliesPragmas(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var fk int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys on, got %d", fk)
	}

	var timeout int
	if err := db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy_timeout 5000, got %d", timeout)
	}
}

func TestDeletingPassCascadesAttendance(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("exec %s: %v", query, err)
		}
	}
	mustExec(`INSERT INTO members (id, email, full_name, password_hash, is_admin) VALUES ('m1', 'jo@example.com', 'Jo', 'h', 0)`)
	mustExec(`INSERT INTO passes (id, member_id, total_sessions, used_sessions, is_active) VALUES ('p1', 'm1', 8, 1, 1)`)
	mustExec(`INSERT INTO attendance (id, pass_id, session_date) VALUES ('a1', 'p1', '2025-06-02')`)

	mustExec(`DELETE FROM passes WHERE id = 'p1'`)

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM attendance WHERE pass_id = 'p1'`).Scan(&count); err != nil {
		t.Fatalf("count attendance: %v", err)
	}
	if count != 0 {
		t.Errorf("expected attendance rows to cascade, got %d remaining", count)
	}
}
