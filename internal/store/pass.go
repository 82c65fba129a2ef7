package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/coinsiseek/nomad-spirit-app/internal/config"
	"github.com/coinsiseek/nomad-spirit-app/internal/model"
	"github.com/google/uuid"
)

// PassStore owns the pass lifecycle: issuing passes and marking attendance
// against them. Every mutation runs in a single transaction, and the
// one-active-pass and one-mark-per-date invariants are backed by unique
// indexes so concurrent callers cannot race past the precondition checks.
type PassStore struct {
	db            *sql.DB
	totalSessions int
	policy        config.CompletionPolicy
}

func NewPassStore(db *sql.DB, totalSessions int, policy config.CompletionPolicy) *PassStore {
	return &PassStore{db: db, totalSessions: totalSessions, policy: policy}
}

func scanPass(scanner interface{ Scan(...any) error }) (*model.Pass, error) {
	var p model.Pass
	err := scanner.Scan(&p.ID, &p.MemberID, &p.TotalSessions, &p.UsedSessions, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const passCols = `id, member_id, total_sessions, used_sessions, is_active, created_at`

// Create issues a fresh pass for the member. Fails with ErrMemberNotFound
// for an unknown member and ErrActivePassExists when an active pass already
// exists; the latter is enforced by the partial unique index on
// passes(member_id), not by a separate read.
func (s *PassStore) Create(memberID string) (*model.Pass, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM members WHERE id = ?)`, memberID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check member: %w", err)
	}
	if !exists {
		return nil, ErrMemberNotFound
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO passes (id, member_id, total_sessions, used_sessions, is_active) VALUES (?, ?, ?, 0, 1)`,
		id, memberID, s.totalSessions,
	)
	if isUniqueViolation(err, "passes.member_id", "ux_passes_active_member") {
		return nil, ErrActivePassExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert pass: %w", err)
	}
	return s.GetByID(id)
}

func (s *PassStore) GetByID(id string) (*model.Pass, error) {
	row := s.db.QueryRow(`SELECT `+passCols+` FROM passes WHERE id = ?`, id)
	p, err := scanPass(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pass: %w", err)
	}
	return p, nil
}

// GetActiveForMember returns the member's single active pass, or nil.
func (s *PassStore) GetActiveForMember(memberID string) (*model.Pass, error) {
	row := s.db.QueryRow(`SELECT `+passCols+` FROM passes WHERE member_id = ? AND is_active = 1`, memberID)
	p, err := scanPass(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active pass: %w", err)
	}
	return p, nil
}

// ListForMember returns the member's passes, newest first.
func (s *PassStore) ListForMember(memberID string) ([]model.Pass, error) {
	rows, err := s.db.Query(`SELECT `+passCols+` FROM passes WHERE member_id = ? ORDER BY created_at DESC, id`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list passes for member: %w", err)
	}
	defer rows.Close()

	var passes []model.Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		passes = append(passes, *p)
	}
	return passes, rows.Err()
}

// ListAll returns every pass. Used by the admin roster and the exporter.
func (s *PassStore) ListAll() ([]model.Pass, error) {
	rows, err := s.db.Query(`SELECT ` + passCols + ` FROM passes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var passes []model.Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		passes = append(passes, *p)
	}
	return passes, rows.Err()
}

// MarkAttendance records a visit on the member's active pass for the given
// date and advances the pass state, all in one transaction: insert the
// attendance row, bump used_sessions with a guard on the upper bound, and
// recompute is_active. When the last session is used the configured
// completion policy decides whether the pass row survives.
//
// Returns ErrNoActivePass when the member has no active pass and
// ErrDuplicateAttendance when the date is already marked.
func (s *PassStore) MarkAttendance(memberID, sessionDate string) (*model.Attendance, *model.Pass, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+passCols+` FROM passes WHERE member_id = ? AND is_active = 1`, memberID)
	pass, err := scanPass(row)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNoActivePass
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get active pass: %w", err)
	}

	now := time.Now().UTC()
	att := &model.Attendance{
		ID:          uuid.NewString(),
		PassID:      pass.ID,
		SessionDate: sessionDate,
		CreatedAt:   now,
	}
	if _, err := tx.Exec(
		`INSERT INTO attendance (id, pass_id, session_date, created_at) VALUES (?, ?, ?, ?)`,
		att.ID, att.PassID, att.SessionDate, now,
	); err != nil {
		if isUniqueViolation(err, "attendance.pass_id") {
			return nil, nil, ErrDuplicateAttendance
		}
		return nil, nil, fmt.Errorf("insert attendance: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE passes
		 SET used_sessions = used_sessions + 1,
		     is_active = CASE WHEN used_sessions + 1 < total_sessions THEN 1 ELSE 0 END
		 WHERE id = ? AND is_active = 1 AND used_sessions < total_sessions`,
		pass.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("update pass counter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Pass was exhausted or deactivated between the read and the update.
		return nil, nil, ErrNoActivePass
	}

	pass.UsedSessions++
	pass.IsActive = pass.UsedSessions < pass.TotalSessions

	if !pass.IsActive && s.policy == config.CompletionPurge {
		// Deleting the pass cascades to its attendance rows.
		if _, err := tx.Exec(`DELETE FROM passes WHERE id = ?`, pass.ID); err != nil {
			return nil, nil, fmt.Errorf("purge completed pass: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return att, pass, nil
}
