package store

import (
	"database/sql"
	"fmt"

	"github.com/coinsiseek/nomad-spirit-app/internal/model"
)

// AttendanceStore provides read-only projections of attendance history.
// Rows are only ever written through PassStore.MarkAttendance.
type AttendanceStore struct {
	db *sql.DB
}

func NewAttendanceStore(db *sql.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// ListDates returns the session dates recorded against a pass, ascending.
// Uniqueness per (pass, date) is guaranteed by the table constraint.
func (s *AttendanceStore) ListDates(passID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT session_date FROM attendance WHERE pass_id = ? ORDER BY session_date ASC`,
		passID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendance dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan attendance date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ListAll returns every attendance row, ordered by date. Used by the exporter.
func (s *AttendanceStore) ListAll() ([]model.Attendance, error) {
	rows, err := s.db.Query(`SELECT id, pass_id, session_date, created_at FROM attendance ORDER BY session_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var records []model.Attendance
	for rows.Next() {
		var a model.Attendance
		if err := rows.Scan(&a.ID, &a.PassID, &a.SessionDate, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
