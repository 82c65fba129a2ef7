package store

import (
	"errors"
	"strings"
)

// Domain errors surfaced by stores so handlers can map them to HTTP
// statuses without string matching.
var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrActivePassExists    = errors.New("member already has an active pass")
	ErrNoActivePass        = errors.New("no active pass for member")
	ErrDuplicateAttendance = errors.New("attendance already marked for this date")
)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure on any of the given columns or index names.
func isUniqueViolation(err error, targets ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	for _, t := range targets {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}
