package model

import "time"

// Attendance is a dated proof-of-visit tied to exactly one pass.
// SessionDate is a calendar date in YYYY-MM-DD form with no time component.
type Attendance struct {
	ID          string    `json:"id"`
	PassID      string    `json:"pass_id"`
	SessionDate string    `json:"session_date"`
	CreatedAt   time.Time `json:"created_at"`
}
