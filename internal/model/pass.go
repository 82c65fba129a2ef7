package model

import "time"

type Pass struct {
	ID            string    `json:"id"`
	MemberID      string    `json:"member_id"`
	TotalSessions int       `json:"total_sessions"`
	UsedSessions  int       `json:"used_sessions"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Status summarizes a pass after an attendance mark.
func (p *Pass) Status() PassStatus {
	return PassStatus{
		UsedSessions:      p.UsedSessions,
		RemainingSessions: p.TotalSessions - p.UsedSessions,
		IsActive:          p.IsActive,
	}
}

type PassStatus struct {
	UsedSessions      int  `json:"used_sessions"`
	RemainingSessions int  `json:"remaining_sessions"`
	IsActive          bool `json:"is_active"`
}
