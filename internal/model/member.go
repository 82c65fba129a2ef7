package model

import "time"

type Member struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	IsAdmin           bool      `json:"is_admin"`
	CreatedAt         time.Time `json:"created_at"`
}

// MemberWithPasses is the admin roster projection: a member joined with
// every pass they have ever held.
type MemberWithPasses struct {
	Member
	Passes []Pass `json:"passes"`
}
