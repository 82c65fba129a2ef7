package store

import (
	"database/sql"
	"fmt"

	"github.com/coinsiseek/nomad-spirit-app/internal/model"
	"github.com/google/uuid"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	var pictureURL sql.NullString
	err := scanner.Scan(&m.ID, &m.Email, &m.FullName, &pictureURL, &m.IsAdmin, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if pictureURL.Valid {
		m.ProfilePictureURL = &pictureURL.String
	}
	return &m, nil
}

const memberCols = `id, email, full_name, profile_picture_url, is_admin, created_at`

// Create inserts a member with a fresh opaque id. The display name is fixed
// at creation; no update operation exists.
func (s *MemberStore) Create(email, fullName, passwordHash string, isAdmin bool) (*model.Member, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO members (id, email, full_name, password_hash, is_admin) VALUES (?, ?, ?, ?, ?)`,
		id, email, fullName, passwordHash, isAdmin,
	)
	if isUniqueViolation(err, "members.email") {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id string) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) GetByEmail(email string) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE email = ?`, email)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member by email: %w", err)
	}
	return m, nil
}

// GetPasswordHash returns the stored hash for the email, or "" if the
// member does not exist.
func (s *MemberStore) GetPasswordHash(email string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM members WHERE email = ?`, email).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

// ListNonAdmins returns all regular members ordered by name, the admin
// roster view.
func (s *MemberStore) ListNonAdmins() ([]model.Member, error) {
	rows, err := s.db.Query(`SELECT ` + memberCols + ` FROM members WHERE is_admin = 0 ORDER BY full_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// SetProfilePictureURL overwrites the member's avatar reference.
func (s *MemberStore) SetProfilePictureURL(id, url string) error {
	res, err := s.db.Exec(`UPDATE members SET profile_picture_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return fmt.Errorf("set profile picture: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrMemberNotFound
	}
	return nil
}
