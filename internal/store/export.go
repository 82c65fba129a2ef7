package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/coinsiseek/nomad-spirit-app/internal/model"
)

// ExportStore keeps the history of backup export runs.
type ExportStore struct {
	db *sql.DB
}

func NewExportStore(db *sql.DB) *ExportStore {
	return &ExportStore{db: db}
}

func (s *ExportStore) Create(filename, s3Key string) (*model.Export, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO exports (filename, s3_key, status, created_at) VALUES (?, ?, ?, ?)`,
		filename, s3Key, model.ExportStatusPending, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create export record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &model.Export{
		ID:        id,
		Filename:  filename,
		S3Key:     s3Key,
		Status:    model.ExportStatusPending,
		CreatedAt: now,
	}, nil
}

func (s *ExportStore) UpdateStatus(id int64, status model.ExportStatus, errorMsg string) error {
	var errPtr *string
	if errorMsg != "" {
		errPtr = &errorMsg
	}
	_, err := s.db.Exec(`UPDATE exports SET status = ?, error_message = ? WHERE id = ?`, status, errPtr, id)
	if err != nil {
		return fmt.Errorf("update export status: %w", err)
	}
	return nil
}

func (s *ExportStore) UpdateCompleted(id, sizeBytes int64) error {
	_, err := s.db.Exec(
		`UPDATE exports SET status = ?, size_bytes = ? WHERE id = ?`,
		model.ExportStatusCompleted, sizeBytes, id,
	)
	if err != nil {
		return fmt.Errorf("update export completed: %w", err)
	}
	return nil
}

func (s *ExportStore) List(limit int) ([]model.Export, error) {
	rows, err := s.db.Query(
		`SELECT id, filename, s3_key, size_bytes, status, error_message, created_at
		 FROM exports ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var exports []model.Export
	for rows.Next() {
		var e model.Export
		var errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.Filename, &e.S3Key, &e.SizeBytes, &e.Status, &errMsg, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		e.ErrorMessage = errMsg.String
		exports = append(exports, e)
	}
	return exports, rows.Err()
}
