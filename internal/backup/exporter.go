// Package backup snapshots the membership tables into a portable JSON
// document and, when a bucket is configured, ships the document to
// S3-compatible storage.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/coinsiseek/nomad-spirit-app/internal/config"
	"github.com/coinsiseek/nomad-spirit-app/internal/model"
	"github.com/coinsiseek/nomad-spirit-app/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Exporter produces point-in-time backup documents. All three table reads
// run inside one transaction: either the whole snapshot succeeds or the
// export fails naming the read that broke.
type Exporter struct {
	db      *sql.DB
	exports *store.ExportStore
	client  s3Client
	bucket  string
	logger  *slog.Logger
}

func NewExporter(cfg config.S3, db *sql.DB, exports *store.ExportStore, logger *slog.Logger) *Exporter {
	e := &Exporter{
		db:      db,
		exports: exports,
		logger:  logger,
	}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		e.client = newS3Client(cfg)
		e.bucket = cfg.Bucket
	}
	return e
}

func newS3Client(cfg config.S3) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Snapshot reads members, passes, and attendance in a single transaction
// and assembles the backup document, joining each pass with its owner's
// name and email.
func (e *Exporter) Snapshot(ctx context.Context) (*model.BackupDocument, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	members, err := readMembers(tx)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	passes, err := readPasses(tx)
	if err != nil {
		return nil, fmt.Errorf("fetch passes: %w", err)
	}
	attendance, err := readAttendance(tx)
	if err != nil {
		return nil, fmt.Errorf("fetch attendance: %w", err)
	}

	byID := make(map[string]model.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	joined := make([]model.PassWithMember, 0, len(passes))
	for _, p := range passes {
		pm := model.PassWithMember{Pass: p}
		if m, ok := byID[p.MemberID]; ok {
			pm.MemberFullName = m.FullName
			pm.MemberEmail = m.Email
		}
		joined = append(joined, pm)
	}

	return &model.BackupDocument{
		BackupTimestamp: time.Now().UTC(),
		Passes:          joined,
		Members:         members,
		Attendance:      attendance,
		Summary: model.BackupSummary{
			TotalPasses:            len(passes),
			TotalMembers:           len(members),
			TotalAttendanceRecords: len(attendance),
		},
	}, nil
}

// Run takes a snapshot, records it in the export history, and uploads the
// document when a bucket is configured. The document is returned for
// streaming to the caller regardless of upload outcome; an upload failure
// is recorded and surfaced as an error alongside the document.
func (e *Exporter) Run(ctx context.Context) (*model.BackupDocument, *model.Export, error) {
	doc, err := e.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("encode backup: %w", err)
	}

	filename := Filename(doc.BackupTimestamp)
	var s3Key string
	if e.client != nil {
		s3Key = fmt.Sprintf("exports/%s/%s", doc.BackupTimestamp.Format("2006-01-02T150405Z"), filename)
	}

	record, err := e.exports.Create(filename, s3Key)
	if err != nil {
		return nil, nil, fmt.Errorf("record export: %w", err)
	}

	if e.client == nil {
		if err := e.exports.UpdateCompleted(record.ID, int64(len(data))); err != nil {
			e.logger.Error("update export record", "error", err)
		}
		record.Status = model.ExportStatusCompleted
		record.SizeBytes = int64(len(data))
		return doc, record, nil
	}

	e.exports.UpdateStatus(record.ID, model.ExportStatusUploading, "")
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(s3Key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		e.exports.UpdateStatus(record.ID, model.ExportStatusFailed, err.Error())
		return doc, record, fmt.Errorf("upload to s3: %w", err)
	}

	if err := e.exports.UpdateCompleted(record.ID, int64(len(data))); err != nil {
		e.logger.Error("update export record", "error", err)
	}
	record.Status = model.ExportStatusCompleted
	record.SizeBytes = int64(len(data))
	return doc, record, nil
}

// Filename names an export document after its snapshot date, matching the
// download filename served to admins.
func Filename(ts time.Time) string {
	return fmt.Sprintf("nomad-spirit-backup-%s.json", ts.Format("2006-01-02"))
}

const memberCols = `id, email, full_name, profile_picture_url, is_admin, created_at`

func readMembers(tx *sql.Tx) ([]model.Member, error) {
	rows, err := tx.Query(`SELECT ` + memberCols + ` FROM members ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		var m model.Member
		var pictureURL sql.NullString
		if err := rows.Scan(&m.ID, &m.Email, &m.FullName, &pictureURL, &m.IsAdmin, &m.CreatedAt); err != nil {
			return nil, err
		}
		if pictureURL.Valid {
			m.ProfilePictureURL = &pictureURL.String
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func readPasses(tx *sql.Tx) ([]model.Pass, error) {
	rows, err := tx.Query(`SELECT id, member_id, total_sessions, used_sessions, is_active, created_at FROM passes ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := []model.Pass{}
	for rows.Next() {
		var p model.Pass
		if err := rows.Scan(&p.ID, &p.MemberID, &p.TotalSessions, &p.UsedSessions, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

func readAttendance(tx *sql.Tx) ([]model.Attendance, error) {
	rows, err := tx.Query(`SELECT id, pass_id, session_date, created_at FROM attendance ORDER BY session_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.Attendance{}
	for rows.Next() {
		var a model.Attendance
		if err := rows.Scan(&a.ID, &a.PassID, &a.SessionDate, &a.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
