package model

import "time"

type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusUploading ExportStatus = "uploading"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// Export records one backup export run. S3Key is empty when the document
// was only streamed to the caller.
type Export struct {
	ID           int64        `json:"id"`
	Filename     string       `json:"filename"`
	S3Key        string       `json:"s3_key,omitempty"`
	SizeBytes    int64        `json:"size_bytes"`
	Status       ExportStatus `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// PassWithMember is a pass joined with its owner's identity, as it appears
// in backup documents.
type PassWithMember struct {
	Pass
	MemberFullName string `json:"member_full_name"`
	MemberEmail    string `json:"member_email"`
}

type BackupSummary struct {
	TotalPasses            int `json:"total_passes"`
	TotalMembers           int `json:"total_members"`
	TotalAttendanceRecords int `json:"total_attendance_records"`
}

// BackupDocument is a point-in-time snapshot of every table.
type BackupDocument struct {
	BackupTimestamp time.Time        `json:"backup_timestamp"`
	Passes          []PassWithMember `json:"passes"`
	Members         []Member         `json:"members"`
	Attendance      []Attendance     `json:"attendance"`
	Summary         BackupSummary    `json:"summary"`
}
