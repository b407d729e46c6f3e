package domain

import (
	"errors"
	"strconv"
	"time"
)

// ReportStatus represents the lifecycle state of a weather report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportCompleted ReportStatus = "completed"
	ReportFailed    ReportStatus = "failed"
)

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrReportNotReady    = errors.New("report not ready")
	ErrReportFileMissing = errors.New("report file missing")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrQueueFull         = errors.New("report queue is full")
	ErrInvalidInput      = errors.New("invalid input")
)

// validTransitions defines the allowed state machine. A report leaves pending
// exactly once and never changes again.
var validTransitions = map[ReportStatus][]ReportStatus{
	ReportPending: {ReportCompleted, ReportFailed},
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ReportStatus) IsTerminal() bool {
	return s == ReportCompleted || s == ReportFailed
}

// Report is a single weather report request and, once completed, the
// location of its CSV artifact. FilePath is set iff Status is completed.
type Report struct {
	ID        int64        `json:"report_id"`
	UserID    int64        `json:"user_id"`
	City      string       `json:"city"`
	Status    ReportStatus `json:"status"`
	FilePath  *string      `json:"file_path"`
	CreatedAt time.Time    `json:"created_at"`
}

// DownloadName is the filename presented to clients downloading the artifact.
func (r *Report) DownloadName() string {
	return "report_" + strconv.FormatInt(r.ID, 10) + ".csv"
}
