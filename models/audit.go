package models

import "time"

const (
	RouteFiles    = "files"
	RouteDownload = "download"
)

// AuditEntry describes one proxied request after its response was written.
type AuditEntry struct {
	ID         int64
	RequestID  string
	Route      string
	FileID     string
	Status     int
	Bytes      int64
	Duration   time.Duration
	Error      string
	OccurredAt time.Time
}

func (e AuditEntry) Failed() bool {
	return e.Status >= 500
}
