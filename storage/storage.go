package storage

import (
	"context"
	"time"

	"fieldops-drive/models"
)

// Auditor is the write side used by the proxy.
type Auditor interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}

type Database interface {
	Auditor
	Initialize() error
	ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error)
	Clear(ctx context.Context) error
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
