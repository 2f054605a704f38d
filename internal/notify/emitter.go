// Package notify emits publish receipts after a successful commit.
// Receipts are best-effort: emission failures are logged by the caller
// and never fail a run that already committed.
package notify

import (
	"context"
	"log/slog"

	"github.com/stagehand-cli/stagehand/internal/config"
	"github.com/stagehand-cli/stagehand/internal/logging"
)

// Emitter is the interface for receipt emission.
type Emitter interface {
	Emit(ctx context.Context, r *Receipt) error
	Close() error
}

// NewEmitter creates an appropriate emitter based on configuration.
func NewEmitter(cfg config.NotifyConfig) Emitter {
	log := logging.Component("notify")

	if !cfg.Enabled {
		return &noopEmitter{}
	}

	backup, err := NewFileBackup(cfg.BackupDir)
	if err != nil {
		log.Warn("failed to create receipt backup, using no-op emitter", "error", err)
		return &noopEmitter{}
	}

	if cfg.Endpoint != "" {
		log.Info("emitting receipts via webhook", "endpoint", cfg.Endpoint)
		return NewWebhookEmitter(cfg.Endpoint, backup, log)
	}

	log.Info("emitting receipts to files only", "dir", cfg.BackupDir)
	return &fileOnlyEmitter{backup: backup, log: log}
}

// fileOnlyEmitter writes receipts to local files only (no webhook).
type fileOnlyEmitter struct {
	backup *FileBackup
	log    *slog.Logger
}

func (e *fileOnlyEmitter) Emit(ctx context.Context, r *Receipt) error {
	r.Finalize()
	return e.backup.Save(r)
}

func (e *fileOnlyEmitter) Close() error {
	return nil
}

// noopEmitter discards all receipts.
type noopEmitter struct{}

func (n *noopEmitter) Emit(_ context.Context, _ *Receipt) error {
	return nil
}

func (n *noopEmitter) Close() error {
	return nil
}
