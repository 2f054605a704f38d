package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// WebhookEmitter POSTs receipts to an HTTP endpoint, with a local file
// backup written before the request goes out.
type WebhookEmitter struct {
	endpoint string
	client   *http.Client
	backup   *FileBackup
	log      *slog.Logger
}

// NewWebhookEmitter creates a webhook emitter.
func NewWebhookEmitter(endpoint string, backup *FileBackup, log *slog.Logger) *WebhookEmitter {
	return &WebhookEmitter{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		backup: backup,
		log:    log,
	}
}

// Emit finalizes and sends one receipt.
func (e *WebhookEmitter) Emit(ctx context.Context, r *Receipt) error {
	r.Finalize()

	// Backup first: the webhook is lossy, the file is not.
	if err := e.backup.Save(r); err != nil {
		e.log.Warn("receipt backup failed", "error", err)
	}

	if err := e.postWithRetry(ctx, r); err != nil {
		return fmt.Errorf("receipt webhook failed: %w", err)
	}
	return nil
}

// postWithRetry sends the receipt with retries. Receipts are emitted
// after the commit, so retrying here cannot double-publish anything.
func (e *WebhookEmitter) postWithRetry(ctx context.Context, r *Receipt) error {
	var lastErr error
	retries := 3
	delay := time.Second

	for attempt := 1; attempt <= retries; attempt++ {
		err := e.post(ctx, r)
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt < retries {
			e.log.Warn("receipt post failed, retrying", "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", retries, lastErr)
}

// post sends a single POST request to the webhook endpoint.
func (e *WebhookEmitter) post(ctx context.Context, r *Receipt) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("http %d: %s", resp.StatusCode, string(respBody))
}

// Close releases resources.
func (e *WebhookEmitter) Close() error {
	return nil
}

// FileBackup saves receipts to local JSON files.
type FileBackup struct {
	dir string
}

// NewFileBackup creates a new file backup handler.
func NewFileBackup(dir string) (*FileBackup, error) {
	if dir == "" {
		dir = "./receipts"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create receipt dir: %w", err)
	}

	return &FileBackup{dir: dir}, nil
}

// Save writes a receipt to a local JSON file named by package and event.
func (f *FileBackup) Save(r *Receipt) error {
	filename := fmt.Sprintf("%s_%s_%s.json", r.Package, r.Track, r.EventID)
	path := filepath.Join(f.dir, filename)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write receipt file: %w", err)
	}
	return nil
}
