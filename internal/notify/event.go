package notify

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Receipt is the record of one committed publish, emitted after the edit
// store accepted the commit.
type Receipt struct {
	EventID      string    `json:"event_id"`
	Timestamp    time.Time `json:"timestamp"`
	Package      string    `json:"package"`
	EditID       string    `json:"edit_id"`
	Track        string    `json:"track"`
	UserFraction float64   `json:"user_fraction,omitempty"`
	VersionCodes []int64   `json:"version_codes"`

	// Checksums maps artifact path to its sha256, for artifacts the
	// publisher could inspect locally.
	Checksums map[string]string `json:"artifact_checksums,omitempty"`

	Producer ProducerInfo `json:"producer"`
	Hash     string       `json:"hash,omitempty"`
}

// ProducerInfo identifies the software that performed the publish.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha"`
}

// Finalize assigns the event ID, timestamp and content hash.
func (r *Receipt) Finalize() {
	r.EventID = uuid.New().String()
	r.Timestamp = time.Now().UTC()
	r.Hash = computeHash(r)
}

// computeHash hashes the canonical JSON of the receipt, excluding the
// hash field itself.
func computeHash(r *Receipt) string {
	cp := *r
	cp.Hash = ""

	canonical, err := json.Marshal(cp)
	if err != nil {
		// Should never happen with well-formed receipts
		return ""
	}

	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:])
}
