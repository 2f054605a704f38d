package publish

import (
	"time"

	"github.com/stagehand-cli/stagehand/internal/track"
)

// Version information (set via ldflags)
var (
	Version = "v0.1.0"
	GitSHA  = "unknown"
)

// State is the cross-step pipeline state. It has a single owner (the
// pipeline) and is mutated only between strictly sequential steps, so it
// needs no synchronization.
type State struct {
	PackageName string
	EditID      string

	// ArtifactPaths is the resolved, ordered upload list.
	ArtifactPaths []string

	// VersionCodes accumulates the codes returned per upload, in order.
	VersionCodes []int64

	// LastVersionCode is the code of the last uploaded artifact; it is
	// the fallback version for changelogs with non-numeric filenames.
	// Last write wins.
	LastVersionCode int64

	// Checksums maps local artifact paths to their sha256.
	Checksums map[string]string

	// TrackUpdate is the committed track state after the update step.
	TrackUpdate *track.Update
}

// Summary is the outcome of a successful run.
type Summary struct {
	Package         string
	EditID          string
	Track           string
	VersionCodes    []int64
	LanguagesSynced []string
	Duration        time.Duration
}
