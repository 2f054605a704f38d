// Package artifact resolves and reads the binary artifacts to publish.
// Artifacts come from local paths (with glob patterns) or from object
// storage via gs:// and s3:// URLs.
package artifact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound is returned when an artifact pattern resolves to nothing.
var ErrNotFound = errors.New("artifact not found")

// isRemote reports whether the path names an object-storage location.
func isRemote(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://")
}

// Expand resolves artifact arguments into concrete paths, preserving
// argument order. Local arguments are treated as doublestar glob patterns;
// remote URLs pass through untouched. A pattern matching no file is fatal.
func Expand(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		if isRemote(pattern) {
			paths = append(paths, pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad artifact pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, pattern)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
