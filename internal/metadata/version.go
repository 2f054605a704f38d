package metadata

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ResolveVersionCode derives a version code from a changelog filename.
// The extension is stripped and the remainder parsed as an integer;
// a non-numeric basename falls back to the supplied version unchanged.
// Malformed filenames never fail a run.
func ResolveVersionCode(filename string, fallback int64) int64 {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		return fallback
	}

	code, err := strconv.ParseInt(base, 10, 64)
	if err != nil {
		return fallback
	}
	return code
}
