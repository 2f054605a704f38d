package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVersionCode(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		fallback int64
		want     int64
	}{
		{"numeric basename", "42.txt", 7, 42},
		{"non-numeric basename", "notanumber.txt", 7, 7},
		{"empty filename", "", 7, 7},
		{"no extension", "100", 7, 100},
		{"negative stays parseable", "-3.txt", 7, -3},
		{"numeric with path", "metadata/en-US/changelog/55.txt", 7, 55},
		{"extension only", ".txt", 7, 7},
		{"mixed basename", "v42.txt", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveVersionCode(tt.filename, tt.fallback))
		})
	}
}
