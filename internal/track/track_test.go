package track

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		track    string
		fraction float64
		wantErr  error
	}{
		{"beta no fraction", "beta", 0, nil},
		{"production no fraction", "production", 0, nil},
		{"custom track", "qa-team", 0, nil},
		{"rollout small fraction", Rollout, 0.1, nil},
		{"rollout full fraction", Rollout, 1, nil},
		{"rollout zero fraction", Rollout, 0, ErrBadFraction},
		{"rollout over one", Rollout, 1.5, ErrBadFraction},
		{"rollout negative", Rollout, -0.1, ErrBadFraction},
		{"beta with fraction", "beta", 0.5, ErrUnexpectedFraction},
	}

	for _, tt := range tests {
		err := Validate(tt.track, tt.fraction)
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("%s: Validate(%q, %v) = %v, want nil", tt.name, tt.track, tt.fraction, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: Validate(%q, %v) = %v, want %v", tt.name, tt.track, tt.fraction, err, tt.wantErr)
		}
	}
}

func TestNewUpdateDropsFractionForNonRollout(t *testing.T) {
	u := NewUpdate("beta", []int64{5}, 0.25)
	if u.UserFraction != 0 {
		t.Errorf("beta update carries fraction %v, want 0", u.UserFraction)
	}

	u = NewUpdate(Rollout, []int64{5}, 0.1)
	if u.UserFraction != 0.1 {
		t.Errorf("rollout update fraction = %v, want 0.1", u.UserFraction)
	}
	if len(u.VersionCodes) != 1 || u.VersionCodes[0] != 5 {
		t.Errorf("version codes = %v, want [5]", u.VersionCodes)
	}
}

func TestIsKnown(t *testing.T) {
	for _, name := range []string{"internal", "alpha", "beta", "production", "rollout"} {
		if !IsKnown(name) {
			t.Errorf("IsKnown(%q) = false, want true", name)
		}
	}
	if IsKnown("qa-team") {
		t.Error("IsKnown(custom) = true, want false")
	}
}
