// Package track provides release-track validation and update shaping.
package track

import (
	"errors"
	"fmt"
)

// ErrBadFraction is returned when a rollout fraction is outside (0, 1].
var ErrBadFraction = errors.New("user fraction must be in (0, 1]")

// ErrUnexpectedFraction is returned when a fraction is supplied for a
// track that does not support staged rollout.
var ErrUnexpectedFraction = errors.New("user fraction is only valid for the rollout track")

// Rollout is the track that carries a staged-rollout fraction.
const Rollout = "rollout"

// Known release tracks. Custom track names are also accepted by the
// remote service, so these are advisory rather than an allow-list.
var Known = []string{"internal", "alpha", "beta", "production", Rollout}

// IsKnown reports whether name is one of the standard tracks.
func IsKnown(name string) bool {
	for _, t := range Known {
		if t == name {
			return true
		}
	}
	return false
}

// Update is the payload for a track update. UserFraction is carried only
// for the rollout track.
type Update struct {
	Track        string  `json:"track"`
	VersionCodes []int64 `json:"versionCodes"`
	UserFraction float64 `json:"userFraction,omitempty"`
}

// Validate checks a track name and rollout fraction combination.
// A fraction of 0 means "not supplied".
func Validate(name string, fraction float64) error {
	if name == "" {
		return errors.New("track name is required")
	}
	if name == Rollout {
		if fraction <= 0 || fraction > 1 {
			return fmt.Errorf("%w: got %v", ErrBadFraction, fraction)
		}
		return nil
	}
	if fraction != 0 {
		return fmt.Errorf("%w: track %q, fraction %v", ErrUnexpectedFraction, name, fraction)
	}
	return nil
}

// NewUpdate builds a track update payload. The fraction is dropped for
// non-rollout tracks regardless of what was supplied.
func NewUpdate(name string, codes []int64, fraction float64) Update {
	u := Update{
		Track:        name,
		VersionCodes: codes,
	}
	if name == Rollout {
		u.UserFraction = fraction
	}
	return u
}
