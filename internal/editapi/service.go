// Package editapi talks to the remote edit store: the transactional API
// that groups listing, artifact and track changes into a single edit
// finalized by a commit call.
package editapi

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/stagehand-cli/stagehand/internal/track"
)

// Edit is one open transaction on the remote service. Expiry is advisory;
// the service reaps uncommitted edits on its own schedule.
type Edit struct {
	ID     string    `json:"id"`
	Expiry time.Time `json:"expiryTime"`
}

// Listing is the localized store-facing description for one language.
// A nil field is omitted from the patch: partial listings are valid
// partial updates.
type Listing struct {
	Language         string  `json:"language"`
	Title            *string `json:"title,omitempty"`
	ShortDescription *string `json:"shortDescription,omitempty"`
	FullDescription  *string `json:"fullDescription,omitempty"`
	Video            *string `json:"video,omitempty"`
}

// Changelog is the release-notes text for one version code and language.
type Changelog struct {
	VersionCode int64  `json:"versionCode"`
	Language    string `json:"language"`
	Text        string `json:"text"`
}

// Service is the capability surface the publish pipeline needs from the
// remote edit store. Every call is a single logical remote operation
// scoped to the package bound at client construction.
type Service interface {
	// CreateEdit opens a new edit transaction.
	CreateEdit(ctx context.Context) (*Edit, error)

	// GetTrack returns the current state of a release track.
	GetTrack(ctx context.Context, editID, trackName string) (*track.Update, error)

	// UpdateTrack assigns version codes (and, for rollout, a user
	// fraction) to a release track within the edit.
	UpdateTrack(ctx context.Context, editID string, upd track.Update) (*track.Update, error)

	// UploadArtifact streams one binary artifact into the edit and
	// returns the version code the service derived from it.
	UploadArtifact(ctx context.Context, editID string, artifact io.Reader) (int64, error)

	// PatchListing applies a partial listing update for one language.
	PatchListing(ctx context.Context, editID string, listing Listing) error

	// PatchChangelog applies release notes for one version code and
	// language.
	PatchChangelog(ctx context.Context, editID string, cl Changelog) error

	// UploadImage streams one image into a listing slot and returns the
	// image ID assigned by the service.
	UploadImage(ctx context.Context, editID, language, slot string, image io.Reader) (string, error)

	// Commit finalizes the edit, making every change in it live.
	Commit(ctx context.Context, editID string) error

	// Abort discards the edit. The default pipeline never calls this on
	// failure; open edits are left to expire.
	Abort(ctx context.Context, editID string) error
}

// APIError is a non-2xx response from the edit store.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("edit store returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("edit store returned HTTP %d: %s", e.Status, e.Message)
}

// AuthError means the configured credentials could not be loaded or
// exchanged. It is raised before any remote call is attempted.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authorization failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
