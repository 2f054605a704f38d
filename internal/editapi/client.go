package editapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"github.com/stagehand-cli/stagehand/internal/logging"
	"github.com/stagehand-cli/stagehand/internal/metrics"
	"github.com/stagehand-cli/stagehand/internal/track"
)

// ClientConfig configures the REST client for the edit store.
type ClientConfig struct {
	BaseURL string
	Package string
	Timeout time.Duration

	// CredentialsFile is a service-account JSON key. Empty means
	// unauthenticated requests (useful against local test servers).
	CredentialsFile string
}

// Client implements Service over the edit store's REST surface.
type Client struct {
	http *resty.Client
	pkg  string
	log  *slog.Logger
}

// NewClient builds an edit store client. Credential problems surface here
// as *AuthError, before any remote call.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("edit store base URL is required")
	}
	if cfg.Package == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	base := &http.Client{}
	if cfg.CredentialsFile != "" {
		ts, err := TokenSourceFromFile(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		base = oauth2.NewClient(ctx, ts)
	}

	rc := resty.NewWithClient(base).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http: rc,
		pkg:  cfg.Package,
		log:  logging.Component("editapi"),
	}, nil
}

// apiErrorBody is the error envelope the edit store returns.
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// checkResponse converts a non-2xx response into an *APIError.
func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}

	msg := strings.TrimSpace(resp.String())
	var envelope apiErrorBody
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}

	return &APIError{Status: resp.StatusCode(), Message: msg}
}

func (c *Client) CreateEdit(ctx context.Context) (*Edit, error) {
	var edit Edit
	resp, err := c.observe(ctx, "createEdit", func(req *resty.Request) (*resty.Response, error) {
		return req.SetResult(&edit).
			Post(fmt.Sprintf("/applications/%s/edits", c.pkg))
	})
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	c.log.Debug("edit created", "edit_id", edit.ID, "expiry", edit.Expiry)
	return &edit, nil
}

func (c *Client) GetTrack(ctx context.Context, editID, trackName string) (*track.Update, error) {
	var cur track.Update
	resp, err := c.observe(ctx, "getTrack", func(req *resty.Request) (*resty.Response, error) {
		return req.SetResult(&cur).
			Get(fmt.Sprintf("/applications/%s/edits/%s/tracks/%s", c.pkg, editID, trackName))
	})
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &cur, nil
}

func (c *Client) UpdateTrack(ctx context.Context, editID string, upd track.Update) (*track.Update, error) {
	var committed track.Update
	resp, err := c.observe(ctx, "updateTrack", func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(upd).SetResult(&committed).
			Put(fmt.Sprintf("/applications/%s/edits/%s/tracks/%s", c.pkg, editID, upd.Track))
	})
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	c.log.Info("track updated", "track", upd.Track, "version_codes", upd.VersionCodes)
	return &committed, nil
}

// uploadResponse is the body returned for an artifact upload.
type uploadResponse struct {
	VersionCode int64 `json:"versionCode"`
}

func (c *Client) UploadArtifact(ctx context.Context, editID string, artifact io.Reader) (int64, error) {
	var out uploadResponse
	resp, err := c.observe(ctx, "uploadArtifact", func(req *resty.Request) (*resty.Response, error) {
		return req.SetHeader("Content-Type", "application/octet-stream").
			SetBody(artifact).
			SetResult(&out).
			Post(fmt.Sprintf("/applications/%s/edits/%s/artifacts", c.pkg, editID))
	})
	if err != nil {
		return 0, err
	}
	if err := checkResponse(resp); err != nil {
		return 0, err
	}

	c.log.Info("artifact uploaded", "version_code", out.VersionCode)
	return out.VersionCode, nil
}

func (c *Client) PatchListing(ctx context.Context, editID string, listing Listing) error {
	resp, err := c.observe(ctx, "patchListing", func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(listing).
			Patch(fmt.Sprintf("/applications/%s/edits/%s/listings/%s", c.pkg, editID, listing.Language))
	})
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

func (c *Client) PatchChangelog(ctx context.Context, editID string, cl Changelog) error {
	resp, err := c.observe(ctx, "patchChangelog", func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(map[string]string{"text": cl.Text}).
			Patch(fmt.Sprintf("/applications/%s/edits/%s/changelogs/%d/%s",
				c.pkg, editID, cl.VersionCode, cl.Language))
	})
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// imageResponse is the body returned for an image upload.
type imageResponse struct {
	ID string `json:"id"`
}

func (c *Client) UploadImage(ctx context.Context, editID, language, slot string, image io.Reader) (string, error) {
	var out imageResponse
	resp, err := c.observe(ctx, "uploadImage", func(req *resty.Request) (*resty.Response, error) {
		return req.SetHeader("Content-Type", "application/octet-stream").
			SetBody(image).
			SetResult(&out).
			Post(fmt.Sprintf("/applications/%s/edits/%s/listings/%s/images/%s",
				c.pkg, editID, language, slot))
	})
	if err != nil {
		return "", err
	}
	if err := checkResponse(resp); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Commit(ctx context.Context, editID string) error {
	resp, err := c.observe(ctx, "commit", func(req *resty.Request) (*resty.Response, error) {
		return req.Post(fmt.Sprintf("/applications/%s/edits/%s:commit", c.pkg, editID))
	})
	if err != nil {
		return err
	}
	if err := checkResponse(resp); err != nil {
		return err
	}

	c.log.Info("edit committed", "edit_id", editID)
	return nil
}

func (c *Client) Abort(ctx context.Context, editID string) error {
	resp, err := c.observe(ctx, "abort", func(req *resty.Request) (*resty.Response, error) {
		return req.Delete(fmt.Sprintf("/applications/%s/edits/%s", c.pkg, editID))
	})
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// observe runs one remote call and records its metrics. There is no retry
// here: a transient failure fails the run.
func (c *Client) observe(ctx context.Context, op string, fn func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	start := time.Now()
	resp, err := fn(c.http.R().SetContext(ctx))

	outcome := "ok"
	if err != nil || (resp != nil && resp.IsError()) {
		outcome = "error"
	}
	if m := metrics.Get(); m != nil {
		m.ObserveRemoteCall(op, outcome, time.Since(start).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

var _ Service = (*Client)(nil)
