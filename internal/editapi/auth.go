package editapi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// publishScope is the OAuth scope required for edit operations.
const publishScope = "https://www.googleapis.com/auth/androidpublisher"

// serviceAccountKey is the subset of a service-account JSON key file the
// client needs for the two-legged OAuth flow.
type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// TokenSourceFromFile builds an OAuth2 token source from a service-account
// key file. Any problem here is an *AuthError: credentials are validated
// before the first remote call is made.
func TokenSourceFromFile(ctx context.Context, path string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("read credentials file: %w", err)}
	}

	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, &AuthError{Err: fmt.Errorf("parse credentials file %s: %w", path, err)}
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, &AuthError{Err: fmt.Errorf("credentials file %s is missing client_email or private_key", path)}
	}

	cfg := &jwt.Config{
		Email:      key.ClientEmail,
		PrivateKey: []byte(key.PrivateKey),
		TokenURL:   key.TokenURI,
		Scopes:     []string{publishScope},
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = "https://oauth2.googleapis.com/token"
	}

	return cfg.TokenSource(ctx), nil
}
