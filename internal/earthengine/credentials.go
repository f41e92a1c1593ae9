// Package earthengine provides an authenticated client for the Google
// Earth Engine REST API.
package earthengine

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Environment variables for the service-account credential.
const (
	// CredentialEnv holds the service-account JSON, raw or base64-encoded.
	CredentialEnv = "GEE_SERVICE_ACCOUNT_JSON"

	// CredentialFileEnv holds a path to the service-account JSON file.
	// Checked only when CredentialEnv is unset.
	CredentialFileEnv = "GEE_SERVICE_ACCOUNT_FILE"
)

// Predefined credential errors.
var (
	// ErrNoCredential means no credential was configured at all. The
	// service stays up in an unauthenticated state; every data endpoint
	// reports the condition instead of serving.
	ErrNoCredential = errors.New("no Earth Engine credential configured")

	// ErrInvalidCredential means a credential was configured but could
	// not be parsed. Terminal for the session, same as ErrNoCredential.
	ErrInvalidCredential = errors.New("invalid Earth Engine credential")
)

// Credentials is a parsed Google service-account key.
type Credentials struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`

	key *rsa.PrivateKey
}

// LoadCredentials reads the service-account credential from the
// environment. Returns ErrNoCredential when neither variable is set.
func LoadCredentials() (*Credentials, error) {
	if raw := os.Getenv(CredentialEnv); raw != "" {
		blob := []byte(raw)
		if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
			blob = decoded
		}
		return ParseCredentials(blob)
	}

	if path := os.Getenv(CredentialFileEnv); path != "" {
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidCredential, path, err)
		}
		return ParseCredentials(blob)
	}

	return nil, ErrNoCredential
}

// ParseCredentials parses and validates a service-account JSON blob.
func ParseCredentials(blob []byte) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(blob, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if creds.ClientEmail == "" {
		return nil, fmt.Errorf("%w: missing client_email", ErrInvalidCredential)
	}
	if creds.PrivateKey == "" {
		return nil, fmt.Errorf("%w: missing private_key", ErrInvalidCredential)
	}
	if creds.TokenURI == "" {
		creds.TokenURI = "https://oauth2.googleapis.com/token"
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrInvalidCredential, err)
	}
	creds.key = key

	return &creds, nil
}
