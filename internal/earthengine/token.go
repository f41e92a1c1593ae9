package earthengine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope requested for all Earth Engine access tokens.
const scope = "https://www.googleapis.com/auth/earthengine"

// assertionLifetime is the validity claimed in the signed assertion.
const assertionLifetime = time.Hour

// expirySkew refreshes tokens slightly before the service would reject them.
const expirySkew = time.Minute

// tokenSource exchanges a signed service-account assertion for bearer
// tokens and caches the result until shortly before expiry. A rejected
// exchange fails the request that needed it; there is no retry loop.
type tokenSource struct {
	creds      *Credentials
	httpClient HTTPDoer
	now        func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(creds *Credentials, httpClient HTTPDoer) *tokenSource {
	return &tokenSource{
		creds:      creds,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns a valid bearer token, refreshing if the cached one is
// expired or about to expire.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expiry.Add(-expirySkew)) {
		return ts.token, nil
	}

	token, expiry, err := ts.exchange(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiry = expiry
	return token, nil
}

// exchange signs the assertion and posts it to the token endpoint.
func (ts *tokenSource) exchange(ctx context.Context) (string, time.Time, error) {
	issued := ts.now()

	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   ts.creds.ClientEmail,
		"scope": scope,
		"aud":   ts.creds.TokenURI,
		"iat":   issued.Unix(),
		"exp":   issued.Add(assertionLifetime).Unix(),
	})
	signed, err := assertion.SignedString(ts.creds.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {signed},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.creds.TokenURI,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("%w: token endpoint returned status %d",
			ErrAuthRejected, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", time.Time{}, fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty access token", ErrAuthRejected)
	}

	return body.AccessToken, issued.Add(time.Duration(body.ExpiresIn) * time.Second), nil
}
