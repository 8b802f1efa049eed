package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// ScopeSpreadsheets is the OAuth scope for reading and writing sheets.
const ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"

// StaticTokenSource returns a fixed token. Used in tests and with
// pre-minted tokens.
type StaticTokenSource string

func (s StaticTokenSource) Token(_ context.Context) (string, error) {
	return string(s), nil
}

type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ServiceAccountTokenSource mints access tokens from a Google service
// account key file via the JWT bearer grant. Tokens are cached until close
// to expiry; the pipeline is single-worker, so no locking is needed.
type ServiceAccountTokenSource struct {
	key    serviceAccountKey
	scopes []string
	http   *http.Client

	token   string
	expires time.Time
}

// NewServiceAccountTokenSource loads a service account key from path.
func NewServiceAccountTokenSource(path string, scopes ...string) (*ServiceAccountTokenSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheets: read credentials %s", path)
	}

	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, eris.Wrap(err, "sheets: parse credentials")
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, eris.New("sheets: credentials missing client_email or private_key")
	}
	if key.TokenURI == "" {
		key.TokenURI = "https://oauth2.googleapis.com/token"
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeSpreadsheets}
	}

	return &ServiceAccountTokenSource{
		key:    key,
		scopes: scopes,
		http:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Token returns a cached access token, minting a fresh one when within a
// minute of expiry.
func (s *ServiceAccountTokenSource) Token(ctx context.Context) (string, error) {
	if s.token != "" && time.Until(s.expires) > time.Minute {
		return s.token, nil
	}

	assertion, err := s.assertion()
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.key.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "sheets: create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "sheets: token request")
	}
	defer resp.Body.Close() //nolint:errcheck

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", eris.Wrap(err, "sheets: decode token response")
	}
	if resp.StatusCode != http.StatusOK || result.AccessToken == "" {
		return "", eris.Errorf("sheets: token exchange failed (status %d, error %q)", resp.StatusCode, result.Error)
	}

	s.token = result.AccessToken
	s.expires = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	return s.token, nil
}

func (s *ServiceAccountTokenSource) assertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.key.PrivateKey))
	if err != nil {
		return "", eris.Wrap(err, "sheets: parse private key")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.key.ClientEmail,
		"scope": strings.Join(s.scopes, " "),
		"aud":   s.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", eris.Wrap(err, "sheets: sign assertion")
	}
	return signed, nil
}
