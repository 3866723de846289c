package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/5amCurfew/tap-oracle-oic/models"
	log "github.com/sirupsen/logrus"
)

// expiryBuffer is subtracted from the issued lifetime so a token is refreshed
// before IDCS actually rejects it.
const expiryBuffer = 5 * time.Minute

// defaultExpiresIn applies when the token response omits expires_in.
const defaultExpiresIn = 3600 * time.Second

// TokenManager fetches and caches a single OAuth2 client-credentials bearer
// token. The cache holds at most one token; a refresh unconditionally
// replaces the prior entry. All access is serialized by the mutex so
// concurrent callers never race a refresh against an invalidation.
type TokenManager struct {
	mutex        sync.Mutex
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	audience     string

	token     string
	expiresAt time.Time

	now func() time.Time
}

func NewTokenManager(config *models.TapConfig, httpClient *http.Client) *TokenManager {
	return &TokenManager{
		httpClient:   httpClient,
		tokenURL:     config.OAuthTokenURL,
		clientID:     config.OAuthClientID,
		clientSecret: config.OAuthClientSecret,
		scope:        config.OAuthScope,
		audience:     config.OAuthAudience,
		now:          time.Now,
	}
}

// Token returns the cached token while it is still valid, otherwise fetches
// a fresh one from the IDCS token endpoint.
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	if tm.token != "" && tm.now().Before(tm.expiresAt) {
		return tm.token, nil
	}

	return tm.fetch(ctx)
}

// Invalidate clears the cache so the next Token call fetches a fresh token.
// Called after an API response returns 401.
func (tm *TokenManager) Invalidate() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.token = ""
	tm.expiresAt = time.Time{}
}

func (tm *TokenManager) fetch(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if tm.scope != "" {
		form.Set("scope", tm.scope)
	}
	if tm.audience != "" {
		form.Set("audience", tm.audience)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &Error{Kind: KindAuthentication, Endpoint: tm.tokenURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(tm.clientID, tm.clientSecret)

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindAuthentication, Endpoint: tm.tokenURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindAuthentication, Endpoint: tm.tokenURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Kind:       KindAuthentication,
			StatusCode: resp.StatusCode,
			Endpoint:   tm.tokenURL,
			Body:       truncateBody(body),
		}
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResponse); err != nil || tokenResponse.AccessToken == "" {
		return "", &Error{
			Kind:       KindAuthentication,
			StatusCode: resp.StatusCode,
			Endpoint:   tm.tokenURL,
			Body:       truncateBody(body),
			Err:        err,
		}
	}

	expiresIn := defaultExpiresIn
	if tokenResponse.ExpiresIn > 0 {
		expiresIn = time.Duration(tokenResponse.ExpiresIn) * time.Second
	}

	tm.token = tokenResponse.AccessToken
	tm.expiresAt = tm.now().Add(expiresIn - expiryBuffer)

	log.WithFields(log.Fields{"expires_at": tm.expiresAt.UTC().Format(time.RFC3339)}).Debug("fetched new access token")
	return tm.token, nil
}
