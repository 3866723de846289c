package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/5amCurfew/tap-oracle-oic/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client performs authenticated GET requests against the OIC REST APIs.
// Every call carries a bearer token from the TokenManager; a 401 invalidates
// the cached token and the whole operation is retried exactly once.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        *TokenManager
	limiter       *rate.Limiter
	failOnParsing bool
	// maxRetries is accepted from config for compatibility; only the single
	// 401 re-authentication retry is implemented at this layer.
	maxRetries int
}

func New(config *models.TapConfig) (*Client, error) {
	baseURL := config.ResolvedBaseURL()
	if baseURL == "" {
		return nil, &Error{Kind: KindConfig, Err: errMissingBaseURL}
	}

	httpClient := &http.Client{Timeout: time.Duration(config.RequestTimeout) * time.Second}

	var limiter *rate.Limiter
	if rps := config.RateLimit(); rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &Client{
		baseURL:       baseURL,
		httpClient:    httpClient,
		tokens:        NewTokenManager(config, httpClient),
		limiter:       limiter,
		failOnParsing: config.FailOnParsing(),
		maxRetries:    config.MaxRetries,
	}, nil
}

// Tokens exposes the token manager for the connectivity probe.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// Get issues an authenticated GET and returns the decoded JSON body along
// with the request's wall-clock latency. A nil body with a nil error means a
// malformed page was skipped (fail_on_parsing_errors=false).
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (interface{}, time.Duration, error) {
	return c.get(ctx, path, params, true)
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, retryOn401 bool) (interface{}, time.Duration, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, &Error{Kind: KindAPI, Endpoint: path, Err: err}
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, &Error{Kind: KindAPI, Endpoint: path, Err: err}
	}

	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, &Error{Kind: KindAPI, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, elapsed, &Error{Kind: KindAPI, StatusCode: resp.StatusCode, Endpoint: path, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.tokens.Invalidate()
		if retryOn401 {
			log.WithFields(log.Fields{"endpoint": path}).Info("401 received, refreshing token and retrying once")
			return c.get(ctx, path, params, false)
		}
		return nil, elapsed, &Error{Kind: KindAuthentication, StatusCode: resp.StatusCode, Endpoint: path, Body: truncateBody(body)}
	case resp.StatusCode == http.StatusForbidden:
		return nil, elapsed, &Error{Kind: KindAuthorization, StatusCode: resp.StatusCode, Endpoint: path, Body: truncateBody(body)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, elapsed, &Error{Kind: KindRateLimit, StatusCode: resp.StatusCode, Endpoint: path, Body: truncateBody(body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, elapsed, &Error{Kind: KindAPI, StatusCode: resp.StatusCode, Endpoint: path, Body: truncateBody(body)}
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if c.failOnParsing {
			return nil, elapsed, &Error{Kind: KindParsing, StatusCode: resp.StatusCode, Endpoint: path, Body: truncateBody(body), Err: err}
		}
		log.WithFields(log.Fields{"endpoint": path, "error": err}).Warn("malformed JSON body, skipping page")
		return nil, elapsed, nil
	}

	return data, elapsed, nil
}
