package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/config"
)

const (
	// tokenRefreshBuffer is the time before token expiry to trigger refresh
	tokenRefreshBuffer = 30 * time.Second
)

// ErrNoToken is returned when the login endpoint answered without a token.
var ErrNoToken = errors.New("auth: no access token in response")

// AuthManager attaches credentials to outgoing requests. For login auth it
// is the single gate through which tokens are read and renewed: concurrent
// requests that find the token missing or expiring share one renewal.
type AuthManager struct {
	client *Client
	config config.AuthConfig

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	tokenExpiry  time.Time

	renewals singleflight.Group
	now      func() time.Time
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest represents the refresh token request.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// NewAuthManager creates a new authentication manager. Login happens lazily
// on the first authenticated request.
func NewAuthManager(c *Client, cfg config.AuthConfig) (*AuthManager, error) {
	switch cfg.Type {
	case config.AuthNone, "":
	case config.AuthBearer:
		if cfg.Token == "" {
			return nil, fmt.Errorf("bearer auth requires a token")
		}
	case config.AuthLogin:
		if cfg.Login.Endpoint == "" {
			return nil, fmt.Errorf("login auth requires a login endpoint")
		}
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", cfg.Type)
	}

	return &AuthManager{
		client: c,
		config: cfg,
		now:    time.Now,
	}, nil
}

// Authenticate adds authentication to the request and returns the bearer
// token it used.
func (am *AuthManager) Authenticate(ctx context.Context, req *http.Request) (string, error) {
	token, err := am.Token(ctx)
	if err != nil {
		return "", err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return token, nil
}

// Token returns a usable access token, renewing it first when it is missing
// or about to expire.
func (am *AuthManager) Token(ctx context.Context) (string, error) {
	switch am.config.Type {
	case config.AuthBearer:
		return am.config.Token, nil
	case config.AuthLogin:
	default:
		return "", nil
	}

	am.mu.RLock()
	token, valid := am.accessToken, am.validLocked()
	am.mu.RUnlock()
	if valid {
		return token, nil
	}

	return am.renew(ctx)
}

// Refreshable reports whether a rejected token can be renewed.
func (am *AuthManager) Refreshable() bool {
	return am != nil && am.config.Type == config.AuthLogin
}

// Invalidate drops token if it is still the current one, forcing the next
// Token call to renew. Tokens already replaced by a concurrent renewal are
// left alone.
func (am *AuthManager) Invalidate(token string) {
	am.mu.Lock()
	defer am.mu.Unlock()
	if am.accessToken == token {
		am.accessToken = ""
	}
}

// IsAuthenticated returns true if a usable credential is held.
func (am *AuthManager) IsAuthenticated() bool {
	switch am.config.Type {
	case config.AuthLogin:
		am.mu.RLock()
		defer am.mu.RUnlock()
		return am.validLocked()
	case config.AuthBearer, config.AuthNone, "":
		return true
	default:
		return false
	}
}

func (am *AuthManager) validLocked() bool {
	if am.accessToken == "" {
		return false
	}
	if am.tokenExpiry.IsZero() {
		return true
	}
	return am.now().Before(am.tokenExpiry.Add(-tokenRefreshBuffer))
}

// renew refreshes or logs in once for all concurrent callers.
func (am *AuthManager) renew(ctx context.Context) (string, error) {
	ch := am.renewals.DoChan("token", func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		timeout := am.client.httpClient.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		am.mu.RLock()
		if am.validLocked() {
			token := am.accessToken
			am.mu.RUnlock()
			return token, nil
		}
		refresh := am.refreshToken
		am.mu.RUnlock()

		if refresh != "" && am.config.Login.RefreshEndpoint != "" {
			ts, err := am.exchange(rctx, am.config.Login.RefreshEndpoint, RefreshTokenRequest{RefreshToken: refresh})
			if err == nil {
				return am.store(ts), nil
			}
			am.client.logger.Warn("token refresh failed, logging in again", zap.Error(err))
		}

		ts, err := am.exchange(rctx, am.config.Login.Endpoint, LoginRequest{
			Username: am.config.Login.Username,
			Password: am.config.Login.Password,
		})
		if err != nil {
			return "", fmt.Errorf("login failed: %w", err)
		}
		return am.store(ts), nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

type tokenSet struct {
	access  string
	refresh string
	expiry  time.Time
}

func (am *AuthManager) store(ts tokenSet) string {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.accessToken = ts.access
	if ts.refresh != "" {
		am.refreshToken = ts.refresh
	}
	am.tokenExpiry = ts.expiry
	return ts.access
}

func (am *AuthManager) exchange(ctx context.Context, endpoint string, body any) (tokenSet, error) {
	resp, err := am.client.do(ctx, Request{
		Method: http.MethodPost,
		Path:   endpoint,
		Body:   body,
	}, false)
	if err != nil {
		return tokenSet{}, err
	}
	return parseTokenResponse(resp.Body, am.now())
}

// parseTokenResponse accepts the token shapes the merchant API has used:
// optionally wrapped in "data", optionally nested under "token", with
// snake_case or camelCase keys. Without an explicit expiry the JWT exp
// claim is used.
func parseTokenResponse(body []byte, now time.Time) (tokenSet, error) {
	var root map[string]any
	if err := json.Unmarshal(body, &root); err != nil {
		return tokenSet{}, fmt.Errorf("parsing token response: %w", err)
	}
	obj := root
	if data, ok := obj["data"].(map[string]any); ok {
		obj = data
	}
	if nested, ok := obj["token"].(map[string]any); ok {
		obj = nested
	}

	ts := tokenSet{
		access:  getString(obj, "access_token", "accessToken", "token"),
		refresh: getString(obj, "refresh_token", "refreshToken"),
	}
	if ts.access == "" {
		return tokenSet{}, ErrNoToken
	}

	if s := getString(obj, "access_token_expires_at", "accessTokenExpiresAt", "expiresAt", "expires_at"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			ts.expiry = t
		}
	}
	if ts.expiry.IsZero() {
		if secs, ok := getNumber(obj, "expires_in", "expiresIn"); ok && secs > 0 {
			ts.expiry = now.Add(time.Duration(secs * float64(time.Second)))
		}
	}
	if ts.expiry.IsZero() {
		ts.expiry = jwtExpiry(ts.access)
	}
	return ts, nil
}

// jwtExpiry reads the exp claim without verifying the signature; the token
// is only inspected to schedule renewal.
func jwtExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func getString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func getNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
