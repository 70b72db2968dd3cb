package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/config"
)

func loginConfig() config.AuthConfig {
	return config.AuthConfig{
		Type: config.AuthLogin,
		Login: config.LoginConfig{
			Endpoint:        "/Auth/login",
			RefreshEndpoint: "/Auth/refresh",
			Username:        "merchant@example.com",
			Password:        "secret",
		},
	}
}

// TestBearerAuth tests the static bearer token.
func TestBearerAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer static-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c, err := New(config.APIConfig{BaseURL: server.URL}, config.AuthConfig{Type: config.AuthBearer, Token: "static-token"})
	require.NoError(t, err)
	require.NotNil(t, c.AuthManager())
	assert.True(t, c.AuthManager().IsAuthenticated())
	assert.False(t, c.AuthManager().Refreshable())

	_, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/Categories"})
	require.NoError(t, err)

	_, err = New(config.APIConfig{BaseURL: server.URL}, config.AuthConfig{Type: config.AuthBearer})
	assert.Error(t, err)
}

// TestLoginAuth tests lazy login and token reuse.
func TestLoginAuth(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.HandleFunc("/Auth/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&logins, 1)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username != "merchant@example.com" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":{"access_token":"access-1","refresh_token":"refresh-1","access_token_expires_at":"` +
			time.Now().Add(time.Hour).UTC().Format(time.RFC3339) + `"}}}`))
	})
	mux.HandleFunc("/Categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Run("SuccessfulLogin", func(t *testing.T) {
		c, err := New(config.APIConfig{BaseURL: server.URL}, loginConfig())
		require.NoError(t, err)
		assert.False(t, c.AuthManager().IsAuthenticated())

		for i := 0; i < 3; i++ {
			_, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/Categories"})
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&logins))
		assert.True(t, c.AuthManager().IsAuthenticated())
	})

	t.Run("FailedLogin", func(t *testing.T) {
		cfg := loginConfig()
		cfg.Login.Password = "wrong"
		c, err := New(config.APIConfig{BaseURL: server.URL}, cfg)
		require.NoError(t, err)

		_, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/Categories"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "login failed")
	})
}

// TestConcurrentRefreshIsShared tests that concurrent requests share one login.
func TestConcurrentRefreshIsShared(t *testing.T) {
	var logins int32
	gate := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/Auth/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&logins, 1)
		<-gate
		_, _ = w.Write([]byte(`{"accessToken":"shared","expiresIn":3600}`))
	})
	mux.HandleFunc("/Categories", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer shared", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(config.APIConfig{BaseURL: server.URL}, loginConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/Categories"})
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&logins))
}

// TestUnauthorizedReplay tests that a rejected token is refreshed and the request replayed once.
func TestUnauthorizedReplay(t *testing.T) {
	var refreshes, calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/Auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"accessToken":"stale","refreshToken":"r-1"}`))
	})
	mux.HandleFunc("/Auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		var req RefreshTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "r-1", req.RefreshToken)
		_, _ = w.Write([]byte(`{"accessToken":"fresh"}`))
	})
	mux.HandleFunc("/Categories", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(config.APIConfig{BaseURL: server.URL}, loginConfig())
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/Categories"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestUnauthorizedNotReplayedTwice tests that a second 401 is returned to the caller.
func TestUnauthorizedNotReplayedTwice(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/Auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"never-accepted"}`))
	})
	mux.HandleFunc("/Categories", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c, err := New(config.APIConfig{BaseURL: server.URL}, loginConfig())
	require.NoError(t, err)

	_, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/Categories"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Authentication failed", err.Error())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestParseTokenResponse tests the accepted token response shapes.
func TestParseTokenResponse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	exp := now.Add(15 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix(), "sub": "merchant"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        string
		wantAccess  string
		wantRefresh string
		wantExpiry  time.Time
		wantErr     bool
	}{
		{
			name:        "nested snake case",
			body:        `{"data":{"token":{"access_token":"a","refresh_token":"r","access_token_expires_at":"2026-03-01T13:00:00Z"}}}`,
			wantAccess:  "a",
			wantRefresh: "r",
			wantExpiry:  time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
		},
		{
			name:       "camel case with expires in",
			body:       `{"accessToken":"a","expiresIn":60}`,
			wantAccess: "a",
			wantExpiry: now.Add(time.Minute),
		},
		{
			name:       "jwt exp claim",
			body:       `{"token":"` + signed + `"}`,
			wantAccess: signed,
			wantExpiry: exp,
		},
		{
			name:       "opaque token",
			body:       `{"token":"opaque"}`,
			wantAccess: "opaque",
		},
		{
			name:    "no token",
			body:    `{"success":true}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := parseTokenResponse([]byte(tt.body), now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccess, ts.access)
			assert.Equal(t, tt.wantRefresh, ts.refresh)
			assert.True(t, tt.wantExpiry.Equal(ts.expiry), "expiry %v", ts.expiry)
		})
	}
}

// TestTokenExpiry tests renewal ahead of expiry.
func TestTokenExpiry(t *testing.T) {
	am := &AuthManager{config: loginConfig(), now: time.Now}
	am.accessToken = "a"
	am.tokenExpiry = time.Now().Add(10 * time.Second)
	assert.False(t, am.IsAuthenticated(), "token inside refresh buffer")

	am.tokenExpiry = time.Now().Add(time.Hour)
	assert.True(t, am.IsAuthenticated())

	am.Invalidate("other")
	assert.True(t, am.IsAuthenticated())
	am.Invalidate("a")
	assert.False(t, am.IsAuthenticated())
}
