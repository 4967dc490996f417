package amazon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testCreds() Credentials {
	return Credentials{
		ClientID:      "client-1",
		ClientSecret:  "secret-1",
		RefreshToken:  "refresh-1",
		MarketplaceID: "ATVPDKIKX0DER",
	}
}

func newTokenServer(t *testing.T, calls *int32, expiresIn int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "refresh-1", r.FormValue("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":%d}`, atomic.LoadInt32(calls), expiresIn)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTokenReusedWhileValid(t *testing.T) {
	var calls int32
	server := newTokenServer(t, &calls, 3600)

	source := newTokenSource(testCreds(), server.URL, NewMemoryTokenCache(), zap.NewNop())

	first, err := source.Token(context.Background())
	assert.NoError(t, err)
	second, err := source.Token(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTokenRefreshedAfterExpiry(t *testing.T) {
	var calls int32
	// 30s is inside the 60s safety margin, so the token expires immediately
	// in both the in-process and durable copies.
	server := newTokenServer(t, &calls, 30)

	source := newTokenSource(testCreds(), server.URL, NewMemoryTokenCache(), zap.NewNop())

	first, err := source.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	second, err := source.Token(context.Background())
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenAdoptedFromDurableCache(t *testing.T) {
	var calls int32
	server := newTokenServer(t, &calls, 3600)

	creds := testCreds()
	cache := NewMemoryTokenCache()
	cache.Set(creds.Fingerprint(), "cached-token", time.Minute)

	source := newTokenSource(creds, server.URL, cache, zap.NewNop())

	token, err := source.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "cached-token", token)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestInvalidateForcesRefresh(t *testing.T) {
	var calls int32
	server := newTokenServer(t, &calls, 3600)

	cache := NewMemoryTokenCache()
	source := newTokenSource(testCreds(), server.URL, cache, zap.NewNop())

	first, err := source.Token(context.Background())
	assert.NoError(t, err)

	source.Invalidate()

	second, err := source.Token(context.Background())
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenRefreshFailureIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	source := newTokenSource(testCreds(), server.URL, NewMemoryTokenCache(), zap.NewNop())

	_, err := source.Token(context.Background())
	assert.Error(t, err)

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
}

func TestFingerprintChangesWithCredentials(t *testing.T) {
	a := testCreds()
	b := testCreds()
	b.RefreshToken = "refresh-2"

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), testCreds().Fingerprint())
}

func TestCredentialsValidate(t *testing.T) {
	assert.NoError(t, testCreds().Validate())

	incomplete := testCreds()
	incomplete.ClientSecret = ""
	assert.Error(t, incomplete.Validate())
}

func TestMemoryTokenCacheExpiry(t *testing.T) {
	cache := NewMemoryTokenCache()

	cache.Set("live", "value", time.Minute)
	value, ok := cache.Get("live")
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	cache.Set("expired", "value", -time.Second)
	_, ok = cache.Get("expired")
	assert.False(t, ok)

	cache.Delete("live")
	_, ok = cache.Get("live")
	assert.False(t, ok)
}
