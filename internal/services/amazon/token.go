package amazon

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// tokenSafetyMargin is subtracted from every expiry so a token is never
	// used in the last minute of its life.
	tokenSafetyMargin = 60 * time.Second

	// maxTokenLifetime bounds the TTL regardless of what LWA returns.
	maxTokenLifetime = 3600 * time.Second

	// adoptedTokenLifetime is assumed when a token comes out of the durable
	// cache and the original expiry is unknown.
	adoptedTokenLifetime = 3000 * time.Second
)

// Credentials is one SP-API configuration generation. Immutable once built.
type Credentials struct {
	ClientID      string
	ClientSecret  string
	RefreshToken  string
	MarketplaceID string
}

// Validate requires all four fields before any API call is attempted.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "" || c.MarketplaceID == "" {
		return fmt.Errorf("incomplete SP-API credentials")
	}
	return nil
}

// Fingerprint keys the durable cache slot so a credential change never
// reuses the previous generation's token.
func (c Credentials) Fingerprint() string {
	sum := sha256.Sum256([]byte(c.ClientID + ":" + c.RefreshToken))
	return "lwa:" + hex.EncodeToString(sum[:])
}

// tokenSource exchanges the refresh token for short-lived access tokens and
// caches them in-process plus in the durable slot.
type tokenSource struct {
	creds         Credentials
	tokenEndpoint string
	httpClient    *http.Client
	cache         TokenCache
	logger        *zap.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenSource(creds Credentials, tokenEndpoint string, cache TokenCache, logger *zap.Logger) *tokenSource {
	return &tokenSource{
		creds:         creds,
		tokenEndpoint: tokenEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}
}

// Token returns a valid access token, refreshing only when the in-process
// and durable copies are both unusable. Concurrent callers may race to
// refresh; the extra exchange is wasted but harmless, last write wins.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiresAt.Add(-tokenSafetyMargin)) {
		return s.token, nil
	}

	if cached, ok := s.cache.Get(s.creds.Fingerprint()); ok {
		s.token = cached
		s.expiresAt = time.Now().Add(adoptedTokenLifetime)
		return s.token, nil
	}

	token, expiresIn, err := s.refresh(ctx)
	if err != nil {
		return "", &AuthError{Err: err}
	}

	lifetime := time.Duration(expiresIn) * time.Second
	if lifetime <= 0 || lifetime > maxTokenLifetime {
		lifetime = maxTokenLifetime
	}
	ttl := lifetime - tokenSafetyMargin

	s.token = token
	s.expiresAt = time.Now().Add(lifetime)
	s.cache.Set(s.creds.Fingerprint(), token, ttl)

	s.logger.Debug("access token refreshed", zap.Duration("ttl", ttl))
	return s.token, nil
}

// Invalidate drops both token copies. Must be called whenever credentials
// change.
func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.expiresAt = time.Time{}
	s.cache.Delete(s.creds.Fingerprint())
}

func (s *tokenSource) refresh(ctx context.Context) (string, int, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", s.creds.RefreshToken)
	data.Set("client_id", s.creds.ClientID)
	data.Set("client_secret", s.creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", 0, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", 0, fmt.Errorf("token response missing access_token")
	}

	return tokenResp.AccessToken, tokenResp.ExpiresIn, nil
}
