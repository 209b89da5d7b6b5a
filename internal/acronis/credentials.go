// Package acronis talks to the backup platform: it owns the bearer token
// lifecycle and reads alert and resource information.
package acronis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const tokenPath = "api/2/idp/token"

// RefreshThreshold is the minimum remaining lifetime a token must have
// before an authenticated call; below it a refresh is due.
const RefreshThreshold = 900 * time.Second

// Credential is a bearer token and the instant it expires.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// CredentialManager issues and tracks the bearer token used by Client. It
// implements restclient.TokenSource so clients always see the latest token.
type CredentialManager struct {
	oauth      clientcredentials.Config
	httpClient *http.Client
	clock      clock.Clock
	logger     logrus.FieldLogger

	current atomic.Value // Credential
}

// Option customises a CredentialManager.
type Option func(*CredentialManager)

// WithClock replaces the wall clock used for expiry arithmetic.
func WithClock(c clock.Clock) Option {
	return func(m *CredentialManager) { m.clock = c }
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *CredentialManager) {
		if hc != nil {
			m.httpClient = hc
		}
	}
}

// NewCredentialManager returns a manager holding no token. baseURL must end
// with a slash.
func NewCredentialManager(baseURL, clientID, clientSecret string, logger logrus.FieldLogger, opts ...Option) *CredentialManager {
	m := &CredentialManager{
		oauth: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     baseURL + tokenPath,
			// id and secret are form-encoded before going into the Basic header.
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		httpClient: http.DefaultClient,
		clock:      clock.New(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(Credential{})
	return m
}

// Credential returns the token and expiry as one consistent pair.
func (m *CredentialManager) Credential() Credential {
	return m.current.Load().(Credential)
}

// Token returns the current bearer token, possibly empty or expired.
func (m *CredentialManager) Token() string {
	return m.Credential().Token
}

// Remaining is the lifetime left on the current token.
func (m *CredentialManager) Remaining() time.Duration {
	return m.Credential().ExpiresAt.Sub(m.clock.Now())
}

// EnsureValid refreshes the token when less than RefreshThreshold remains.
// A failed refresh is logged and the previous token is kept; callers then
// see authorization failures from the API.
func (m *CredentialManager) EnsureValid(ctx context.Context) {
	remaining := m.Remaining()
	if remaining >= RefreshThreshold {
		return
	}
	m.logger.WithField("remaining", remaining.Round(time.Second)).Debug("Token refresh due")
	if err := m.Refresh(ctx); err != nil {
		m.logger.WithError(err).Warn("Token refresh failed, keeping previous token")
	}
}

// Refresh performs the client-credentials exchange and replaces the token
// and its expiry together on success.
func (m *CredentialManager) Refresh(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	tok, err := m.oauth.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	expiresAt := tok.Expiry
	if t, ok := unixTime(tok.Extra("expires_on")); ok {
		expiresAt = t
	}
	m.current.Store(Credential{Token: tok.AccessToken, ExpiresAt: expiresAt})
	m.logger.WithField("expires_at", expiresAt.UTC().Format(time.RFC3339)).Info("Issued backup platform token")
	return nil
}

// unixTime converts an expires_on value in unix seconds.
func unixTime(v interface{}) (time.Time, bool) {
	var secs float64
	switch x := v.(type) {
	case float64:
		secs = x
	case int64:
		secs = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		secs = f
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return time.Time{}, false
		}
		secs = f
	default:
		return time.Time{}, false
	}
	whole := math.Floor(secs)
	return time.Unix(int64(whole), int64((secs-whole)*float64(time.Second))), true
}
