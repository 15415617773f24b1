// Package oauth talks to the content providers' authorization servers.
// It builds outbound authorization URLs and exchanges callback codes for
// tokens; it never stores or encrypts anything itself.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/recallmail/recall/internal/domain"
	"github.com/recallmail/recall/internal/platform/config"
	"github.com/recallmail/recall/internal/platform/retry"
)

// ExchangeResult is what the callback handler needs from a completed
// code exchange. Token material is plaintext here; the caller encrypts it
// before persistence.
type ExchangeResult struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	Expiry       time.Time
}

// Client is the provider-facing contract consumed by the HTTP layer.
type Client interface {
	AuthCodeURL(source domain.SourceType, state string) (string, error)
	Exchange(ctx context.Context, source domain.SourceType, code string) (*ExchangeResult, error)
}

// ProviderClient implements Client over the configured providers.
type ProviderClient struct {
	registry map[domain.SourceType]*oauth2.Config
}

func NewProviderClient(cfg *config.Config) *ProviderClient {
	return &ProviderClient{registry: providerRegistry(cfg)}
}

// Configured reports whether credentials exist for the given source.
func (c *ProviderClient) Configured(source domain.SourceType) bool {
	_, ok := c.registry[source]
	return ok
}

// AuthCodeURL builds the outbound authorization redirect. offline access
// and a forced consent prompt ensure Google hands back a refresh token on
// reconnect, not only on first grant.
func (c *ProviderClient) AuthCodeURL(source domain.SourceType, state string) (string, error) {
	conf, ok := c.registry[source]
	if !ok {
		return "", fmt.Errorf("no oauth client configured for source %s", source)
	}
	return conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// exchangePolicy bounds retries against flaky provider token endpoints.
// Authorization codes are single-use, so a retried exchange after a 5xx
// either succeeds or comes back as a permanent 4xx.
var exchangePolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 200 * time.Millisecond,
}

// transientExchange treats provider 5xx responses and transport errors
// as retryable. A 4xx means the code or credentials are bad and another
// attempt cannot succeed.
func transientExchange(err error) bool {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return rerr.Response.StatusCode >= 500
	}
	return true
}

// Exchange trades a callback authorization code for provider tokens.
func (c *ProviderClient) Exchange(ctx context.Context, source domain.SourceType, code string) (*ExchangeResult, error) {
	conf, ok := c.registry[source]
	if !ok {
		return nil, fmt.Errorf("no oauth client configured for source %s", source)
	}

	token, err := retry.Do(ctx, exchangePolicy, transientExchange, func() (*oauth2.Token, error) {
		return conf.Exchange(ctx, code)
	})
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	return &ExchangeResult{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        grantedScope(conf, token),
		Expiry:       token.Expiry,
	}, nil
}

// grantedScope prefers the scope echoed back by the provider, falling
// back to what was requested.
func grantedScope(conf *oauth2.Config, token *oauth2.Token) string {
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		return scope
	}
	return strings.Join(conf.Scopes, " ")
}
