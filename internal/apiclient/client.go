// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package apiclient provides the single HTTP client every Bloomi backend call goes
// through. Two middlewares are installed on it: one attaches the stored bearer
// token to outgoing requests, the other turns non-2xx responses into errors and
// reports 401 responses to the unauthorized hook.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bloomi/cli/internal/authhook"
	"bloomi/cli/internal/credstore"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every request made through the client.
const DefaultTimeout = 30 * time.Second

// HeaderRequestID carries a per-request identifier for backend log correlation.
const HeaderRequestID = "X-Request-Id"

// TokenSource is the part of the credential store the client reads from.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ClearAll(ctx context.Context) error
}

var _ TokenSource = (credstore.Store)(nil)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Store     TokenSource
	Hook      *authhook.Hook
	Logger    *zap.Logger
	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// Client wraps one configured resty client.
type Client struct {
	rc     *resty.Client
	store  TokenSource
	hook   *authhook.Hook
	jar    *resettableJar
	logger *zap.Logger
}

// New constructs the shared client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	if opts.Store == nil {
		return nil, errors.New("apiclient: credential store is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Hook == nil {
		opts.Hook = authhook.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	jar, err := newResettableJar()
	if err != nil {
		return nil, err
	}

	c := &Client{
		store:  opts.Store,
		hook:   opts.Hook,
		jar:    jar,
		logger: opts.Logger.Named("http"),
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetCookieJar(jar).
		SetLogger(c.logger.Sugar())
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}

	rc.OnBeforeRequest(c.attachCredentials)
	rc.OnAfterResponse(c.checkResponse)
	rc.OnError(c.logFailure)

	c.rc = rc
	return c, nil
}

// R starts a request bound to ctx.
func (c *Client) R(ctx context.Context) *resty.Request {
	return c.rc.R().SetContext(ctx)
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.rc.BaseURL
}

// ClearCookies drops every cookie the client has collected, including any
// session cookie set during the browser login handshake.
func (c *Client) ClearCookies(ctx context.Context) error {
	return c.jar.Reset()
}

// attachCredentials adds the request ID and, when a token is stored and the
// caller has not set one explicitly, the bearer Authorization header.
func (c *Client) attachCredentials(_ *resty.Client, r *resty.Request) error {
	if r.Header.Get(HeaderRequestID) == "" {
		r.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if r.Header.Get("Authorization") != "" {
		return nil
	}

	token, err := c.store.Token(r.Context())
	if err != nil {
		// Send without a token; the backend rejects it if it needs one.
		c.logger.Warn("could not read access token", zap.Error(err))
		return nil
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// checkResponse passes 2xx responses through and converts everything else into
// a *StatusError. A 401 additionally notifies the hook, or clears the
// credential store directly when no handler is registered yet.
func (c *Client) checkResponse(_ *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	serr := newStatusError(resp)
	if serr.StatusCode == http.StatusUnauthorized {
		c.logger.Info("access token rejected, ending session",
			zap.String("method", serr.Method),
			zap.String("path", serr.Path))
		if !c.hook.Fire() {
			ctx := context.WithoutCancel(resp.Request.Context())
			if err := c.store.ClearAll(ctx); err != nil {
				c.logger.Error("clear credentials after 401", zap.Error(err))
			} else {
				c.logger.Warn("unauthorized handler not set, cleared stored credentials only")
			}
		}
	}
	return serr
}

// logFailure records transport-level failures; status errors are logged by
// checkResponse and callers.
func (c *Client) logFailure(r *resty.Request, err error) {
	var serr *StatusError
	if errors.As(err, &serr) {
		return
	}
	c.logger.Debug("request failed",
		zap.String("method", r.Method),
		zap.String("url", r.URL),
		zap.Error(err))
}

// Do sends r with the given method and path and returns the response.
func (c *Client) Do(r *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := r.Execute(method, path)
	if err != nil {
		var serr *StatusError
		if errors.As(err, &serr) {
			return resp, serr
		}
		return resp, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
