// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package deeplink parses the login callback the backend redirects to once the
// identity provider handshake finishes. The callback arrives either through the
// custom URL scheme (bloomi://auth/callback?token=...&user=...) or through the loopback
// listener started by `bloomi login` (http://127.0.0.1:PORT/callback?...).
// Both carry the same query parameters.
package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"bloomi/cli/internal/model"

	"github.com/goccy/go-json"
)

// Query parameter names used by the backend redirect.
const (
	ParamToken = "token"
	ParamUser  = "user"
	ParamError = "error"
)

// ErrNotCallback is returned for URLs that carry none of the callback parameters.
var ErrNotCallback = errors.New("not a login callback")

// ProviderError reports an "error" parameter returned by the provider or backend.
type ProviderError struct {
	Code string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Code)
}

// Callback is a successfully parsed login redirect.
type Callback struct {
	Token string
	User  model.User
}

// Parse extracts credentials from a callback URL. The user parameter is
// URL-encoded JSON; url.Values already undoes one level of encoding and a
// second level is tolerated because some providers double-encode.
func Parse(raw string) (Callback, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Callback{}, fmt.Errorf("parse callback URL: %w", err)
	}
	q := u.Query()

	if code := q.Get(ParamError); code != "" {
		return Callback{}, &ProviderError{Code: code}
	}

	token := strings.TrimSpace(q.Get(ParamToken))
	userParam := q.Get(ParamUser)
	if token == "" && userParam == "" {
		return Callback{}, ErrNotCallback
	}
	if token == "" {
		return Callback{}, errors.New("callback is missing the token parameter")
	}
	if userParam == "" {
		return Callback{}, errors.New("callback is missing the user parameter")
	}

	var user model.User
	if err := json.Unmarshal([]byte(userParam), &user); err != nil {
		decoded, uerr := url.QueryUnescape(userParam)
		if uerr != nil {
			return Callback{}, fmt.Errorf("decode user: %w", err)
		}
		if err := json.Unmarshal([]byte(decoded), &user); err != nil {
			return Callback{}, fmt.Errorf("decode user: %w", err)
		}
	}
	return Callback{Token: token, User: user}, nil
}

// Build renders a callback URL rooted at base. It is the inverse of Parse.
func Build(base string, cb Callback) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(cb.User)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(ParamToken, cb.Token)
	q.Set(ParamUser, string(b))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SchemeURL returns the custom-scheme redirect URI registered with the
// backend, e.g. "bloomi://auth/callback".
func SchemeURL(scheme string) string {
	return scheme + "://auth/callback"
}
