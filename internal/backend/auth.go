// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"bloomi/cli/internal/apiclient"
	"bloomi/cli/internal/model"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// GetMe calls GET /auth/me. The backend either returns the profile directly in
// "data" or wraps it together with a token as {"accessToken", "user"}.
func (h *HTTP) GetMe(ctx context.Context) (*model.User, error) {
	resp, err := h.client.Do(h.client.R(ctx), http.MethodGet, PathMe)
	if err != nil {
		return nil, err
	}

	data := gjson.GetBytes(resp.Body(), "data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, apiclient.ErrEmptyData
	}
	raw := data.Raw
	if u := data.Get("user"); u.IsObject() {
		raw = u.Raw
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if user.ID == "" {
		return nil, errors.New("profile has no id")
	}
	return &user, nil
}

// Logout calls POST /auth/logout with the given token.
func (h *HTTP) Logout(ctx context.Context, accessToken string) error {
	req := h.client.R(ctx)
	if accessToken != "" {
		req.SetHeader("Authorization", "Bearer "+accessToken)
	}
	_, err := h.client.Do(req, http.MethodPost, PathLogout)
	return err
}

// DeleteAccount calls DELETE /auth/me.
func (h *HTTP) DeleteAccount(ctx context.Context) error {
	_, err := h.client.Do(h.client.R(ctx), http.MethodDelete, PathMe)
	return err
}

// LoginURL builds the provider authorization URL. The "state=mobile" marker
// tells the backend to finish with a redirect carrying token and user instead
// of setting a web session.
func (h *HTTP) LoginURL(provider, redirectURI string) string {
	q := url.Values{}
	q.Set("state", "mobile")
	if redirectURI != "" {
		q.Set("redirect_uri", redirectURI)
	}
	path := strings.Replace(PathOAuthStart, "{provider}", url.PathEscape(provider), 1)
	return h.client.BaseURL() + path + "?" + q.Encode()
}
