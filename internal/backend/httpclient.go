// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	"bloomi/cli/internal/apiclient"

	"github.com/tidwall/gjson"
)

// Endpoint paths on the Bloomi backend.
const (
	PathMe           = "/auth/me"
	PathLogout       = "/auth/logout"
	PathAnalyze      = "/api/v1/meal/analyze"
	PathMealsByDate  = "/api/v1/meal/{date}"
	PathMonthlyStats = "/api/v1/meal/monthly/{yearMonth}"
	PathVersion      = "/api/version"
	PathOAuthStart   = "/oauth2/authorization/{provider}"
)

// HTTP implements API over REST endpoints.
type HTTP struct {
	client *apiclient.Client
}

// newHTTP creates a backend bound to the shared client.
func newHTTP(client *apiclient.Client) *HTTP {
	return &HTTP{client: client}
}

// GetVersion calls GET /api/version and returns the version string when available.
// No authentication required. This can be used to check connectivity to the backend service.
func (h *HTTP) GetVersion(ctx context.Context) (string, error) {
	resp, err := h.client.Do(h.client.R(ctx), http.MethodGet, PathVersion)
	if err != nil {
		return "", err
	}
	body := resp.Body()
	for _, path := range []string{"data.version", "version"} {
		if v := gjson.GetBytes(body, path).String(); v != "" {
			return v, nil
		}
	}
	return "unknown", nil
}
