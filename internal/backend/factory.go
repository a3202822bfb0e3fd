// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bloomi/cli/internal/apiclient"
)

// New creates a backend API implementation over the shared HTTP client.
func New(client *apiclient.Client) API {
	return newHTTP(client)
}
