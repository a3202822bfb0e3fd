// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

var (
	// Version holds the CLI version information.
	// It is set at build time with -ldflags "-X bloomi/cli/cmd.Version=...".
	Version = "0.0.0-dev"
)
