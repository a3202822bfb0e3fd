// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the client's structured logger and utilities for
// keeping credentials out of log lines and terminal output.
//
// Access tokens travel in Authorization headers, callback query strings and
// JSON bodies; Mask redacts all three shapes.
package logging

import (
	"regexp"
)

var (
	reBearer    = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reQueryTok  = regexp.MustCompile(`(?i)([?&](?:access_?)?token=)([^&\s#]+)`)
	reJSONTok   = regexp.MustCompile(`(?i)("(?:access_?token|token)"\s*:\s*")([^"]*)(")`)
	rePassword  = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reKeyValTok = regexp.MustCompile(`(?i)(^|\s)(token=)([^\s;&]+)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = reBearer.ReplaceAllString(out, "${1}***")
	out = reQueryTok.ReplaceAllString(out, "${1}***")
	out = reJSONTok.ReplaceAllString(out, "${1}***${3}")
	out = rePassword.ReplaceAllString(out, "${1}***")
	out = reKeyValTok.ReplaceAllString(out, "${1}${2}***")
	return out
}
