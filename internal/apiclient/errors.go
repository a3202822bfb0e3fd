// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// StatusError is returned for every non-2xx backend response.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	// Message is the backend's "message" field, or the trimmed body.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// newStatusError builds a StatusError from a failed response.
func newStatusError(resp *resty.Response) *StatusError {
	e := &StatusError{StatusCode: resp.StatusCode()}
	if req := resp.Request; req != nil {
		e.Method = req.Method
		e.Path = req.URL
		if u, err := url.Parse(req.URL); err == nil && u.Path != "" {
			e.Path = u.Path
		}
	}

	body := resp.Body()
	if gjson.ValidBytes(body) {
		e.Message = gjson.GetBytes(body, "message").String()
	}
	if e.Message == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		e.Message = msg
	}
	return e
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return HasStatus(err, http.StatusUnauthorized)
}

// HasStatus reports whether err is a StatusError with the given code.
func HasStatus(err error, code int) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.StatusCode == code
}
