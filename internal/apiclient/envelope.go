// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package apiclient

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ErrEmptyData is returned when a response envelope carries no data member.
var ErrEmptyData = errors.New("response has no data")

// DecodeData decodes the "data" member of the backend envelope
// ({"success"|"code", "message", "data"}) into out.
func DecodeData(resp *resty.Response, out any) error {
	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("decode response: invalid JSON body")
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return ErrEmptyData
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
