// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"encoding/base64"
	"strings"
)

// secretPrefix marks values written base64-encoded. `security -w` prints
// passwords containing non-ASCII bytes as hex, so raw UTF-8 such as a
// profile with a Hangul name would not read back as written.
const secretPrefix = "b64:"

func encodeSecret(data []byte) string {
	return secretPrefix + base64.StdEncoding.EncodeToString(data)
}

// decodeSecret reverses encodeSecret. Values without the prefix were written
// as plain ASCII and are returned unchanged.
func decodeSecret(s string) ([]byte, error) {
	rest, ok := strings.CutPrefix(s, secretPrefix)
	if !ok {
		return []byte(s), nil
	}
	return base64.StdEncoding.DecodeString(rest)
}
