// Copyright 2024-2026 Aiku AI

package server

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
)

// The destination webhook URL travels inside the request path as unpadded
// URL-safe base64. This is a capability URL: possession of the encoded
// path segment is the only credential, and the server keeps no mapping
// table.

var base64URLRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsValidBase64URL reports whether s looks like unpadded URL-safe base64.
func IsValidBase64URL(s string) bool {
	return s != "" && base64URLRe.MatchString(s)
}

// DecodeMatrixURL decodes an encoded capability path segment and checks
// that it holds an absolute http(s) destination URL.
func DecodeMatrixURL(encoded string) (string, error) {
	if !IsValidBase64URL(encoded) {
		return "", fmt.Errorf("target is not valid URL-safe base64")
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode target: %w", err)
	}
	target := string(raw)
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("decoded target is not a URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("decoded target %q is not an absolute http(s) URL", target)
	}
	return target, nil
}
