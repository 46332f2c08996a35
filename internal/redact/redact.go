// Package redact finds and masks credentials that editors paste into
// evidence text or source URLs by accident.
package redact

import (
	"net/url"
	"regexp"
	"strings"
)

const mask = "[REDACTED]"

var patterns []*regexp.Regexp

func init() {
	raw := []string{
		// AWS access key IDs
		`AKIA[0-9A-Z]{16}`,
		// Private key blocks
		`-----BEGIN [A-Z ]+PRIVATE KEY-----[\s\S]*?-----END [A-Z ]+PRIVATE KEY-----`,
		// Bearer tokens
		`Bearer\s+[A-Za-z0-9\-._~+/]+=*`,
		// Generic key/secret/token/password assignments
		`(?i)(api[_-]?key|api[_-]?secret|secret[_-]?key|token|password|passwd|credentials)\s*[:=]\s*[^\s&]+`,
	}
	for _, r := range raw {
		patterns = append(patterns, regexp.MustCompile(r))
	}
}

// sensitiveParams are query parameters that carry credentials in share links.
var sensitiveParams = []string{"token", "access_token", "key", "api_key", "apikey", "secret", "password", "sig", "signature"}

// Text replaces secret patterns in text with [REDACTED].
func Text(text string) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, mask)
	}
	return text
}

// URL masks user info and credential query parameters in a source URL.
// Strings that do not parse as absolute URLs fall back to Text.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Text(raw)
	}
	if u.User != nil {
		u.User = url.User(mask)
	}
	if u.RawQuery != "" {
		q := u.Query()
		masked := false
		for k := range q {
			if isSensitiveParam(k) {
				q.Set(k, mask)
				masked = true
			}
		}
		if masked {
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}

// HasSecret reports whether text or URL redaction would change s.
func HasSecret(s string) bool {
	if Text(s) != s {
		return true
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	if u.User != nil {
		return true
	}
	for k := range u.Query() {
		if isSensitiveParam(k) {
			return true
		}
	}
	return false
}

func isSensitiveParam(k string) bool {
	k = strings.ToLower(k)
	for _, p := range sensitiveParams {
		if k == p {
			return true
		}
	}
	return false
}
