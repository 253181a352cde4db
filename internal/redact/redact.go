// Package redact scrubs credentials and other sensitive fragments from strings
// before they are logged or returned to clients. Handshake URLs carry bearer
// tokens in their query string, so anything derived from a request URL or a
// driver error should pass through here first.
package redact

import (
	"net/url"
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

// sensitiveParams are query parameters whose values are never logged.
var sensitiveParams = []string{"token", "access_token", "password", "secret"}

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules run in order; the JWT rule precedes the key rule so a token=eyJ...
// fragment is reported as a JWT.
var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql|redis|amqp)://[^@\s]+@`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), RedactedJWTPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{
		regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\w,*().=$']+\b(FROM|INTO|SET|WHERE)\b[\s\w,*().=$']*`),
		RedactedSQLPlaceholder,
	},
	{regexp.MustCompile(`(/[\w.-]+){3,}`), RedactedPathPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// URL renders u with sensitive query parameter values replaced and any
// userinfo password removed.
func URL(u *url.URL) string {
	if u == nil {
		return ""
	}

	clean := *u
	if clean.User != nil {
		if _, hasPassword := clean.User.Password(); hasPassword {
			clean.User = url.UserPassword(clean.User.Username(), RedactionPlaceholder)
		}
	}

	query := clean.Query()
	changed := false
	for _, name := range sensitiveParams {
		if query.Has(name) {
			query.Set(name, RedactionPlaceholder)
			changed = true
		}
	}
	if changed {
		clean.RawQuery = query.Encode()
	}
	return clean.String()
}
