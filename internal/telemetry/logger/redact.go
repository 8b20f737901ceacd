package logger

import (
	"log/slog"
	"regexp"
	"strings"
)

// Key names whose non-empty string values are always redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"bearer",
	"credential",
}

// jwtPattern matches a compact JWS: three base64url segments, header first.
var jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)

// bearerPattern matches an Authorization header value.
var bearerPattern = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`)

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if s != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if r := RedactString(s); r != s {
			return slog.String(a.Key, r)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindAny:
		// errors and Stringers may embed a token, e.g. a URL with ?token=.
		if err, ok := a.Value.Any().(error); ok {
			if r := RedactString(err.Error()); r != err.Error() {
				return slog.String(a.Key, r)
			}
		}
	}
	return a
}

// RedactString masks JWTs and bearer credentials inside s. A JWT keeps its
// first and last three characters as a hint.
func RedactString(s string) string {
	if !strings.Contains(s, "eyJ") && !strings.Contains(strings.ToLower(s), "bearer") {
		return s
	}
	s = bearerPattern.ReplaceAllString(s, "Bearer "+redactedValue)
	return jwtPattern.ReplaceAllStringFunc(s, maskValue)
}

// maskValue keeps a short prefix and suffix of v.
func maskValue(v string) string {
	if len(v) <= 12 {
		return redactedValue
	}
	return v[:3] + "..." + v[len(v)-3:]
}

// IsSensitiveKey reports whether a key name suggests secret content.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range sensitiveKeyPatterns {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether v looks like a credential.
func IsSensitiveValue(v string) bool {
	return jwtPattern.MatchString(v) || bearerPattern.MatchString(v)
}
