package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// DefaultSensitiveKeys name the log fields that carry contract text.
var DefaultSensitiveKeys = []string{"text", "content", "clause_text", "excerpt", "matched"}

// Redactor keeps confidential contract text out of logs. Values of
// sensitive keys are replaced by their length; email addresses in other
// string values are masked.
type Redactor struct {
	keys     map[string]bool
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// PatternEmail names the email address pattern.
const PatternEmail = "email"

// NewRedactor creates a Redactor for DefaultSensitiveKeys plus extraKeys.
// Keys are compared case-insensitively.
func NewRedactor(extraKeys []string) *Redactor {
	r := &Redactor{keys: make(map[string]bool)}
	for _, k := range DefaultSensitiveKeys {
		r.keys[k] = true
	}
	for _, k := range extraKeys {
		r.keys[strings.ToLower(k)] = true
	}

	r.patterns = []*redactPattern{
		{
			name:        PatternEmail,
			regex:       regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
			replacement: "[email]",
		},
	}
	return r
}

// IsSensitiveKey reports whether values logged under key are redacted.
func (r *Redactor) IsSensitiveKey(key string) bool {
	return r.keys[strings.ToLower(key)]
}

// RedactString masks email addresses in a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr redacts one attribute, descending into groups.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	}

	if r.IsSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedValue(v))
	}
	if v.Kind() == slog.KindString {
		return slog.String(a.Key, r.RedactString(v.String()))
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// RedactArgs redacts variadic log arguments in key, value form.
func (r *Redactor) RedactArgs(args ...any) []any {
	out := make([]any, len(args))
	copy(out, args)
	for i := 1; i < len(out); i += 2 {
		key, ok := out[i-1].(string)
		if !ok {
			continue
		}
		if r.IsSensitiveKey(key) {
			out[i] = redactedValue(slog.AnyValue(out[i]))
			continue
		}
		if s, ok := out[i].(string); ok {
			out[i] = r.RedactString(s)
		}
	}
	return out
}

func redactedValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return fmt.Sprintf("[redacted %d bytes]", len(v.String()))
	}
	return "[redacted]"
}
