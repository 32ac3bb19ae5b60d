// Package lang normalizes container language tags for use in artifact
// filenames.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Und is the sentinel tag applied to streams without a language tag.
const Und = "und"

// Normalize canonicalizes a container language tag. Missing or unusable tags
// collapse to the "und" sentinel; recognized tags are canonicalized to their
// BCP 47 base form (e.g. "jpn" becomes "ja"). The result is safe to embed in
// an artifact filename: it only ever contains lowercase letters, digits, and
// hyphens.
func Normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || tag == Und {
		return Und
	}

	if parsed, err := language.Parse(tag); err == nil {
		if base, confidence := parsed.Base(); confidence > language.No {
			return base.String()
		}
	}

	sanitized := sanitize(tag)
	if sanitized == "" {
		return Und
	}
	return sanitized
}

// sanitize strips everything a filename convention cannot carry. Container
// metadata is attacker-controlled, so path separators and glob metacharacters
// must never survive into an artifact name.
func sanitize(tag string) string {
	var b strings.Builder
	b.Grow(len(tag))
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
