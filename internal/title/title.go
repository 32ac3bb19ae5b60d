// Package title allocates identifiers for processing units.
//
// A title id names the output directory a processed container publishes to,
// and directory identity is the only isolation between concurrently processed
// uploads. Ids therefore combine a timestamp and source-derived slug (for
// operators reading the output root) with a random suffix (for uniqueness).
package title

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxSlugLen = 40

// NewID derives a collision-free title id from an uploaded filename.
func NewID(filename string, now time.Time) string {
	parts := []string{
		now.UTC().Format("20060102-150405"),
	}
	if slug := Slug(filename); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, uuid.NewString()[:8])
	return strings.Join(parts, "-")
}

// Slug reduces a filename to a directory-safe fragment: the basename without
// extension, lowercased, with every other rune collapsed to hyphens.
func Slug(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	b.Grow(len(stem))
	lastHyphen := true
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}
