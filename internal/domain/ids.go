package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// NewOrderNumber returns a human-facing order reference, ORD-XXXXXXXX.
func NewOrderNumber() string {
	return "ORD-" + shortRef(8)
}

// NewBatchNumber returns a batch reference, B-XXXXXXXX.
func NewBatchNumber() string {
	return "B-" + shortRef(8)
}

func shortRef(n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(hex[:n])
}

// Slugify lowercases the name and collapses everything non-alphanumeric
// into single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SlugSuffix returns a short random suffix used to disambiguate slug
// collisions.
func SlugSuffix() string {
	return strings.ToLower(shortRef(4))
}
