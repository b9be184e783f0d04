package util

import "strings"

// Slugify lowercases name and replaces every run of characters outside
// [a-z0-9-] with a single hyphen, trimming leading and trailing hyphens.
// The transform is idempotent: Slugify(Slugify(s)) == Slugify(s).
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(name))
	inRun := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteByte('-')
			inRun = true
		}
	}
	return strings.Trim(b.String(), "-")
}
