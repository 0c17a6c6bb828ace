package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const (
	docPrefix   = "wcsdoc"
	indexPrefix = "wcsdoc:idx"
	maxIDText   = 160
)

// DocumentKey identifies a rendered document for an ordered id list under a
// given catalog revision.
func DocumentKey(revision uint64, ids []string) string {
	joined := strings.Join(trimAll(ids), ",")
	safe := sanitizeID(joined)
	if len(safe) > maxIDText {
		safe = safe[:maxIDText]
	}
	return fmt.Sprintf("%s:r%d:%s:h=%016x", docPrefix, revision, safe, xxhash.Sum64String(joined))
}

// CoverageIndexKey names the set of document keys that mention a coverage.
func CoverageIndexKey(id string) string {
	return indexPrefix + ":" + sanitizeID(strings.TrimSpace(id))
}

func trimAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.TrimSpace(id)
	}
	return out
}

func sanitizeID(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '.' || r == ',':
			out = r
		default:
			out = '-'
		}
		if out == '-' && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
