package store

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Matcher applies a Query pattern to keys.
// Backends that can scan by key prefix use Prefix to narrow the scan
// and Match to filter what it finds,
// so every backend agrees on the pattern dialect.
type Matcher struct {
	re *regexp.Regexp

	// Prefix is a string that every matching key begins with.
	// It is empty unless the pattern is anchored with ^.
	Prefix string
}

// Compile parses a Query pattern.
func Compile(pattern string) (*Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling query pattern %q", pattern)
	}
	return &Matcher{re: re, Prefix: literalPrefix(pattern)}, nil
}

// Match tells whether key matches the pattern.
func (m *Matcher) Match(key string) bool {
	return strings.HasPrefix(key, m.Prefix) && m.re.MatchString(key)
}

// Filter returns the matching members of keys, sorted.
func (m *Matcher) Filter(keys []string) []string {
	var out []string
	for _, k := range keys {
		if m.Match(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

const metachars = `\.+*?()|[]{}^$`

// literalPrefix finds the literal text that begins every match of an anchored pattern.
// It is conservative: when in doubt it stops early.
func literalPrefix(pattern string) string {
	if !strings.HasPrefix(pattern, "^") || strings.Contains(pattern, "|") {
		return ""
	}
	var (
		runes = []rune(pattern[1:])
		out   []rune
	)
	for i := 0; i < len(runes); {
		var (
			r    = runes[i]
			next int
		)
		switch {
		case r == '\\':
			if i+1 >= len(runes) || !isPunct(runes[i+1]) {
				return string(out)
			}
			r, next = runes[i+1], i+2

		case strings.ContainsRune(metachars, r):
			return string(out)

		default:
			next = i + 1
		}
		if next < len(runes) && strings.ContainsRune("*?+{", runes[next]) {
			// The last literal is optional or repeated.
			return string(out)
		}
		out = append(out, r)
		i = next
	}
	return string(out)
}

func isPunct(r rune) bool {
	return r < 0x80 && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9')
}
