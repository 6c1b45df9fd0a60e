// Package strings normalizes the string lists carried by forms and
// configuration.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value and drops blanks and repeats, keeping the
// first occurrence order.
//
//	DedupeAndTrim([]string{" PG ", "", "PG", "REDIS"}) // []string{"PG", "REDIS"}
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// NormalizeEmails is DedupeAndTrim for addresses: matching ignores case,
// so each address is also lowercased.
//
//	NormalizeEmails([]string{"Jean@Agence.fr", "jean@agence.fr "}) // []string{"jean@agence.fr"}
func NormalizeEmails(emails []string) []string {
	return dedupe(emails, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
