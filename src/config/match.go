package config

import (
	"regexp"
	"strings"
)

// policyNameRe: pattern tokens that look like plain identifiers are policy
// name lookups, anything else is taken as a regex.
var policyNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.\-]*$`)

// ResolvePatterns replaces policy-name tokens with their regex from the
// policy map. Unknown names and regex tokens pass through untouched, and a
// leading ! survives resolution.
func ResolvePatterns(patterns []string, policies map[string]string) []string {
	if len(patterns) == 0 {
		return nil
	}

	out := make([]string, 0, len(patterns))
	for _, token := range patterns {
		pat, negated := splitNegation(token)
		if policyNameRe.MatchString(pat) {
			if regex, ok := policies[pat]; ok {
				pat = regex
			}
		}
		if negated {
			pat = "!" + pat
		}
		out = append(out, pat)
	}
	return out
}

// MatchPatterns reports whether value passes the pattern list. Patterns
// starting with ! are excludes and win over includes; the rest are includes
// joined by OR. An empty list passes everything, and so does an
// exclude-only list when no exclude fires.
func MatchPatterns(patterns []string, value string) bool {
	if len(patterns) == 0 {
		return true
	}

	hasInclude := false
	included := false
	for _, token := range patterns {
		pat, negated := splitNegation(token)
		hit := matchOne(pat, value)
		if negated {
			if hit {
				return false
			}
			continue
		}
		hasInclude = true
		if hit {
			included = true
		}
	}

	return !hasInclude || included
}

// MatchPatternsWithPolicy resolves policy names first, then matches.
func MatchPatternsWithPolicy(patterns []string, value string, policies map[string]string) bool {
	return MatchPatterns(ResolvePatterns(patterns, policies), value)
}

func splitNegation(token string) (string, bool) {
	if strings.HasPrefix(token, "!") {
		return token[1:], true
	}
	return token, false
}

// matchOne treats the pattern as a regex, falling back to literal
// comparison when it does not compile.
func matchOne(pattern, value string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return pattern == value
	}
	return re.MatchString(value)
}
