package config

import "testing"

func TestMatchPatterns(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		value    string
		want     bool
	}{
		{"empty list allows", nil, "anything", true},
		{"regex match", []string{`^v\d+`}, "v1.2.3", true},
		{"regex miss", []string{`^v\d+`}, "main", false},
		{"or logic", []string{"^main$", "^develop$"}, "develop", true},
		{"negation excludes", []string{`^v`, `!^v0\.`}, "v0.1.0", false},
		{"negation passes others", []string{`^v`, `!^v0\.`}, "v1.0.0", true},
		{"exclude only allows rest", []string{`!^wip/`}, "feature/x", true},
		{"invalid regex literal fallback", []string{`re(`}, "re(", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchPatterns(tt.patterns, tt.value); got != tt.want {
				t.Errorf("MatchPatterns(%v, %q) = %v, want %v", tt.patterns, tt.value, got, tt.want)
			}
		})
	}
}

func TestResolvePatterns(t *testing.T) {
	policies := map[string]string{"prerelease": `^v\d+\.\d+\.\d+-.+$`}

	got := ResolvePatterns([]string{"prerelease", "!prerelease", `^raw$`}, policies)
	want := []string{`^v\d+\.\d+\.\d+-.+$`, `!^v\d+\.\d+\.\d+-.+$`, `^raw$`}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resolved[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMatchPatternsWithPolicy(t *testing.T) {
	policies := DefaultPolicies()

	if !MatchPatternsWithPolicy([]string{"prerelease"}, "v1.2.3-rc1", policies) {
		t.Error("prerelease policy should match v1.2.3-rc1")
	}
	if MatchPatternsWithPolicy([]string{"prerelease"}, "v1.2.3", policies) {
		t.Error("prerelease policy should not match v1.2.3")
	}
	if !MatchPatternsWithPolicy([]string{"stable"}, "v1.2.3", policies) {
		t.Error("stable policy should match v1.2.3")
	}
}
