package config

import (
	"fmt"
	"regexp"
)

// credentialRefRe is the shape of a valid credential env var prefix.
// Anything outside this is either a typo or an inlined secret.
var credentialRefRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Validate checks structural requirements across all pipelines.
func (c *Config) Validate() error {
	for name, p := range c.Pipelines {
		if err := p.validate(); err != nil {
			return fmt.Errorf("pipeline %q: %w", name, err)
		}
	}
	return nil
}

func (p PipelineConfig) validate() error {
	switch p.On {
	case OnPush, OnTag:
	case "":
		return fmt.Errorf("missing `on` trigger (push or tag)")
	default:
		return fmt.Errorf("unknown trigger %q (want push or tag)", p.On)
	}

	if len(p.Stages) == 0 {
		return fmt.Errorf("no stages declared")
	}
	for i, s := range p.Stages {
		if s.Name == "" {
			return fmt.Errorf("stage %d: missing name", i+1)
		}
		if len(s.Command) == 0 {
			return fmt.Errorf("stage %q: empty command", s.Name)
		}
	}

	for i, t := range p.Publish {
		if t.IndexURL == "" {
			return fmt.Errorf("publish target %d: missing index_url", i+1)
		}
		if t.Credentials == "" {
			return fmt.Errorf("publish target %d: missing credentials reference", i+1)
		}
		if !credentialRefRe.MatchString(t.Credentials) {
			return fmt.Errorf("publish target %d: credentials %q is not an env var prefix (secrets must never be inlined)", i+1, t.Credentials)
		}
	}

	if len(p.Publish) > 0 && p.On != OnTag {
		return fmt.Errorf("publish targets require `on: tag`")
	}

	return nil
}
