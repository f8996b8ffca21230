// Package trigger decides which pipelines an incoming push event starts.
//
// Policy: every push selects the `on: push` pipelines; a tag push whose ref
// is a semantic version with a prerelease suffix (or matches the pipeline's
// `when` patterns) additionally selects the `on: tag` pipelines. A ref that
// matches nothing is a valid no-op, not an error.
package trigger

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/slipway-ci/slipway/src/config"
	"github.com/slipway-ci/slipway/src/event"
)

// Plan is one selected pipeline.
type Plan struct {
	Name     string
	Pipeline config.PipelineConfig
}

// Evaluate returns the pipelines the event should start, sorted by name for
// stable execution order. An empty result means nothing runs.
func Evaluate(cfg *config.Config, ev event.Event) []Plan {
	var plans []Plan

	for name, p := range cfg.Pipelines {
		if selected(cfg, p, ev) {
			plans = append(plans, Plan{Name: name, Pipeline: p})
		}
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].Name < plans[j].Name })
	return plans
}

func selected(cfg *config.Config, p config.PipelineConfig, ev event.Event) bool {
	switch p.On {
	case config.OnPush:
		// A tag push is still a push.
		return true
	case config.OnTag:
		if ev.Kind != event.TagPush {
			return false
		}
		return tagMatches(cfg, p, ev.Ref)
	}
	return false
}

// tagMatches gates `on: tag` pipelines. With no `when` clause the default
// gate applies: the tag must be a valid semver with a prerelease suffix.
func tagMatches(cfg *config.Config, p config.PipelineConfig, tag string) bool {
	if len(p.When) == 0 {
		return IsPrereleaseTag(tag)
	}
	return config.MatchPatternsWithPolicy(p.When, tag, cfg.Policies)
}

// IsPrereleaseTag reports whether tag parses as a semantic version carrying
// a prerelease suffix, e.g. "v1.2.3-rc1".
func IsPrereleaseTag(tag string) bool {
	v, err := semver.StrictNewVersion(trimV(tag))
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

func trimV(tag string) string {
	if len(tag) > 0 && tag[0] == 'v' {
		return tag[1:]
	}
	return tag
}
