// Package pipeline executes an ordered stage sequence, stopping at the
// first non-best-effort failure.
package pipeline

import "github.com/slipway-ci/slipway/src/config"

// Stage is a single resolved step: a command plus execution context.
// Insertion order is execution order.
type Stage struct {
	Name       string
	Command    []string
	BestEffort bool
	Env        map[string]string
	WorkDir    string
}

// FromConfig converts declared stages into resolved ones.
func FromConfig(stages []config.StageConfig) []Stage {
	out := make([]Stage, len(stages))
	for i, s := range stages {
		out[i] = Stage{
			Name:       s.Name,
			Command:    s.Command,
			BestEffort: s.BestEffort,
			Env:        s.Env,
			WorkDir:    s.WorkDir,
		}
	}
	return out
}
