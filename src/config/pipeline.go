package config

// TriggerKind names the event class a pipeline reacts to.
type TriggerKind string

const (
	OnPush TriggerKind = "push" // every push, branches and tags alike
	OnTag  TriggerKind = "tag"  // tag pushes whose ref passes the when clause
)

// PipelineConfig declares one pipeline: its trigger, optional matrix,
// ordered stages, and publish targets.
type PipelineConfig struct {
	On TriggerKind `yaml:"on"`

	// When holds tag patterns (policy names or inline regexes) gating
	// `on: tag` pipelines. Empty means "any valid prerelease semver tag".
	When []string `yaml:"when"`

	Matrix  MatrixConfig   `yaml:"matrix"`
	Stages  []StageConfig  `yaml:"stages"`
	Publish []TargetConfig `yaml:"publish"`
}

// MatrixConfig enumerates the build matrix axes. The cross-product of the
// axes becomes the cell list; empty axes collapse to a single cell.
type MatrixConfig struct {
	OS   []string `yaml:"os"`
	Tool []string `yaml:"tool"`
}

// StageConfig is a single named step of a pipeline.
type StageConfig struct {
	Name       string            `yaml:"name"`
	Command    []string          `yaml:"command"`
	BestEffort bool              `yaml:"best_effort"`
	Env        map[string]string `yaml:"env"`
	WorkDir    string            `yaml:"workdir"`
}

// TargetConfig associates an upload destination with a credential reference.
// Credentials is an env var prefix (e.g. "TEST_PYPI" resolves to
// TEST_PYPI_TOKEN at publish time); the secret itself never appears here.
type TargetConfig struct {
	IndexURL    string `yaml:"index_url"`
	Credentials string `yaml:"credentials"`
}

// DefaultLintPipeline mirrors a plain lint-on-push setup.
func DefaultLintPipeline() PipelineConfig {
	return PipelineConfig{
		On: OnPush,
		Stages: []StageConfig{
			{Name: "deps", Command: []string{"python", "-m", "pip", "install", "flake8"}},
			{Name: "flake8", Command: []string{"flake8", "."}, BestEffort: true},
		},
	}
}

// DefaultReleasePipeline builds distributions and publishes them to the
// test index on prerelease tags.
func DefaultReleasePipeline() PipelineConfig {
	return PipelineConfig{
		On:   OnTag,
		When: []string{"prerelease"},
		Matrix: MatrixConfig{
			Tool: []string{"3.10", "3.11", "3.12"},
		},
		Stages: []StageConfig{
			{Name: "deps", Command: []string{"python", "-m", "pip", "install", "build"}},
			{Name: "build", Command: []string{"python", "-m", "build"}},
		},
		Publish: []TargetConfig{
			{IndexURL: "https://test.pypi.org/legacy/", Credentials: "TEST_PYPI"},
		},
	}
}

// DefaultPolicies returns the built-in named tag patterns.
func DefaultPolicies() map[string]string {
	return map[string]string{
		"prerelease": `^v\d+\.\d+\.\d+-.+$`,
		"stable":     `^v\d+\.\d+\.\d+$`,
	}
}
