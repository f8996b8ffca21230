// Package vet enforces the credentials-by-reference rule: configuration
// may name where a secret lives, never the secret itself.
package vet

import (
	"fmt"
	"os"

	"github.com/slipway-ci/slipway/src/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// Finding is one suspected inlined secret or malformed credential reference.
type Finding struct {
	File        string
	Line        int
	Rule        string
	Description string
}

// Scanner wraps a gitleaks detector for config vetting.
type Scanner struct {
	detector *detect.Detector
}

// NewScanner creates a scanner with the default gitleaks ruleset.
func NewScanner() (*Scanner, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("initializing secret detector: %w", err)
	}
	return &Scanner{detector: d}, nil
}

// ScanFile runs secret detection over a single file's contents.
func (s *Scanner) ScanFile(path string) ([]Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	hits := s.detector.DetectBytes(data)
	if len(hits) == 0 {
		return nil, nil
	}

	findings := make([]Finding, 0, len(hits))
	for _, h := range hits {
		findings = append(findings, Finding{
			File:        path,
			Line:        h.StartLine + 1, // gitleaks is 0-indexed
			Rule:        h.RuleID,
			Description: h.Description,
		})
	}
	return findings, nil
}

// CheckEnvBlocks flags stage env values that trip secret detection.
// Stage env is for tool versions and paths, not tokens.
func (s *Scanner) CheckEnvBlocks(cfg *config.Config) []Finding {
	var findings []Finding
	for name, p := range cfg.Pipelines {
		for _, stage := range p.Stages {
			for k, v := range stage.Env {
				hits := s.detector.DetectBytes([]byte(fmt.Sprintf("%s=%s", k, v)))
				for _, h := range hits {
					findings = append(findings, Finding{
						File:        fmt.Sprintf("pipeline %s, stage %s", name, stage.Name),
						Rule:        h.RuleID,
						Description: fmt.Sprintf("env %s: %s", k, h.Description),
					})
				}
			}
		}
	}
	return findings
}
