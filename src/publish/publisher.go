// Package publish uploads build artifacts to a remote package index using
// per-target credentials resolved from the environment. Secret values are
// never written to config, logs, or errors — only their env var names.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/slipway-ci/slipway/src/artifact"
)

// Target associates an upload destination with a credential reference.
type Target struct {
	IndexURL    string
	Credentials string // env var prefix; the token lives in <prefix>_TOKEN
}

// CredentialVar returns the env var name the target's token is read from.
func (t Target) CredentialVar() string {
	return t.Credentials + "_TOKEN"
}

// Result records one artifact upload attempt.
type Result struct {
	Artifact string
	Target   string
	OK       bool
	Duration time.Duration
	Err      error
}

// Publisher uploads artifacts over HTTP.
type Publisher struct {
	Client  *http.Client
	Verbose bool
	Stderr  io.Writer

	// LookupEnv resolves credential references; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// NewPublisher creates a publisher with a default HTTP client.
func NewPublisher(verbose bool) *Publisher {
	return &Publisher{
		Client:  &http.Client{Timeout: 5 * time.Minute},
		Verbose: verbose,
		Stderr:  os.Stderr,
	}
}

// Publish uploads each artifact to the target in order. The credential is
// resolved before any network call; if it is missing an
// *AuthenticationError returns with zero requests made. The first fatal
// error halts remaining uploads — nothing is retried, and a duplicate
// version is terminal. Results for completed attempts are always returned.
func (p *Publisher) Publish(ctx context.Context, target Target, artifacts []artifact.Artifact) ([]Result, error) {
	lookup := p.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	token, ok := lookup(target.CredentialVar())
	if !ok || token == "" {
		return nil, &AuthenticationError{Target: target.IndexURL, Ref: target.CredentialVar()}
	}

	if p.Verbose {
		fmt.Fprintf(p.stderr(), "publish: %s (credentials from %s)\n", target.IndexURL, target.CredentialVar())
	}

	var results []Result
	for _, a := range artifacts {
		start := time.Now()
		err := p.upload(ctx, target, token, a)
		results = append(results, Result{
			Artifact: a.File,
			Target:   target.IndexURL,
			OK:       err == nil,
			Duration: time.Since(start),
			Err:      err,
		})
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// upload performs one multipart POST in the legacy index upload format.
func (p *Publisher) upload(ctx context.Context, target Target, token string, a artifact.Artifact) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return &UploadError{Target: target.IndexURL, Artifact: a.File, Err: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		":action":          "file_upload",
		"protocol_version": "1",
		"name":             a.Name,
		"version":          a.Version,
		"filetype":         filetype(a.Kind),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return &UploadError{Target: target.IndexURL, Artifact: a.File, Err: err}
		}
	}
	part, err := w.CreateFormFile("content", a.File)
	if err != nil {
		return &UploadError{Target: target.IndexURL, Artifact: a.File, Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return &UploadError{Target: target.IndexURL, Artifact: a.File, Err: err}
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.IndexURL, &buf)
	if err != nil {
		return &UploadError{Target: target.IndexURL, Artifact: a.File, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth("__token__", token)

	resp, err := p.client().Do(req)
	if err != nil {
		return &UploadError{Target: target.IndexURL, Artifact: a.File, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthenticationError{
			Target: target.IndexURL,
			Ref:    target.CredentialVar(),
			Err:    fmt.Errorf("server returned %d", resp.StatusCode),
		}
	case isDuplicate(resp.StatusCode, body):
		return &UploadError{Target: target.IndexURL, Artifact: a.File, Status: resp.StatusCode, Duplicate: true}
	default:
		return &UploadError{
			Target:   target.IndexURL,
			Artifact: a.File,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}
}

// isDuplicate detects the index's duplicate-version rejection. Indexes
// answer 400 or 409 with a "file already exists" style message.
func isDuplicate(status int, body []byte) bool {
	if status == http.StatusConflict {
		return true
	}
	if status != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(string(body))
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}

func filetype(kind artifact.Kind) string {
	if kind == artifact.Wheel {
		return "bdist_wheel"
	}
	return "sdist"
}

func (p *Publisher) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func (p *Publisher) stderr() io.Writer {
	if p.Stderr != nil {
		return p.Stderr
	}
	return os.Stderr
}
