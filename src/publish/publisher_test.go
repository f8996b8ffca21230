package publish

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/slipway-ci/slipway/src/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact(t *testing.T, name string) artifact.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("archive bytes"), 0o644))
	return artifact.Artifact{
		Path:    path,
		File:    name,
		Name:    "pkg",
		Version: "1.0.0rc1",
		Kind:    artifact.Sdist,
	}
}

func testPublisher(client *http.Client) *Publisher {
	return &Publisher{Client: client, Stderr: io.Discard}
}

// A missing credential yields AuthenticationError before any network call.
func TestPublishMissingCredential(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	pub := testPublisher(srv.Client())
	pub.LookupEnv = func(string) (string, bool) { return "", false }

	target := Target{IndexURL: srv.URL, Credentials: "TEST_INDEX"}
	results, err := pub.Publish(context.Background(), target, []artifact.Artifact{testArtifact(t, "pkg-1.0.0rc1.tar.gz")})

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "TEST_INDEX_TOKEN", authErr.Ref)
	assert.Empty(t, results)
	assert.Zero(t, requests.Load(), "no network call may happen without a credential")
}

func TestPublishSuccess(t *testing.T) {
	var gotAuth, gotName, gotVersion, gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		gotAuth = user + ":" + pass
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotName = r.FormValue("name")
		gotVersion = r.FormValue("version")
		gotAction = r.FormValue(":action")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub := testPublisher(srv.Client())
	pub.LookupEnv = func(key string) (string, bool) {
		if key == "TEST_INDEX_TOKEN" {
			return "pypi-secret", true
		}
		return "", false
	}

	target := Target{IndexURL: srv.URL, Credentials: "TEST_INDEX"}
	results, err := pub.Publish(context.Background(), target, []artifact.Artifact{testArtifact(t, "pkg-1.0.0rc1.tar.gz")})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.Equal(t, "__token__:pypi-secret", gotAuth)
	assert.Equal(t, "pkg", gotName)
	assert.Equal(t, "1.0.0rc1", gotVersion)
	assert.Equal(t, "file_upload", gotAction)
}

// Publishing the same version twice: the first succeeds, the second is a
// terminal duplicate UploadError.
func TestPublishDuplicateVersionIsTerminal(t *testing.T) {
	var uploads atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uploads.Add(1) == 1 {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("File already exists."))
	}))
	defer srv.Close()

	pub := testPublisher(srv.Client())
	pub.LookupEnv = func(string) (string, bool) { return "tok", true }
	target := Target{IndexURL: srv.URL, Credentials: "TEST_INDEX"}
	a := testArtifact(t, "pkg-1.0.0rc1.tar.gz")

	first, err := pub.Publish(context.Background(), target, []artifact.Artifact{a})
	require.NoError(t, err)
	assert.True(t, first[0].OK, "first attempt's success is unaffected")

	second, err := pub.Publish(context.Background(), target, []artifact.Artifact{a})
	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.True(t, upErr.Duplicate)
	require.Len(t, second, 1)
	assert.False(t, second[0].OK)

	// Exactly two uploads: the duplicate was never retried.
	assert.EqualValues(t, 2, uploads.Load())
}

func TestPublishRejectedCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	pub := testPublisher(srv.Client())
	pub.LookupEnv = func(string) (string, bool) { return "bad-token", true }
	target := Target{IndexURL: srv.URL, Credentials: "PROD_INDEX"}

	_, err := pub.Publish(context.Background(), target, []artifact.Artifact{testArtifact(t, "pkg-1.0.0rc1.tar.gz")})

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	// The error names the env var, never the token value.
	assert.NotContains(t, err.Error(), "bad-token")
}

func TestPublishServerErrorHaltsRemaining(t *testing.T) {
	var uploads atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("index exploded"))
	}))
	defer srv.Close()

	pub := testPublisher(srv.Client())
	pub.LookupEnv = func(string) (string, bool) { return "tok", true }
	target := Target{IndexURL: srv.URL, Credentials: "TEST_INDEX"}

	artifacts := []artifact.Artifact{
		testArtifact(t, "pkg-1.0.0rc1.tar.gz"),
		testArtifact(t, "pkg-1.0.0rc1-py3-none-any.whl"),
	}
	results, err := pub.Publish(context.Background(), target, artifacts)

	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.False(t, upErr.Duplicate)
	assert.Equal(t, http.StatusInternalServerError, upErr.Status)

	// First failure halts: the second artifact was never attempted.
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, uploads.Load())
}

func TestUploadErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &UploadError{Target: "t", Artifact: "a", Err: inner}
	assert.ErrorIs(t, err, inner)
}
