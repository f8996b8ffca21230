package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/slipway-ci/slipway/src/config"
	"github.com/slipway-ci/slipway/src/event"
	"github.com/slipway-ci/slipway/src/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Pipelines: map[string]config.PipelineConfig{
			"lint": {
				On:     config.OnPush,
				Stages: []config.StageConfig{{Name: "lint", Command: []string{"true"}}},
			},
			"release": {
				On:     config.OnTag,
				When:   []string{"prerelease"},
				Stages: []config.StageConfig{{Name: "build", Command: []string{"true"}}},
			},
		},
		Policies: config.DefaultPolicies(),
	}
}

type runRecorder struct {
	mu    sync.Mutex
	calls []event.Event
	done  chan struct{}
}

func (r *runRecorder) run(ctx context.Context, ev event.Event, plans []trigger.Plan) {
	r.mu.Lock()
	r.calls = append(r.calls, ev)
	r.mu.Unlock()
	close(r.done)
}

func postEvent(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleEventTagPush(t *testing.T) {
	recorder := &runRecorder{done: make(chan struct{})}
	srv := &Server{Cfg: testConfig(), Run: recorder.run}

	rec := postEvent(t, srv, `{"ref": "refs/tags/v1.2.3-rc1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Ref       string   `json:"ref"`
		Kind      string   `json:"kind"`
		Pipelines []string `json:"pipelines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "v1.2.3-rc1", resp.Ref)
	assert.Equal(t, "tag", resp.Kind)
	assert.Equal(t, []string{"lint", "release"}, resp.Pipelines)

	select {
	case <-recorder.done:
	case <-time.After(time.Second):
		t.Fatal("run func never invoked")
	}
	assert.Equal(t, "v1.2.3-rc1", recorder.calls[0].Ref)
}

// A ref selecting nothing is still accepted: trigger mismatch is a no-op.
func TestHandleEventNoMatch(t *testing.T) {
	cfg := testConfig()
	delete(cfg.Pipelines, "lint")
	srv := &Server{Cfg: cfg, Run: func(context.Context, event.Event, []trigger.Plan) {
		t.Error("run func invoked with empty plan")
	}}

	rec := postEvent(t, srv, `{"ref": "refs/heads/main"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Pipelines []string `json:"pipelines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Pipelines)
}

func TestHandleEventBadPayload(t *testing.T) {
	srv := &Server{Cfg: testConfig()}

	assert.Equal(t, http.StatusBadRequest, postEvent(t, srv, `{not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postEvent(t, srv, `{"kind": "push"}`).Code)
}

func TestHealthz(t *testing.T) {
	srv := &Server{Cfg: testConfig()}
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
