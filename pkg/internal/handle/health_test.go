package handle_test

import (
	"net/http"
	"testing"

	"github.com/yeisme/docchat/pkg/internal/types"
)

func TestHealth(t *testing.T) {
	r := newServer(t, nil)

	w := serve(r, jsonRequest(http.MethodGet, "/health", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	body := decode[map[string]any](t, w)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body %v", body)
	}

	store := decode[types.HealthResponse](t, serve(r, jsonRequest(http.MethodGet, "/api/health/store", "")))
	if store.Status != "ok" || store.Backend != "memory" {
		t.Fatalf("unexpected store health %+v", store)
	}

	// 未启用消息队列
	if w := serve(r, jsonRequest(http.MethodGet, "/health/mq", "")); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("mq health status = %d, want 503", w.Code)
	}
}

func TestSchedulerJobsWithoutScheduler(t *testing.T) {
	r := newServer(t, nil)

	w := serve(r, jsonRequest(http.MethodGet, "/scheduler/jobs", ""))
	if w.Code != http.StatusOK || w.Body.String() != `{"jobs":[]}` {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}
