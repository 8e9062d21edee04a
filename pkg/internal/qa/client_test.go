package qa_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/qa"
)

func qaConfig(endpoint string) *configs.QAConfig {
	return &configs.QAConfig{
		Enabled:  true,
		Endpoint: endpoint,
		AskPath:  "/ask",
		Timeout:  5 * time.Second,
	}
}

// TestAsk_Success 测试正常问答与字段映射.
func TestAsk_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ask" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"question":"what is this?"`) {
			t.Errorf("Unexpected request body %s", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"answer":"a report","context":"ctx","expanded_query":"what is this document","relevance_score":0.9}`)
	}))
	defer srv.Close()

	client := qa.New(qaConfig(srv.URL), nil)

	ans, err := client.Ask(context.Background(), "  what is this?  ")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if ans.Answer != "a report" || ans.Context != "ctx" || ans.ExpandedQuery != "what is this document" {
		t.Errorf("Unexpected answer %+v", ans)
	}

	if ans.RelevanceScore == nil || *ans.RelevanceScore != 0.9 {
		t.Errorf("Expected relevance score 0.9, got %v", ans.RelevanceScore)
	}

	if client.State() != "disabled" {
		t.Errorf("Expected breaker state disabled, got %s", client.State())
	}
}

// TestAsk_UpstreamError 测试上游错误映射为 ErrUnavailable.
func TestAsk_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"No documents have been uploaded yet"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := qa.New(qaConfig(srv.URL), nil).Ask(context.Background(), "hi")
	if !errors.Is(err, qa.ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
}

// TestAsk_CircuitOpens 测试连续失败后熔断，不再访问上游.
func TestAsk_CircuitOpens(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cb := &configs.CircuitBreakerConfig{
		Enabled:           true,
		FailureRate:       0.5,
		MinRequests:       3,
		IntervalSeconds:   60,
		TimeoutSeconds:    60,
		MaxRequestsInHalf: 1,
	}

	client := qa.New(qaConfig(srv.URL), cb)

	for range 3 {
		if _, err := client.Ask(context.Background(), "hi"); !errors.Is(err, qa.ErrUnavailable) {
			t.Fatalf("Expected ErrUnavailable before trip, got %v", err)
		}
	}

	_, err := client.Ask(context.Background(), "hi")
	if !errors.Is(err, qa.ErrCircuitOpen) {
		t.Fatalf("Expected ErrCircuitOpen, got %v", err)
	}

	if hits.Load() != 3 {
		t.Errorf("Expected 3 upstream hits, got %d", hits.Load())
	}

	if client.State() != "open" {
		t.Errorf("Expected open state, got %s", client.State())
	}
}

// TestAsk_Validation 测试空问题与未启用.
func TestAsk_Validation(t *testing.T) {
	client := qa.New(qaConfig("http://127.0.0.1:1"), nil)
	if _, err := client.Ask(context.Background(), "   "); !errors.Is(err, qa.ErrEmptyQuestion) {
		t.Errorf("Expected ErrEmptyQuestion, got %v", err)
	}

	cfg := qaConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	if _, err := qa.New(cfg, nil).Ask(context.Background(), "hi"); !errors.Is(err, qa.ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}
