package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yeisme/docchat/pkg/internal/service"
)

func score(v float64) *float64 { return &v }

// TestQueryLog_Validation 测试缺少字段与未知文档.
func TestQueryLog_Validation(t *testing.T) {
	mgr, _ := newTestManager(t)
	svc := service.NewQueryServiceFrom(mgr, testConfig())
	ctx := context.Background()

	tests := []struct {
		name string
		in   service.LogQueryInput
	}{
		{"missing document", service.LogQueryInput{QueryText: "why?"}},
		{"missing text", service.LogQueryInput{DocumentID: 1}},
		{"blank text", service.LogQueryInput{DocumentID: 1, QueryText: "   "}},
		{"unknown document", service.LogQueryInput{DocumentID: 42, QueryText: "why?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Log(ctx, tt.in)

			var verr *service.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
		})
	}

	if n, _ := mgr.Queries().Count(ctx); n != 0 {
		t.Errorf("Expected no query rows, got %d", n)
	}
}

// TestQueryLog_NewestFirst 测试查询记录倒序并更新最近访问时间.
func TestQueryLog_NewestFirst(t *testing.T) {
	mgr, _ := newTestManager(t)
	cfg := testConfig()
	docs := service.NewDocumentServiceFrom(mgr, cfg)
	svc := service.NewQueryServiceFrom(mgr, cfg)
	ctx := context.Background()

	doc, err := docs.Upload(ctx, textUpload("a.txt", "queries"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if doc.LastAccessed != nil {
		t.Error("Expected LastAccessed to be empty before any query")
	}

	// 先填充缓存，确认写入后失效
	if _, err := svc.List(ctx, doc.ID); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var ids []uint

	for _, text := range []string{"q1", "q2", "q3"} {
		q, err := svc.Log(ctx, service.LogQueryInput{DocumentID: doc.ID, QueryText: text})
		if err != nil {
			t.Fatalf("Log failed: %v", err)
		}

		ids = append(ids, q.ID)
	}

	got, err := svc.List(ctx, doc.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("Expected 3 queries, got %d", len(got))
	}

	for i, q := range got {
		if want := ids[len(ids)-1-i]; q.ID != want {
			t.Errorf("Position %d: expected id %d, got %d", i, want, q.ID)
		}
	}

	stored, err := docs.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if stored.LastAccessed == nil {
		t.Error("Expected LastAccessed to be set after logging a query")
	}

	empty, err := svc.List(ctx, 999)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty list for unknown document, got %v (%v)", empty, err)
	}
}

// TestConcreteScenario 上传 → 重复上传 → 记录查询 → 读取查询.
func TestConcreteScenario(t *testing.T) {
	mgr, _ := newTestManager(t)
	cfg := testConfig()
	docs := service.NewDocumentServiceFrom(mgr, cfg)
	queries := service.NewQueryServiceFrom(mgr, cfg)
	ctx := context.Background()

	a, err := docs.Upload(ctx, textUpload("A.txt", "X"))
	if err != nil {
		t.Fatalf("Upload A failed: %v", err)
	}

	if a.ID != 1 {
		t.Errorf("Expected id 1, got %d", a.ID)
	}

	_, err = docs.Upload(ctx, textUpload("B.txt", "X"))

	var conflict *service.ConflictError
	if !errors.As(err, &conflict) || conflict.DocumentID != 1 {
		t.Fatalf("Expected conflict with document 1, got %v", err)
	}

	if n := documentCount(t, mgr); n != 1 {
		t.Errorf("Expected row count 1, got %d", n)
	}

	q, err := queries.Log(ctx, service.LogQueryInput{DocumentID: 1, QueryText: "what is this?", RelevanceScore: score(0.9)})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	if q.ID != 1 {
		t.Errorf("Expected query id 1, got %d", q.ID)
	}

	got, err := queries.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("Expected 1 query, got %d", len(got))
	}

	if got[0].ID != 1 || got[0].QueryText != "what is this?" || got[0].RelevanceScore == nil || *got[0].RelevanceScore != 0.9 {
		t.Errorf("Unexpected query %+v", got[0])
	}
}
