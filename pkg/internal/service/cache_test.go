package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/docchat/pkg/internal/model"
	"github.com/yeisme/docchat/pkg/internal/service"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
)

// gatedBackend 第一次列表读取在 started 后阻塞，直到 release 关闭.
type gatedBackend struct {
	store.Backend
	docs    *gatedDocuments
	queries *gatedQueries
}

func (b gatedBackend) Documents() store.DocumentStore {
	if b.docs == nil {
		return b.Backend.Documents()
	}

	return b.docs
}

func (b gatedBackend) Queries() store.QueryLog {
	if b.queries == nil {
		return b.Backend.Queries()
	}

	return b.queries
}

type gate struct {
	started chan struct{}
	release chan struct{}
	used    atomic.Bool
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	if g.used.CompareAndSwap(false, true) {
		close(g.started)
		<-g.release
	}
}

type gatedDocuments struct {
	store.DocumentStore
	*gate
}

func (d *gatedDocuments) ListAll(ctx context.Context) ([]model.Document, error) {
	docs, err := d.DocumentStore.ListAll(ctx)
	d.wait()

	return docs, err
}

type gatedQueries struct {
	store.QueryLog
	*gate
}

func (q *gatedQueries) ListForDocument(ctx context.Context, documentID uint) ([]model.Query, error) {
	queries, err := q.QueryLog.ListForDocument(ctx, documentID)
	q.wait()

	return queries, err
}

// within 在超时内执行 fn，超时视为死锁.
func within[T any](t *testing.T, fn func() (T, error)) T {
	t.Helper()

	type result struct {
		v   T
		err error
	}

	done := make(chan result, 1)

	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("call failed: %v", r.err)
		}

		return r.v
	case <-time.After(5 * time.Second):
		t.Fatal("call did not return")
	}

	panic("unreachable")
}

// TestList_AfterCacheExpiry 测试缓存过期后列表仍可读取，且上传不受影响.
func TestList_AfterCacheExpiry(t *testing.T) {
	mgr, _ := newTestManager(t)
	cfg := testConfig()
	cfg.Cache.TTL = 20 * time.Millisecond
	svc := service.NewDocumentServiceFrom(mgr, cfg)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, textUpload("a.txt", "expire")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if docs := within(t, func() ([]model.Document, error) { return svc.List(ctx) }); len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}

	time.Sleep(50 * time.Millisecond)

	for range 2 {
		if docs := within(t, func() ([]model.Document, error) { return svc.List(ctx) }); len(docs) != 1 {
			t.Fatalf("Expected 1 document after expiry, got %d", len(docs))
		}
	}

	within(t, func() (*model.Document, error) { return svc.Upload(ctx, textUpload("b.txt", "after expiry")) })

	if docs := within(t, func() ([]model.Document, error) { return svc.List(ctx) }); len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
}

// TestList_SlowReadDoesNotHideUpload 测试写入前开始的慢读取不会把旧列表写回缓存.
func TestList_SlowReadDoesNotHideUpload(t *testing.T) {
	mgr, _ := newTestManager(t)
	g := newGate()
	mgr.Store = gatedBackend{Backend: mgr.Store, docs: &gatedDocuments{DocumentStore: mgr.Store.Documents(), gate: g}}

	svc := service.NewDocumentServiceFrom(mgr, testConfig())
	ctx := context.Background()

	slow := make(chan int, 1)

	go func() {
		docs, _ := svc.List(ctx)
		slow <- len(docs)
	}()

	<-g.started

	if _, err := svc.Upload(ctx, textUpload("a.txt", "written during read")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	close(g.release)

	if n := <-slow; n != 0 {
		t.Fatalf("Slow read started before the upload, expected 0 documents, got %d", n)
	}

	docs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("Expected the uploaded document to be listed, got %d", len(docs))
	}
}

// TestQueries_SlowReadDoesNotHideLog 测试查询记录列表的同一竞争.
func TestQueries_SlowReadDoesNotHideLog(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	doc, err := service.NewDocumentServiceFrom(mgr, testConfig()).Upload(ctx, textUpload("a.txt", "queried"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	g := newGate()
	mgr.Store = gatedBackend{Backend: mgr.Store, queries: &gatedQueries{QueryLog: mgr.Store.Queries(), gate: g}}

	svc := service.NewQueryServiceFrom(mgr, testConfig())

	slow := make(chan int, 1)

	go func() {
		queries, _ := svc.List(ctx, doc.ID)
		slow <- len(queries)
	}()

	<-g.started

	if _, err := svc.Log(ctx, service.LogQueryInput{DocumentID: doc.ID, QueryText: "what is this?"}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	close(g.release)
	<-slow

	queries, err := svc.List(ctx, doc.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(queries) != 1 {
		t.Fatalf("Expected the logged query to be listed, got %d", len(queries))
	}
}
