package blob_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/storage/blob"
)

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

// TestLocal_SaveOpenRemove 测试本地存储的基本读写.
func TestLocal_SaveOpenRemove(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")

	store, err := blob.NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	path, n, err := store.Save(ctx, "document-1.txt", strings.NewReader("hello"), 5, "text/plain")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if n != 5 {
		t.Errorf("Expected 5 bytes written, got %d", n)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("Expected file under %s, got %s", dir, path)
	}

	rc, err := store.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	data, _ := io.ReadAll(rc)
	_ = rc.Close()

	if string(data) != "hello" {
		t.Errorf("Expected content hello, got %q", data)
	}

	if _, _, err := store.Save(ctx, "document-1.txt", strings.NewReader("again"), 5, ""); err == nil {
		t.Error("Expected error when overwriting an existing blob")
	}

	if err := store.Remove(ctx, path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected file to be removed, stat err=%v", err)
	}

	if err := store.Remove(ctx, path); err != nil {
		t.Errorf("Expected removing a missing blob to succeed, got %v", err)
	}
}

// TestLocal_SaveFailureLeavesNothing 测试写入失败时不留下半成品.
func TestLocal_SaveFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()

	store, err := blob.NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	if _, _, err := store.Save(context.Background(), "broken.txt", brokenReader{}, -1, ""); err == nil {
		t.Fatal("Expected Save to fail")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected empty dir after failed save, found %d entries", len(entries))
	}
}

// TestLocal_RejectsPathTraversal 测试拒绝带目录的文件名.
func TestLocal_RejectsPathTraversal(t *testing.T) {
	store, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	for _, name := range []string{"", "../escape.txt", "nested/file.txt"} {
		if _, _, err := store.Save(context.Background(), name, strings.NewReader("x"), 1, ""); err == nil {
			t.Errorf("Expected error for name %q", name)
		}
	}

	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

// TestNew_SelectsBackend 测试按配置选择后端.
func TestNew_SelectsBackend(t *testing.T) {
	cfg := &configs.UploadConfig{Dir: t.TempDir(), Backend: configs.BlobBackendLocal}

	s, err := blob.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.Name() != "local" {
		t.Errorf("Expected local backend, got %s", s.Name())
	}

	cfg.Backend = "ftp"
	if _, err := blob.New(context.Background(), cfg, nil); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
