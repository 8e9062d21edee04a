package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Local 把文件写入本地目录.
type Local struct {
	dir string
}

// NewLocal 创建本地存储，目录不存在时自动创建.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}

	return &Local{dir: dir}, nil
}

// Dir 返回根目录.
func (l *Local) Dir() string { return l.dir }

// Name 后端名称.
func (l *Local) Name() string { return "local" }

// Save 以独占方式创建文件并写入内容，写入失败时删除半成品.
func (l *Local) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, int64, error) {
	if name == "" || filepath.Base(name) != name {
		return "", 0, fmt.Errorf("invalid blob name %q", name)
	}

	path := filepath.Join(l.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(path)

		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}

	return path, n, nil
}

// Open 打开已保存的文件.
func (l *Local) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return f, nil
}

// Remove 删除文件.
func (l *Local) Remove(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}

// HealthCheck 检查目录可写.
func (l *Local) HealthCheck(context.Context) error {
	f, err := os.CreateTemp(l.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("upload dir not writable: %w", err)
	}

	name := f.Name()
	_ = f.Close()

	return os.Remove(name)
}
