package handle_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/api"
	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/qa"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/internal/storage/blob"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
	"github.com/yeisme/docchat/pkg/internal/types"
	"github.com/yeisme/docchat/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAsker struct {
	answer *qa.Answer
	err    error
}

func (s stubAsker) Ask(context.Context, string) (*qa.Answer, error) {
	return s.answer, s.err
}

// newServer 使用内存存储与临时目录组装完整路由.
func newServer(t *testing.T, asker qa.Asker) *gin.Engine {
	t.Helper()

	cfg := configs.Defaults()
	cfg.Upload.Dir = t.TempDir()
	cfg.Upload.MaxSizeMB = 1
	cfg.Store.Type = configs.StoreTypeMemory
	cfg.Cache.Enabled = false
	cfg.MQ.Enabled = false
	configs.SetConfig(cfg)

	blobs, err := blob.NewLocal(cfg.Upload.Dir)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	mgr := &storage.Manager{Store: store.NewMemory(), Blobs: blobs}
	t.Cleanup(func() { _ = mgr.Close() })

	r := gin.New()
	r.Use(middleware.StorageMiddleware(mgr))

	if asker != nil {
		r.Use(middleware.QAMiddleware(asker))
	}

	api.RegisterGroup(r)

	return r
}

// uploadRequest 构造 multipart 上传请求，contentType 为空时不附带文件.
func uploadRequest(t *testing.T, path, filename, contentType string, content []byte, metadata string) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	if contentType != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, configs.DefaultUploadField, filename))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart failed: %v", err)
		}

		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part failed: %v", err)
		}
	}

	if metadata != "" {
		if err := w.WriteField(configs.DefaultMetadataField, metadata); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req
}

func jsonRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := sonic.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q failed: %v", w.Body.String(), err)
	}

	return v
}

// upload 上传并断言 201，返回文档 id.
func upload(t *testing.T, r http.Handler, content string) uint {
	t.Helper()

	w := serve(r, uploadRequest(t, "/upload", "report.pdf", "application/pdf", []byte(content), `{"author":"x"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", w.Code, w.Body.String())
	}

	res := decode[types.UploadResponse](t, w)
	if res.DocumentID == 0 || res.Message == "" {
		t.Fatalf("unexpected upload response %+v", res)
	}

	return res.DocumentID
}
