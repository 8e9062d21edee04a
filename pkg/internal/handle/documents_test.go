package handle_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/yeisme/docchat/pkg/internal/model"
	"github.com/yeisme/docchat/pkg/internal/types"
)

func TestUploadDocument_DuplicateConflict(t *testing.T) {
	r := newServer(t, nil)

	id := upload(t, r, "%PDF-1.4 quarterly report")

	// 同样内容从 /api 前缀再次上传
	w := serve(r, uploadRequest(t, "/api/upload", "copy.pdf", "application/pdf", []byte("%PDF-1.4 quarterly report"), ""))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", w.Code, w.Body.String())
	}

	res := decode[types.ConflictResponse](t, w)
	if res.Error != "Document already exists" || res.DocumentID != id {
		t.Fatalf("unexpected conflict response %+v", res)
	}
}

func TestUploadDocument_Rejected(t *testing.T) {
	r := newServer(t, nil)

	tests := []struct {
		name        string
		contentType string
		content     []byte
		metadata    string
		wantError   string
	}{
		{name: "missing file", wantError: "No file uploaded"},
		{name: "unsupported type", contentType: "image/png", content: []byte("png")},
		{name: "metadata not an object", contentType: "text/plain", content: []byte("notes"), metadata: `[1,2]`},
		{name: "too large", contentType: "text/plain", content: make([]byte, 1<<20+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, uploadRequest(t, "/upload", "file.bin", tt.contentType, tt.content, tt.metadata))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
			}

			res := decode[types.ErrorResponse](t, w)
			if res.Error == "" {
				t.Fatal("expected an error message")
			}

			if tt.wantError != "" && res.Error != tt.wantError {
				t.Fatalf("error = %q, want %q", res.Error, tt.wantError)
			}
		})
	}

	w := serve(r, jsonRequest(http.MethodGet, "/documents", ""))
	if docs := decode[[]model.Document](t, w); len(docs) != 0 {
		t.Fatalf("rejected uploads must not be stored, got %d documents", len(docs))
	}
}

func TestListDocuments(t *testing.T) {
	r := newServer(t, nil)

	w := serve(r, jsonRequest(http.MethodGet, "/documents", ""))
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("empty library: status %d body %s", w.Code, w.Body.String())
	}

	first := upload(t, r, "first")
	second := upload(t, r, "second")

	w = serve(r, jsonRequest(http.MethodGet, "/api/documents", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	docs := decode[[]model.Document](t, w)
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}

	ids := map[uint]bool{docs[0].ID: true, docs[1].ID: true}
	if !ids[first] || !ids[second] {
		t.Fatalf("unexpected ids %v", ids)
	}

	if docs[0].Hash == "" || docs[0].OriginalFilename != "report.pdf" {
		t.Fatalf("unexpected document %+v", docs[0])
	}
}

func TestDeleteDocument(t *testing.T) {
	r := newServer(t, nil)
	id := upload(t, r, "to be deleted")

	path := fmt.Sprintf("/document/%d", id)

	if w := serve(r, jsonRequest(http.MethodDelete, path, "")); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", w.Code, w.Body.String())
	}

	if w := serve(r, jsonRequest(http.MethodDelete, path, "")); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}

	if w := serve(r, jsonRequest(http.MethodDelete, "/document/abc", "")); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", w.Code)
	}

	// 删除后同样内容可以重新上传
	upload(t, r, "to be deleted")
}

func TestSetEmbedding(t *testing.T) {
	r := newServer(t, nil)
	id := upload(t, r, "embed me")

	path := fmt.Sprintf("/document/%d/embedding", id)

	if w := serve(r, jsonRequest(http.MethodPatch, path, `{}`)); w.Code != http.StatusBadRequest {
		t.Fatalf("missing flag status = %d, want 400", w.Code)
	}

	if w := serve(r, jsonRequest(http.MethodPatch, path, `{"cached":true}`)); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	docs := decode[[]model.Document](t, serve(r, jsonRequest(http.MethodGet, "/documents", "")))
	if len(docs) != 1 || !docs[0].EmbeddingCached {
		t.Fatalf("embedding flag not set: %+v", docs)
	}

	if w := serve(r, jsonRequest(http.MethodPatch, "/document/999/embedding", `{"cached":true}`)); w.Code != http.StatusNotFound {
		t.Fatalf("unknown document status = %d, want 404", w.Code)
	}
}
