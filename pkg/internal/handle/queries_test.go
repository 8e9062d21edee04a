package handle_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/yeisme/docchat/pkg/internal/model"
	"github.com/yeisme/docchat/pkg/internal/types"
)

func TestLogQuery(t *testing.T) {
	r := newServer(t, nil)
	id := upload(t, r, "queried document")

	body := fmt.Sprintf(`{"documentId":%d,"queryText":"what is the total?","relevanceScore":0.75}`, id)

	w := serve(r, jsonRequest(http.MethodPost, "/query/log", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if res := decode[types.LogQueryResponse](t, w); res.QueryID == 0 {
		t.Fatal("expected a query id")
	}

	w = serve(r, jsonRequest(http.MethodGet, fmt.Sprintf("/document/%d/queries", id), ""))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	queries := decode[[]model.Query](t, w)
	if len(queries) != 1 || queries[0].QueryText != "what is the total?" {
		t.Fatalf("unexpected queries %+v", queries)
	}

	if queries[0].RelevanceScore == nil || *queries[0].RelevanceScore != 0.75 {
		t.Fatalf("unexpected relevance score %v", queries[0].RelevanceScore)
	}
}

func TestLogQuery_Rejected(t *testing.T) {
	r := newServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing document", body: `{"queryText":"hi"}`},
		{name: "missing text", body: `{"documentId":1}`},
		{name: "unknown document", body: `{"documentId":42,"queryText":"hi"}`},
		{name: "malformed json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, jsonRequest(http.MethodPost, "/api/query/log", tt.body))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestListQueries(t *testing.T) {
	r := newServer(t, nil)

	if w := serve(r, jsonRequest(http.MethodGet, "/document/zero/queries", "")); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", w.Code)
	}

	w := serve(r, jsonRequest(http.MethodGet, "/document/7/queries", ""))
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("unknown document: status %d body %s", w.Code, w.Body.String())
	}
}
