package handle_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/yeisme/docchat/pkg/internal/model"
	"github.com/yeisme/docchat/pkg/internal/qa"
	"github.com/yeisme/docchat/pkg/internal/service"
)

func TestAsk(t *testing.T) {
	score := 0.8
	r := newServer(t, stubAsker{answer: &qa.Answer{Answer: "42", RelevanceScore: &score}})
	id := upload(t, r, "the answer document")

	w := serve(r, jsonRequest(http.MethodPost, "/ask", fmt.Sprintf(`{"question":"meaning?","documentId":%d}`, id)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	res := decode[service.AskResult](t, w)
	if res.Answer.Answer != "42" || res.QueryID == nil {
		t.Fatalf("unexpected result %+v", res)
	}

	queries := decode[[]model.Query](t, serve(r, jsonRequest(http.MethodGet, fmt.Sprintf("/document/%d/queries", id), "")))
	if len(queries) != 1 || queries[0].QueryText != "meaning?" {
		t.Fatalf("answered question not logged: %+v", queries)
	}
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name  string
		asker qa.Asker
		body  string
		want  int
	}{
		{name: "disabled", asker: nil, body: `{"question":"hi"}`, want: http.StatusServiceUnavailable},
		{name: "empty question", asker: stubAsker{err: qa.ErrEmptyQuestion}, body: `{"question":""}`, want: http.StatusBadRequest},
		{name: "circuit open", asker: stubAsker{err: qa.ErrCircuitOpen}, body: `{"question":"hi"}`, want: http.StatusServiceUnavailable},
		{name: "upstream down", asker: stubAsker{err: qa.ErrUnavailable}, body: `{"question":"hi"}`, want: http.StatusBadGateway},
		{name: "malformed body", asker: stubAsker{}, body: `nope`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newServer(t, tt.asker)

			w := serve(r, jsonRequest(http.MethodPost, "/api/ask", tt.body))
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
