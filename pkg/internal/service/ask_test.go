package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yeisme/docchat/pkg/internal/qa"
	"github.com/yeisme/docchat/pkg/internal/service"
)

type stubAsker struct {
	answer *qa.Answer
	err    error
	asked  []string
}

func (s *stubAsker) Ask(_ context.Context, question string) (*qa.Answer, error) {
	s.asked = append(s.asked, question)

	if strings.TrimSpace(question) == "" {
		return nil, qa.ErrEmptyQuestion
	}

	return s.answer, s.err
}

// TestAsk_LogsQuery 测试带文档 id 的提问会记录查询与相关度.
func TestAsk_LogsQuery(t *testing.T) {
	mgr, _ := newTestManager(t)
	cfg := testConfig()
	ctx := context.Background()

	doc, err := service.NewDocumentServiceFrom(mgr, cfg).Upload(ctx, textUpload("a.txt", "ask"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	asker := &stubAsker{answer: &qa.Answer{Answer: "42", Context: "ctx", RelevanceScore: score(0.75)}}
	svc := service.NewAskServiceFrom(asker, mgr, cfg)

	res, err := svc.Ask(ctx, service.AskInput{Question: "meaning?", DocumentID: doc.ID})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if res.Answer.Answer != "42" || res.QueryID == nil {
		t.Fatalf("Unexpected result %+v", res)
	}

	queries, err := service.NewQueryServiceFrom(mgr, cfg).List(ctx, doc.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(queries) != 1 || queries[0].QueryText != "meaning?" || *queries[0].RelevanceScore != 0.75 {
		t.Errorf("Unexpected logged queries %+v", queries)
	}
}

// TestAsk_LogFailureStillAnswers 测试记录失败不影响答案.
func TestAsk_LogFailureStillAnswers(t *testing.T) {
	mgr, _ := newTestManager(t)
	asker := &stubAsker{answer: &qa.Answer{Answer: "ok"}}
	svc := service.NewAskServiceFrom(asker, mgr, testConfig())

	res, err := svc.Ask(context.Background(), service.AskInput{Question: "hi", DocumentID: 77})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if res.QueryID != nil {
		t.Errorf("Expected no query id, got %d", *res.QueryID)
	}
}

// TestAsk_Errors 测试错误映射.
func TestAsk_Errors(t *testing.T) {
	mgr, _ := newTestManager(t)
	cfg := testConfig()

	_, err := service.NewAskServiceFrom(&stubAsker{}, mgr, cfg).Ask(context.Background(), service.AskInput{Question: "  "})

	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for empty question, got %v", err)
	}

	_, err = service.NewAskServiceFrom(&stubAsker{err: qa.ErrUnavailable}, mgr, cfg).Ask(context.Background(), service.AskInput{Question: "q"})
	if !errors.Is(err, qa.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}

	_, err = service.NewAskServiceFrom(nil, mgr, cfg).Ask(context.Background(), service.AskInput{Question: "q"})
	if !errors.Is(err, qa.ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}
