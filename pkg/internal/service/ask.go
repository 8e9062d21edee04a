package service

import (
	"context"
	"errors"

	"github.com/yeisme/docchat/pkg/configs"
	ctxPkg "github.com/yeisme/docchat/pkg/context"
	"github.com/yeisme/docchat/pkg/internal/qa"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/metrics"
)

// AskInput 一次提问.DocumentID 非零时记录查询.
type AskInput struct {
	Question   string
	DocumentID uint
}

// AskResult 问答结果，QueryID 在记录成功时非空.
type AskResult struct {
	qa.Answer
	QueryID *uint `json:"queryId,omitempty"`
}

// AskService 转发问题到问答服务并记录查询.
type AskService struct {
	asker   qa.Asker
	queries *QueryService
}

// NewAskService 从 context 获取依赖实例.
func NewAskService(c context.Context) *AskService {
	return NewAskServiceFrom(ctxPkg.GetQAClient(c), ctxPkg.GetManager(c), configs.GetConfig())
}

// NewAskServiceFrom 使用给定的问答客户端、Manager 与配置创建服务.
func NewAskServiceFrom(asker qa.Asker, mgr *storage.Manager, cfg *configs.AppConfig) *AskService {
	return &AskService{asker: asker, queries: NewQueryServiceFrom(mgr, cfg)}
}

// Ask 提交问题.问答服务的错误原样返回，空问题返回 ValidationError.
// 查询记录失败只记录日志，不影响返回的答案.
func (s *AskService) Ask(ctx context.Context, in AskInput) (*AskResult, error) {
	if s.asker == nil {
		metrics.QARequests.WithLabelValues("disabled").Inc()
		return nil, qa.ErrDisabled
	}

	ans, err := s.asker.Ask(ctx, in.Question)
	if err != nil {
		metrics.QARequests.WithLabelValues(qaOutcome(err)).Inc()

		if errors.Is(err, qa.ErrEmptyQuestion) {
			return nil, invalid("Question is required")
		}

		return nil, err
	}

	metrics.QARequests.WithLabelValues("ok").Inc()

	res := &AskResult{Answer: *ans}

	if in.DocumentID != 0 {
		q, err := s.queries.Log(ctx, LogQueryInput{
			DocumentID:     in.DocumentID,
			QueryText:      in.Question,
			RelevanceScore: ans.RelevanceScore,
		})
		if err != nil {
			s.queries.log.Warn().Err(err).Uint("document_id", in.DocumentID).Msg("failed to log answered query")
		} else {
			res.QueryID = &q.ID
		}
	}

	return res, nil
}

func qaOutcome(err error) string {
	switch {
	case errors.Is(err, qa.ErrEmptyQuestion):
		return "rejected"
	case errors.Is(err, qa.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, qa.ErrDisabled):
		return "disabled"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unavailable"
	}
}
