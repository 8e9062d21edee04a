package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeisme/docchat/pkg/configs"
	ctxPkg "github.com/yeisme/docchat/pkg/context"
	"github.com/yeisme/docchat/pkg/internal/model"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
	"github.com/yeisme/docchat/pkg/metrics"
	"github.com/yeisme/docchat/pkg/rule"
)

// LogQueryInput 一条查询记录，分数不做校验.
type LogQueryInput struct {
	DocumentID     uint     `json:"documentId" rule:"required"`
	QueryText      string   `json:"queryText"  rule:"notblank"`
	RelevanceScore *float64 `json:"relevanceScore"`
}

// QueryService 负责查询记录.
type QueryService struct {
	deps
}

// NewQueryService 从 context 获取依赖实例.
func NewQueryService(c context.Context) *QueryService {
	return NewQueryServiceFrom(ctxPkg.GetManager(c), configs.GetConfig())
}

// NewQueryServiceFrom 使用给定的 Manager 与配置创建服务.
func NewQueryServiceFrom(mgr *storage.Manager, cfg *configs.AppConfig) *QueryService {
	return &QueryService{deps: newDeps(mgr, cfg, "queries")}
}

// Log 记录一次查询.文档不存在时返回 ValidationError.
func (s *QueryService) Log(ctx context.Context, in LogQueryInput) (*model.Query, error) {
	if err := rule.ValidateStruct(in); err != nil {
		return nil, invalid("Missing required fields")
	}

	text := strings.TrimSpace(in.QueryText)

	q := &model.Query{
		DocumentID:     in.DocumentID,
		QueryText:      text,
		RelevanceScore: in.RelevanceScore,
		QueryDate:      time.Now().UTC(),
	}

	if _, err := s.queries.Create(ctx, q); err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return nil, invalid("Document %d does not exist", in.DocumentID)
		}

		return nil, &StorageError{Op: "log query", Err: err}
	}

	metrics.QueriesLogged.Inc()

	if err := s.docs.Touch(ctx, in.DocumentID, q.QueryDate); err != nil {
		s.log.Warn().Err(err).Uint("document_id", in.DocumentID).Msg("failed to update last accessed")
	}

	s.invalidate(ctx, s.queriesKey(in.DocumentID), s.documentsKey())

	return q, nil
}

// List 按查询时间倒序返回文档的查询记录，文档不存在时返回空列表.
func (s *QueryService) List(ctx context.Context, documentID uint) ([]model.Query, error) {
	queries, err := cached(ctx, &s.deps, s.queriesKey(documentID), func(ctx context.Context) ([]model.Query, error) {
		return s.queries.ListForDocument(ctx, documentID)
	})
	if err != nil {
		return nil, &StorageError{Op: "list queries", Err: err}
	}

	if queries == nil {
		queries = []model.Query{}
	}

	return queries, nil
}
