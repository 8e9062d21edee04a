// Package events 消费外部服务发来的文档事件.
//
// 目前只处理 docchat.document.indexed：索引服务在完成或失效向量缓存后发出，
// 消费者据此更新文档的 embeddingCached 标记.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/service"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/internal/storage/mq"
	nlog "github.com/yeisme/docchat/pkg/log"
	"github.com/yeisme/docchat/pkg/queue"
)

const (
	indexedHandlerName = "document_indexed"
	maxRetries         = 3
	retryInterval      = 200 * time.Millisecond
)

// ErrNoTransport 未启用消息队列.
var ErrNoTransport = errors.New("events: message queue not enabled")

// Consumer 基于 watermill Router 的事件消费者.
type Consumer struct {
	router *message.Router
	docs   *service.DocumentService
	log    zerolog.Logger
}

// NewConsumer 创建消费者并注册处理函数，调用 Run 后开始消费.
func NewConsumer(mgr *storage.Manager, cfg *configs.AppConfig) (*Consumer, error) {
	if mgr == nil || mgr.GetMQClient() == nil {
		return nil, ErrNoTransport
	}

	logger := nlog.Component("events")

	router, err := message.NewRouter(message.RouterConfig{}, mq.NewLoggerAdapter(&logger))
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      maxRetries,
			InitialInterval: retryInterval,
			Logger:          mq.NewLoggerAdapter(&logger),
		}.Middleware,
	)

	c := &Consumer{
		router: router,
		docs:   service.NewDocumentServiceFrom(mgr, cfg),
		log:    logger,
	}

	router.AddNoPublisherHandler(
		indexedHandlerName,
		queue.TopicDocumentIndexed,
		mgr.GetMQClient().Subscriber(),
		c.handleIndexed,
	)

	return c, nil
}

// Run 阻塞消费直到 ctx 取消或 Close.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running 在处理函数全部启动后关闭.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

// Close 停止消费.
func (c *Consumer) Close() error {
	return c.router.Close()
}

// handleIndexed 无法解析或指向不存在文档的消息直接确认，存储错误交给重试.
func (c *Consumer) handleIndexed(msg *message.Message) error {
	env, err := queue.ParseDocumentIndexed(msg)
	if err != nil {
		c.log.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed indexed event")
		return nil
	}

	p := env.Payload
	if p.DocumentID == 0 {
		c.log.Warn().Str("message_id", msg.UUID).Msg("dropping indexed event without document id")
		return nil
	}

	if p.Error != "" {
		c.log.Warn().Uint("document_id", p.DocumentID).Str("error", p.Error).Msg("indexer reported failure")
	}

	err = c.docs.SetEmbedding(msg.Context(), p.DocumentID, p.Cached)
	if errors.Is(err, service.ErrDocumentNotFound) {
		c.log.Warn().Uint("document_id", p.DocumentID).Msg("indexed event for unknown document")
		return nil
	}

	if err != nil {
		return err
	}

	c.log.Debug().Uint("document_id", p.DocumentID).Bool("cached", p.Cached).Msg("embedding status updated")

	return nil
}
