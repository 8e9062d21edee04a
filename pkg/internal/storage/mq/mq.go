// Package mq 提供基于 Watermill 的统一消息队列客户端，按配置选择 gochannel、NATS 或 Redis 传输.
//
// 使用示例：
//
//	client, err := mq.New(ctx, &cfg.MQ)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), []byte("hello"))
//	_ = client.Publish(ctx, "docchat.document.stored", msg)
//
//	ch, _ := client.Subscribe(ctx, "docchat.document.indexed")
//	for m := range ch {
//		m.Ack()
//	}
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/docchat/pkg/configs"
	nlog "github.com/yeisme/docchat/pkg/log"
)

// ErrNotInitialized 客户端未初始化或已关闭.
var ErrNotInitialized = errors.New("mq client not initialized")

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的传输类型.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	mqType     configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
	closeFunc  func() // 关闭独立的 metrics 服务
}

// NewClient 用已有的 Publisher 与 Subscriber 构造客户端.
func NewClient(mqType configs.MQType, pub message.Publisher, sub message.Subscriber) *Client {
	return &Client{mqType: mqType, publisher: pub, subscriber: sub}
}

// Type 返回传输类型.
func (c *Client) Type() configs.MQType {
	return c.mqType
}

// Publisher 返回底层 Publisher.
func (c *Client) Publisher() message.Publisher {
	return c.publisher
}

// Subscriber 返回底层 Subscriber.
func (c *Client) Subscriber() message.Subscriber {
	return c.subscriber
}

// Publish 便捷发布.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return ErrNotInitialized
	}

	if err := c.publisher.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}

// Subscribe 便捷订阅，ctx 取消后通道关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, ErrNotInitialized
	}

	ch, err := c.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	return ch, nil
}

// HealthCheck 检查客户端是否可用.
func (c *Client) HealthCheck(context.Context) error {
	if c == nil || c.publisher == nil || c.subscriber == nil {
		return ErrNotInitialized
	}

	return nil
}

// Close 关闭资源.
func (c *Client) Close() error {
	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	// gochannel 的 Publisher 与 Subscriber 是同一个实例
	if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
		errs = append(errs, c.subscriber.Close())
	}

	if c.closeFunc != nil {
		c.closeFunc()
	}

	return errors.Join(errs...)
}

// New 按配置创建消息队列客户端.
func New(ctx context.Context, cfg *configs.MQConfig) (*Client, error) {
	mqType := cfg.Type
	if mqType == "" {
		mqType = configs.DefaultMQType
	}

	factory, ok := factories[mqType]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", mqType)
	}

	logger := NewLoggerAdapter(nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", mqType, err)
	}

	client := NewClient(mqType, pub, sub)

	if cfg.Common.EnableMetrics {
		registry, closeMetricsServer := metrics.CreateRegistryAndServeHTTP(cfg.Common.Endpoint)
		client.closeFunc = closeMetricsServer

		builder := metrics.NewPrometheusMetricsBuilder(registry, "docchat", "mq")

		if client.publisher, err = builder.DecoratePublisher(pub); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if client.subscriber, err = builder.DecorateSubscriber(sub); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}

		nlog.Logger().Info().Str("endpoint", cfg.Common.Endpoint).Msg("MQ metrics enabled")
	}

	nlog.Logger().Info().Str("type", string(mqType)).Msg("MQ 客户端已初始化")

	return client, nil
}
