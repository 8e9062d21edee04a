// Package queue 定义文档事件的主题、负载与消息信封.
//
// 消息信封（Envelope）JSON 结构
//
//	{
//	  "header": {
//	    "topic": "docchat.document.stored",
//	    "trace_id": "optional-trace-id",
//	    "producer": "docchat",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 取决于具体主题 ... }
//	}
//
// 发布示例
//
//	_ = queue.PublishDocumentStored(client.Publisher(), queue.DocumentStoredPayload{
//	  Document: queue.DocumentRef{ID: doc.ID, Hash: doc.Hash, FilePath: doc.FilePath},
//	  UploadedAt: doc.UploadDate,
//	}, queue.WithProducer("docchat"))
//
// 订阅示例
//
//	ch, _ := client.Subscribe(ctx, queue.TopicDocumentIndexed)
//	for m := range ch {
//	    env, err := queue.ParseDocumentIndexed(m)
//	    // 使用 env.Payload ...
//	    m.Ack()
//	}
//
// 注意事项
//  1. occurred_at 为 UTC，RFC3339 格式
//  2. 消费者应忽略未知字段，version 用于后向兼容
//  3. 带业务键的消息使用确定性 ID（xxhash(topic|key)），配合 JetStream TrackMsgId 实现幂等发布
package queue

import (
	"strconv"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
)

const (
	PayloadVersionV1 string = "v1"
	// DefaultProducer 默认生产者名称.
	DefaultProducer = "docchat"
)

// NewEventHeader 便捷创建事件头.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
		Producer:   DefaultProducer,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID 设置 TraceID.
func WithTraceID(id string) func(*EventHeader) { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) func(*EventHeader) { return func(h *EventHeader) { h.Producer = p } }

// Encode 将消息封装为 JSON 字节切片.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 字节解码为消息.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// MessageID 由主题与业务键计算确定性消息 ID.
func MessageID(topic, key string) string {
	return strconv.FormatUint(xxhash.Sum64String(topic+"|"+key), 16)
}

// NewWatermillMessage 构造一个 watermill 消息，使用随机 ID.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	return newMessage(watermill.NewUUID(), topic, payload, opts...)
}

// NewWatermillMessageWithKey 构造一个 ID 由业务键决定的 watermill 消息.
func NewWatermillMessageWithKey[T any](topic, key string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	return newMessage(MessageID(topic, key), topic, payload, opts...)
}

func newMessage[T any](id, topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)
	env := Message[T]{Header: header, Payload: payload}

	data, err := Encode(env)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(id, data)
	msg.Metadata.Set("topic", topic)

	if header.TraceID != "" {
		msg.Metadata.Set("trace_id", header.TraceID)
	}

	if header.Producer != "" {
		msg.Metadata.Set("producer", header.Producer)
	}

	msg.Metadata.Set("occurred_at", header.OccurredAt.Format(time.RFC3339Nano))

	if header.Version != "" {
		msg.Metadata.Set("version", header.Version)
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
