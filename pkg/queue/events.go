package queue

import (
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// PublishDocumentStored 发布 docchat.document.stored 事件.
// 消息 ID 由主题与指纹决定，同一份内容重复发布时 JetStream 可以去重.
func PublishDocumentStored(pub message.Publisher, payload DocumentStoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessageWithKey(TopicDocumentStored, payload.Document.Hash, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDocumentStored, msg)
}

// ParseDocumentStored 解析 docchat.document.stored 消息.
func ParseDocumentStored(msg *message.Message) (Message[DocumentStoredPayload], error) {
	return ParseWatermillMessage[DocumentStoredPayload](msg)
}

// PublishDocumentDeleted 发布 docchat.document.deleted 事件.
func PublishDocumentDeleted(pub message.Publisher, payload DocumentDeletedPayload, opts ...func(*EventHeader)) error {
	key := strconv.FormatUint(uint64(payload.Document.ID), 10) + "|" + payload.Document.Hash

	msg, err := NewWatermillMessageWithKey(TopicDocumentDeleted, key, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDocumentDeleted, msg)
}

// ParseDocumentDeleted 解析 docchat.document.deleted 消息.
func ParseDocumentDeleted(msg *message.Message) (Message[DocumentDeletedPayload], error) {
	return ParseWatermillMessage[DocumentDeletedPayload](msg)
}

// PublishDocumentIndexed 发布 docchat.document.indexed 事件，通常由外部索引服务发出.
func PublishDocumentIndexed(pub message.Publisher, payload DocumentIndexedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicDocumentIndexed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicDocumentIndexed, msg)
}

// ParseDocumentIndexed 解析 docchat.document.indexed 消息.
// 同时接受带信封的消息与裸负载 {"documentId":1,"cached":true}.
func ParseDocumentIndexed(msg *message.Message) (Message[DocumentIndexedPayload], error) {
	env, err := ParseWatermillMessage[DocumentIndexedPayload](msg)
	if err == nil && (env.Header.Topic != "" || env.Payload.DocumentID != 0) {
		return env, nil
	}

	var bare DocumentIndexedPayload
	if berr := sonic.Unmarshal(msg.Payload, &bare); berr != nil {
		if err != nil {
			return env, err
		}

		return env, berr
	}

	return Message[DocumentIndexedPayload]{
		Header:  EventHeader{Topic: TopicDocumentIndexed},
		Payload: bare,
	}, nil
}
