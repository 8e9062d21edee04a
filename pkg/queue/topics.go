// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：docchat.<域>.<动作>，保持稳定且向后兼容.
// NATS 下 '.' 是层级分隔符，订阅方可以使用 docchat.document.> 通配.

const (
	// TopicDocumentStored 文档内容已落盘且元数据已入库，下游据此开始解析与向量化.
	TopicDocumentStored = "docchat.document.stored"
	// TopicDocumentDeleted 文档及其查询记录已删除，下游应清理向量与缓存.
	TopicDocumentDeleted = "docchat.document.deleted"
	// TopicDocumentIndexed 外部索引服务完成（或撤销）向量化，由本服务消费.
	TopicDocumentIndexed = "docchat.document.indexed"
)

// DocumentTopics 文档相关主题集合.
var DocumentTopics = []string{
	TopicDocumentStored,
	TopicDocumentDeleted,
	TopicDocumentIndexed,
}
