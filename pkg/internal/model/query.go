package model

import "time"

// Query 针对某个文档的一次提问记录，创建后不可变.
type Query struct {
	ID         uint `gorm:"primaryKey"     json:"id"`
	DocumentID uint `gorm:"not null;index" json:"documentId"`
	// 删除文档时级联删除其查询记录
	Document       *Document `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	QueryText      string    `gorm:"type:text;not null"          json:"queryText"`
	RelevanceScore *float64  `json:"relevanceScore"`
	QueryDate      time.Time `gorm:"not null;index"              json:"queryDate"`
}

// TableName 固定表名.
func (Query) TableName() string {
	return "document_queries"
}

// All 返回需要迁移的全部模型，顺序即依赖顺序.
func All() []any {
	return []any{&Document{}, &Query{}}
}
