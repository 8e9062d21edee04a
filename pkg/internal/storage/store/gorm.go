package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/docchat/pkg/internal/model"
)

// Gorm 基于 GORM 的关系型存储，唯一性与外键由表结构保证.
type Gorm struct {
	db *gorm.DB
}

// NewGorm 使用已打开的连接创建存储，表结构需事先迁移.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Documents 返回文档存储视图.
func (g *Gorm) Documents() DocumentStore { return gormDocuments{g.db} }

// Queries 返回查询记录存储视图.
func (g *Gorm) Queries() QueryLog { return gormQueries{g.db} }

// Name 实现名称.
func (g *Gorm) Name() string { return "db:" + g.db.Dialector.Name() }

// Ping 检查数据库连通性.
func (g *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

type gormDocuments struct{ db *gorm.DB }

func (s gormDocuments) Create(ctx context.Context, doc *model.Document) (uint, error) {
	if doc.UploadDate.IsZero() {
		doc.UploadDate = time.Now()
	}

	if len(doc.Metadata) == 0 {
		doc.Metadata = datatypes.JSON("{}")
	}

	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(doc).Error
	if err == nil {
		return doc.ID, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, ErrDuplicateFingerprint
	}

	// 部分驱动不翻译约束错误，按指纹回查确认是否为唯一性冲突
	if _, findErr := s.FindByFingerprint(ctx, doc.Hash); findErr == nil {
		return 0, ErrDuplicateFingerprint
	}

	return 0, fmt.Errorf("insert document: %w", err)
}

func (s gormDocuments) FindByFingerprint(ctx context.Context, hash string) (*model.Document, error) {
	var doc model.Document

	err := s.db.WithContext(ctx).Where("hash = ?", hash).Take(&doc).Error
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &doc, nil
}

func (s gormDocuments) ListAll(ctx context.Context) ([]model.Document, error) {
	docs := make([]model.Document, 0)

	err := s.db.WithContext(ctx).
		Order("upload_date DESC").
		Order("id DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

func (s gormDocuments) UpdateEmbeddingStatus(ctx context.Context, id uint, cached bool) error {
	return s.updateColumn(ctx, id, "embedding_cached", cached)
}

func (s gormDocuments) Touch(ctx context.Context, id uint, at time.Time) error {
	return s.updateColumn(ctx, id, "last_accessed", at)
}

func (s gormDocuments) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := s.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", id).
		UpdateColumn(column, value)
	if res.Error != nil {
		return fmt.Errorf("update document %s: %w", column, res.Error)
	}

	// MySQL 在值未变化时 RowsAffected 为 0，需要再确认记录是否存在
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

func (s gormDocuments) Get(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := s.db.WithContext(ctx).Take(&doc, id).Error; err != nil {
		return nil, translateNotFound(err)
	}

	return &doc, nil
}

func (s gormDocuments) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 外键的 ON DELETE CASCADE 之外显式删除，兼容未开启外键约束的连接
		if err := tx.Where("document_id = ?", id).Delete(&model.Query{}).Error; err != nil {
			return fmt.Errorf("delete document queries: %w", err)
		}

		res := tx.Delete(&model.Document{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete document: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

func (s gormDocuments) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Document{}).Count(&n).Error

	return n, err
}

type gormQueries struct{ db *gorm.DB }

func (s gormQueries) Create(ctx context.Context, q *model.Query) (uint, error) {
	if q.QueryDate.IsZero() {
		q.QueryDate = time.Now()
	}

	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(q).Error
	if err == nil {
		return q.ID, nil
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return 0, ErrInvalidReference
	}

	var n int64
	if cerr := s.db.WithContext(ctx).Model(&model.Document{}).
		Where("id = ?", q.DocumentID).Count(&n).Error; cerr == nil && n == 0 {
		return 0, ErrInvalidReference
	}

	return 0, fmt.Errorf("insert query: %w", err)
}

func (s gormQueries) ListForDocument(ctx context.Context, documentID uint) ([]model.Query, error) {
	queries := make([]model.Query, 0)

	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("query_date DESC").
		Order("id DESC").
		Find(&queries).Error
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}

	return queries, nil
}

func (s gormQueries) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Query{}).Count(&n).Error

	return n, err
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}
