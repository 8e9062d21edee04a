package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/oklog/ulid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/yeisme/docchat/pkg/configs"
	ctxPkg "github.com/yeisme/docchat/pkg/context"
	"github.com/yeisme/docchat/pkg/internal/hasher"
	"github.com/yeisme/docchat/pkg/internal/model"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
	"github.com/yeisme/docchat/pkg/metrics"
	"github.com/yeisme/docchat/pkg/queue"
	"github.com/yeisme/docchat/pkg/tracing"
)

const defaultContentType = "application/octet-stream"

// UploadInput 一次上传请求的内容.
type UploadInput struct {
	// Body 为空表示请求中没有文件
	Body        io.Reader
	Filename    string
	ContentType string
	// Size 为客户端声明的大小，未知时为 -1
	Size int64
	// Metadata 原始 metadata 表单字段，可为空
	Metadata string
}

// DocumentService 负责上传去重与文档维护.
type DocumentService struct {
	deps
}

// NewDocumentService 从 context 获取依赖实例.
func NewDocumentService(c context.Context) *DocumentService {
	return NewDocumentServiceFrom(ctxPkg.GetManager(c), configs.GetConfig())
}

// NewDocumentServiceFrom 使用给定的 Manager 与配置创建服务.
func NewDocumentServiceFrom(mgr *storage.Manager, cfg *configs.AppConfig) *DocumentService {
	return &DocumentService{deps: newDeps(mgr, cfg, "documents")}
}

// Upload 保存文件、计算指纹并入库.
//
// 指纹已存在时删除刚写入的文件并返回 ConflictError；入库前的任何失败都会尽力删除文件.
// 请求取消不会中断写入与哈希.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	mediaType, meta, err := s.validate(&in)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadRejected).Inc()
		return nil, err
	}

	ctx, span := tracing.StartSpan(context.WithoutCancel(ctx), "document.upload",
		trace.WithAttributes(
			attribute.String("document.original_filename", in.Filename),
			attribute.String("document.mime_type", mediaType),
		))
	defer span.End()

	doc, err := s.store(ctx, in, mediaType, meta)
	if err != nil {
		span.RecordError(err)

		var conflict *ConflictError

		switch {
		case errors.As(err, &conflict):
			span.SetAttributes(attribute.Int64("document.existing_id", int64(conflict.DocumentID)))
			metrics.UploadsTotal.WithLabelValues(metrics.UploadDuplicate).Inc()
		case isValidation(err):
			metrics.UploadsTotal.WithLabelValues(metrics.UploadRejected).Inc()
		default:
			span.SetStatus(codes.Error, err.Error())
			metrics.UploadsTotal.WithLabelValues(metrics.UploadFailed).Inc()
		}

		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("document.id", int64(doc.ID)),
		attribute.String("document.hash", doc.Hash),
	)
	metrics.UploadsTotal.WithLabelValues(metrics.UploadStored).Inc()
	metrics.UploadBytes.Observe(float64(doc.FileSize))

	s.log.Info().
		Uint("document_id", doc.ID).
		Str("hash", doc.Hash).
		Str("original_filename", doc.OriginalFilename).
		Int64("size", doc.FileSize).
		Msg("document stored")

	s.invalidate(ctx, s.documentsKey())
	s.publishStored(ctx, doc)

	return doc, nil
}

func (s *DocumentService) validate(in *UploadInput) (string, datatypes.JSON, error) {
	if in.Body == nil {
		return "", nil, invalid("No file uploaded")
	}

	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !s.cfg.Upload.IsAllowedType(mediaType) {
		return "", nil, invalid("Unsupported file type: %s", contentType)
	}

	if limit := s.cfg.Upload.MaxBytes(); limit > 0 && in.Size > limit {
		return "", nil, invalid("File exceeds the %d MB limit", s.cfg.Upload.MaxSizeMB)
	}

	meta, err := parseMetadata(in.Metadata)
	if err != nil {
		return "", nil, err
	}

	return mediaType, meta, nil
}

// parseMetadata 要求 metadata 为 JSON 对象，空值记为 {}.
func parseMetadata(raw string) (datatypes.JSON, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return datatypes.JSON("{}"), nil
	}

	var obj map[string]any
	if err := sonic.UnmarshalString(raw, &obj); err != nil || obj == nil {
		return nil, invalid("metadata must be a JSON object")
	}

	return datatypes.JSON(raw), nil
}

func (s *DocumentService) store(ctx context.Context, in UploadInput, mediaType string, meta datatypes.JSON) (*model.Document, error) {
	name, err := s.newFilename(in.Filename)
	if err != nil {
		return nil, &StorageError{Op: "generate filename", Err: err}
	}

	body := in.Body
	limit := s.cfg.Upload.MaxBytes()

	if limit > 0 {
		body = io.LimitReader(in.Body, limit+1)
	}

	path, written, err := s.blobs.Save(ctx, name, body, in.Size, mediaType)
	if err != nil {
		return nil, &StorageError{Op: "save file", Err: err}
	}

	if limit > 0 && written > limit {
		s.discard(ctx, path)
		return nil, invalid("File exceeds the %d MB limit", s.cfg.Upload.MaxSizeMB)
	}

	hash, err := s.fingerprint(ctx, path)
	if err != nil {
		s.discard(ctx, path)
		return nil, &StorageError{Op: "hash file", Err: err}
	}

	existing, err := s.docs.FindByFingerprint(ctx, hash)

	switch {
	case err == nil:
		s.discard(ctx, path)
		return nil, &ConflictError{DocumentID: existing.ID}
	case !errors.Is(err, store.ErrNotFound):
		s.discard(ctx, path)
		return nil, &StorageError{Op: "find fingerprint", Err: err}
	}

	doc := &model.Document{
		Filename:         name,
		OriginalFilename: filepath.Base(in.Filename),
		FilePath:         path,
		FileSize:         written,
		MimeType:         mediaType,
		UploadDate:       time.Now().UTC(),
		Hash:             hash,
		Metadata:         meta,
	}

	if _, err := s.docs.Create(ctx, doc); err != nil {
		s.discard(ctx, path)

		if !errors.Is(err, store.ErrDuplicateFingerprint) {
			return nil, &StorageError{Op: "create document", Err: err}
		}

		winner, ferr := s.docs.FindByFingerprint(ctx, hash)
		if ferr != nil {
			return nil, &StorageError{Op: "find fingerprint", Err: ferr}
		}

		return nil, &ConflictError{DocumentID: winner.ID}
	}

	return doc, nil
}

// newFilename 生成 <prefix>-<ULID><ext>，与用户文件名无关.
func (s *DocumentService) newFilename(original string) (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}

	prefix := s.cfg.Upload.FilenamePrefix
	if prefix == "" {
		prefix = configs.DefaultFilenamePrefix
	}

	return fmt.Sprintf("%s-%s%s", prefix, id.String(), strings.ToLower(filepath.Ext(filepath.Base(original)))), nil
}

// fingerprint 从存储中读回文件计算指纹，哈希的是实际落盘的字节.
func (s *DocumentService) fingerprint(ctx context.Context, path string) (string, error) {
	rc, err := s.blobs.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return hasher.Sum(rc)
}

func (s *DocumentService) discard(ctx context.Context, path string) {
	if err := s.blobs.Remove(ctx, path); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("failed to remove uploaded file")
	}
}

// List 按上传时间倒序返回全部文档.
func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	docs, err := cached(ctx, &s.deps, s.documentsKey(), s.docs.ListAll)
	if err != nil {
		return nil, &StorageError{Op: "list documents", Err: err}
	}

	if docs == nil {
		docs = []model.Document{}
	}

	return docs, nil
}

// Get 按 id 获取文档.
func (s *DocumentService) Get(ctx context.Context, id uint) (*model.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get document")
	}

	return doc, nil
}

// Delete 删除文档、其查询记录与文件.文件删除失败只记录日志.
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	ctx = context.WithoutCancel(ctx)

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return notFoundOr(err, "get document")
	}

	queries, err := s.queries.ListForDocument(ctx, id)
	if err != nil {
		return &StorageError{Op: "list queries", Err: err}
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return notFoundOr(err, "delete document")
	}

	blobRemoved := true
	if err := s.blobs.Remove(ctx, doc.FilePath); err != nil {
		blobRemoved = false

		s.log.Error().Err(err).Str("path", doc.FilePath).Msg("failed to remove document file")
	}

	s.log.Info().Uint("document_id", id).Int("queries", len(queries)).Msg("document deleted")

	s.invalidate(ctx, s.documentsKey(), s.queriesKey(id))
	s.publishDeleted(ctx, doc, blobRemoved, len(queries))

	return nil
}

// SetEmbedding 设置文档的向量缓存标记.
func (s *DocumentService) SetEmbedding(ctx context.Context, id uint, cached bool) error {
	if err := s.docs.UpdateEmbeddingStatus(ctx, id, cached); err != nil {
		return notFoundOr(err, "update embedding status")
	}

	s.invalidate(ctx, s.documentsKey())

	return nil
}

func (s *DocumentService) publishStored(ctx context.Context, doc *model.Document) {
	if !s.eventsEnabled(s.cfg.Events.Document.Stored) {
		return
	}

	err := queue.PublishDocumentStored(s.mq.Publisher(), queue.DocumentStoredPayload{
		Document:   s.ref(doc),
		UploadedAt: doc.UploadDate,
	}, traceOpts(ctx)...)
	s.recordPublish(queue.TopicDocumentStored, doc.ID, err)
}

func (s *DocumentService) publishDeleted(ctx context.Context, doc *model.Document, blobRemoved bool, queries int) {
	if !s.eventsEnabled(s.cfg.Events.Document.Deleted) {
		return
	}

	err := queue.PublishDocumentDeleted(s.mq.Publisher(), queue.DocumentDeletedPayload{
		Document:       s.ref(doc),
		BlobRemoved:    blobRemoved,
		DeletedQueries: queries,
	}, traceOpts(ctx)...)
	s.recordPublish(queue.TopicDocumentDeleted, doc.ID, err)
}

func (s *DocumentService) recordPublish(topic string, id uint, err error) {
	if err != nil {
		metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		s.log.Warn().Err(err).Str("topic", topic).Uint("document_id", id).Msg("publish event failed")

		return
	}

	metrics.EventsPublished.WithLabelValues(topic, "ok").Inc()
}

func (s *DocumentService) ref(doc *model.Document) queue.DocumentRef {
	return queue.DocumentRef{
		ID:               doc.ID,
		Hash:             doc.Hash,
		Filename:         doc.Filename,
		OriginalFilename: doc.OriginalFilename,
		FilePath:         doc.FilePath,
		FileSize:         doc.FileSize,
		MimeType:         doc.MimeType,
		Backend:          s.blobs.Name(),
	}
}

func traceOpts(ctx context.Context) []func(*queue.EventHeader) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.HasTraceID() {
		return nil
	}

	return []func(*queue.EventHeader){queue.WithTraceID(sc.TraceID().String())}
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrDocumentNotFound
	}

	return &StorageError{Op: op, Err: err}
}

func isValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
