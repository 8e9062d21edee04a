package store

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/yeisme/docchat/pkg/internal/model"
)

// Memory 进程内存储，所有检查与写入在同一把锁内完成.
type Memory struct {
	mu sync.RWMutex

	docs    map[uint]model.Document
	byHash  map[string]uint
	queries map[uint]model.Query

	nextDocID   uint
	nextQueryID uint

	now func() time.Time
}

// NewMemory 创建空的内存存储.
func NewMemory() *Memory {
	return &Memory{
		docs:    make(map[uint]model.Document),
		byHash:  make(map[string]uint),
		queries: make(map[uint]model.Query),
		now:     time.Now,
	}
}

// Documents 返回文档存储视图.
func (m *Memory) Documents() DocumentStore { return memoryDocuments{m} }

// Queries 返回查询记录存储视图.
func (m *Memory) Queries() QueryLog { return memoryQueries{m} }

// Name 实现名称.
func (m *Memory) Name() string { return "memory" }

// Ping 内存存储始终可用.
func (m *Memory) Ping(context.Context) error { return nil }

type memoryDocuments struct{ m *Memory }

func (s memoryDocuments) Create(_ context.Context, doc *model.Document) (uint, error) {
	m := s.m

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byHash[doc.Hash]; ok {
		return 0, ErrDuplicateFingerprint
	}

	m.nextDocID++
	doc.ID = m.nextDocID

	if doc.UploadDate.IsZero() {
		doc.UploadDate = m.now()
	}

	if len(doc.Metadata) == 0 {
		doc.Metadata = datatypes.JSON("{}")
	}

	m.docs[doc.ID] = cloneDocument(*doc)
	m.byHash[doc.Hash] = doc.ID

	return doc.ID, nil
}

func (s memoryDocuments) FindByFingerprint(_ context.Context, hash string) (*model.Document, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byHash[hash]
	if !ok {
		return nil, ErrNotFound
	}

	doc := cloneDocument(m.docs[id])

	return &doc, nil
}

func (s memoryDocuments) ListAll(context.Context) ([]model.Document, error) {
	m := s.m

	m.mu.RLock()
	out := make([]model.Document, 0, len(m.docs))

	for _, d := range m.docs {
		out = append(out, cloneDocument(d))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadDate.Equal(out[j].UploadDate) {
			return out[i].UploadDate.After(out[j].UploadDate)
		}

		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (s memoryDocuments) UpdateEmbeddingStatus(_ context.Context, id uint, cached bool) error {
	return s.update(id, func(d *model.Document) { d.EmbeddingCached = cached })
}

func (s memoryDocuments) Touch(_ context.Context, id uint, at time.Time) error {
	return s.update(id, func(d *model.Document) { d.LastAccessed = &at })
}

func (s memoryDocuments) update(id uint, fn func(*model.Document)) error {
	m := s.m

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}

	fn(&d)
	m.docs[id] = d

	return nil
}

func (s memoryDocuments) Get(_ context.Context, id uint) (*model.Document, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}

	doc := cloneDocument(d)

	return &doc, nil
}

func (s memoryDocuments) Delete(_ context.Context, id uint) error {
	m := s.m

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}

	for qid, q := range m.queries {
		if q.DocumentID == id {
			delete(m.queries, qid)
		}
	}

	delete(m.byHash, d.Hash)
	delete(m.docs, id)

	return nil
}

func (s memoryDocuments) Count(context.Context) (int64, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	return int64(len(s.m.docs)), nil
}

type memoryQueries struct{ m *Memory }

func (s memoryQueries) Create(_ context.Context, q *model.Query) (uint, error) {
	m := s.m

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[q.DocumentID]; !ok {
		return 0, ErrInvalidReference
	}

	m.nextQueryID++
	q.ID = m.nextQueryID

	if q.QueryDate.IsZero() {
		q.QueryDate = m.now()
	}

	stored := *q
	stored.Document = nil

	if q.RelevanceScore != nil {
		score := *q.RelevanceScore
		stored.RelevanceScore = &score
	}
	m.queries[q.ID] = stored

	return q.ID, nil
}

func (s memoryQueries) ListForDocument(_ context.Context, documentID uint) ([]model.Query, error) {
	m := s.m

	m.mu.RLock()
	out := make([]model.Query, 0)

	for _, q := range m.queries {
		if q.DocumentID == documentID {
			out = append(out, q)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].QueryDate.Equal(out[j].QueryDate) {
			return out[i].QueryDate.After(out[j].QueryDate)
		}

		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (s memoryQueries) Count(context.Context) (int64, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	return int64(len(s.m.queries)), nil
}

// cloneDocument 复制文档，避免调用方修改内部状态.
func cloneDocument(d model.Document) model.Document {
	if d.LastAccessed != nil {
		t := *d.LastAccessed
		d.LastAccessed = &t
	}

	d.Metadata = datatypes.JSON(bytes.Clone(d.Metadata))

	return d
}
