package service

import (
	"context"

	"github.com/yeisme/docchat/pkg/internal/storage/store"
)

// LibraryStats 文档库统计.
type LibraryStats struct {
	Documents int64 `json:"documents"`
	Embedded  int64 `json:"embedded"`
	Queries   int64 `json:"queries"`
	Bytes     int64 `json:"bytes"`
}

// CollectLibraryStats 统计文档数、已缓存向量的文档数、查询数与文件总大小.
func CollectLibraryStats(ctx context.Context, backend store.Backend) (LibraryStats, error) {
	docs, err := backend.Documents().ListAll(ctx)
	if err != nil {
		return LibraryStats{}, &StorageError{Op: "list documents", Err: err}
	}

	queries, err := backend.Queries().Count(ctx)
	if err != nil {
		return LibraryStats{}, &StorageError{Op: "count queries", Err: err}
	}

	stats := LibraryStats{Documents: int64(len(docs)), Queries: queries}

	for i := range docs {
		stats.Bytes += docs[i].FileSize

		if docs[i].EmbeddingCached {
			stats.Embedded++
		}
	}

	return stats, nil
}
