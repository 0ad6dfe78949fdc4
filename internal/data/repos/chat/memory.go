package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssingh-rookie/LeafWise-API/internal/domain/chat"
	"github.com/ssingh-rookie/LeafWise-API/internal/domain/vectortype"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

type MemoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, m *chat.SemanticMemory) (*chat.SemanticMemory, error)
	// SimilaritySearch returns up to limit rows for userID whose cosine
	// similarity to queryEmbedding is >= minSimilarity, ordered by
	// similarity descending. Issued as raw SQL using pgvector's `<=>`
	// cosine-distance operator (1 - distance = similarity), the same
	// escape hatch the teacher uses for non-ORM-expressible queries.
	SimilaritySearch(ctx context.Context, tx *gorm.DB, userID uuid.UUID, queryEmbedding vectortype.Vector, minSimilarity float64, limit int) ([]SimilarityHit, error)
}

type SimilarityHit struct {
	Memory     *chat.SemanticMemory
	Similarity float64
}

type memoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemoryRepo(db *gorm.DB, baseLog *logger.Logger) MemoryRepo {
	return &memoryRepo{db: db, log: baseLog.With("repo", "SemanticMemoryRepo")}
}

func (r *memoryRepo) Create(ctx context.Context, tx *gorm.DB, m *chat.SemanticMemory) (*chat.SemanticMemory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *memoryRepo) SimilaritySearch(ctx context.Context, tx *gorm.DB, userID uuid.UUID, queryEmbedding vectortype.Vector, minSimilarity float64, limit int) ([]SimilarityHit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 5
	}
	embeddingValue, err := queryEmbedding.Value()
	if err != nil {
		return nil, err
	}

	type row struct {
		chat.SemanticMemory
		Similarity float64 `gorm:"column:similarity"`
	}
	var rows []row
	err = transaction.WithContext(ctx).Raw(`
		SELECT *, 1 - (embedding <=> ?) AS similarity
		FROM semantic_memories
		WHERE user_id = ?
		  AND 1 - (embedding <=> ?) >= ?
		ORDER BY similarity DESC
		LIMIT ?
	`, embeddingValue, userID, embeddingValue, minSimilarity, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]SimilarityHit, 0, len(rows))
	for i := range rows {
		mem := rows[i].SemanticMemory
		out = append(out, SimilarityHit{Memory: &mem, Similarity: rows[i].Similarity})
	}
	return out, nil
}
