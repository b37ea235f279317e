package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/learntube/internal/types"
)

// UpsertVideoEmbedding stores or replaces the embedding vector for a video
func (db *DB) UpsertVideoEmbedding(ctx context.Context, videoID string, embedding []float32) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO video_embeddings (video_id, embedding)
		 VALUES ($1, $2::vector)
		 ON CONFLICT (video_id) DO UPDATE SET embedding = $2::vector, updated_at = NOW()`,
		videoID, formatVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding for video %s: %w", videoID, err)
	}
	return nil
}

// UpsertUserEmbedding stores or replaces the embedding vector for a user
func (db *DB) UpsertUserEmbedding(ctx context.Context, userID string, embedding []float32) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_embeddings (user_id, embedding)
		 VALUES ($1, $2::vector)
		 ON CONFLICT (user_id) DO UPDATE SET embedding = $2::vector, updated_at = NOW()`,
		userID, formatVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding for user %s: %w", userID, err)
	}
	return nil
}

// GetUserEmbedding retrieves a user's embedding. Returns nil when the user
// has no stored vector.
func (db *DB) GetUserEmbedding(ctx context.Context, userID string) ([]float32, error) {
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT embedding::text FROM user_embeddings WHERE user_id = $1`,
		userID,
	).Scan(&text)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user embedding: %w", err)
	}
	return parseVector(text)
}

// SearchVideoEmbeddings runs cosine nearest-neighbor search against the video
// index and returns candidates with their similarity and filter signals.
// pgvector's <=> operator is cosine distance, so similarity is 1 - distance.
func (db *DB) SearchVideoEmbeddings(ctx context.Context, embedding []float32, limit int) ([]types.CandidateRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT v.video_id,
		        1 - (e.embedding <=> $1::vector) AS similarity,
		        v.difficulty, v.sentiment_score, v.topic_tags
		 FROM video_embeddings e
		 JOIN videos v ON v.video_id = e.video_id
		 ORDER BY e.embedding <=> $1::vector
		 LIMIT $2`,
		formatVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	candidates := make([]types.CandidateRecord, 0, limit)
	for rows.Next() {
		var c types.CandidateRecord
		var difficulty *string
		if err := rows.Scan(&c.VideoID, &c.Similarity, &difficulty, &c.SentimentScore, &c.TopicTags); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if difficulty != nil {
			if d, err := types.ParseDifficulty(*difficulty); err == nil {
				c.Difficulty = &d
			}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// formatVector renders a float32 slice in pgvector text form, e.g. [1,0.5,2]
func formatVector(embedding []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// parseVector reads pgvector text form back into a float32 slice
func parseVector(text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, fmt.Errorf("invalid vector text %q", text)
	}
	inner := trimmed[1 : len(trimmed)-1]
	if inner == "" {
		return []float32{}, nil
	}

	parts := strings.Split(inner, ",")
	vector := make([]float32, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		vector = append(vector, float32(f))
	}
	return vector, nil
}
