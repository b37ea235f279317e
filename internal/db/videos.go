package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/learntube/internal/types"
)

// UpsertVideos inserts or refreshes video metadata and returns how many rows
// were written. Enrichment columns are left untouched on conflict.
func (db *DB) UpsertVideos(ctx context.Context, videos []types.VideoRecord) (int, error) {
	written := 0
	for _, v := range videos {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO videos (video_id, title, description, channel_title, published_at, duration_seconds, view_count, like_count, topics_source)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (video_id) DO UPDATE
			 SET title = $2, description = $3, channel_title = $4, published_at = $5,
			     duration_seconds = $6, view_count = $7, like_count = $8, topics_source = $9, updated_at = NOW()`,
			v.VideoID, v.Title, v.Description, v.ChannelTitle, v.PublishedAt,
			v.DurationSeconds, v.ViewCount, v.LikeCount, v.TopicsSource,
		)
		if err != nil {
			return written, fmt.Errorf("failed to upsert video %s: %w", v.VideoID, err)
		}
		written++
	}
	return written, nil
}

// GetVideo retrieves a video by ID. Returns nil when not found.
func (db *DB) GetVideo(ctx context.Context, videoID string) (*types.VideoRecord, error) {
	var v types.VideoRecord
	var difficulty *string
	err := db.pool.QueryRow(ctx,
		`SELECT video_id, title, description, COALESCE(channel_title, ''), published_at,
		        COALESCE(duration_seconds, 0), COALESCE(view_count, 0), COALESCE(like_count, 0),
		        topics_source, difficulty, difficulty_confidence, topic_tags,
		        sentiment_score, COALESCE(comment_count_analyzed, 0)
		 FROM videos WHERE video_id = $1`,
		videoID,
	).Scan(&v.VideoID, &v.Title, &v.Description, &v.ChannelTitle, &v.PublishedAt,
		&v.DurationSeconds, &v.ViewCount, &v.LikeCount,
		&v.TopicsSource, &difficulty, &v.DifficultyConfidence, &v.TopicTags,
		&v.SentimentScore, &v.CommentCountAnalyzed)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if difficulty != nil {
		if d, err := types.ParseDifficulty(*difficulty); err == nil {
			v.Difficulty = &d
		}
	}
	return &v, nil
}

// UpdateEnrichment writes NLP-derived signals for a video
func (db *DB) UpdateEnrichment(ctx context.Context, videoID string, difficulty types.Difficulty, confidence float64, topics []string, sentiment *float64, commentsAnalyzed int) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE videos
		 SET difficulty = $1, difficulty_confidence = $2, topic_tags = $3,
		     sentiment_score = $4, comment_count_analyzed = $5, updated_at = NOW()
		 WHERE video_id = $6`,
		string(difficulty), confidence, topics, sentiment, commentsAnalyzed, videoID,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrichment for video %s: %w", videoID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("video not found: %s", videoID)
	}
	return nil
}

// ListVideoIDsMissingEnrichment returns videos that have not been annotated yet
func (db *DB) ListVideoIDsMissingEnrichment(ctx context.Context, limit int) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT video_id FROM videos WHERE difficulty IS NULL ORDER BY created_at ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unenriched videos: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan video id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteVideosOutsideTopics removes videos whose topic tags have no overlap
// with the given set. Untagged videos are kept so enrichment can still run.
func (db *DB) DeleteVideosOutsideTopics(ctx context.Context, topics []string) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM videos
		 WHERE topic_tags IS NOT NULL AND NOT (topic_tags && $1)`,
		topics,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale videos: %w", err)
	}
	return result.RowsAffected(), nil
}
