package db

import (
	"context"
	"fmt"

	"github.com/jonathan/learntube/internal/recommend"
	"github.com/jonathan/learntube/internal/types"
)

// InsertFeedback records one feedback event
func (db *DB) InsertFeedback(ctx context.Context, event types.FeedbackEvent) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO feedback (user_id, video_id, feedback_type)
		 VALUES ($1, $2, $3)`,
		event.UserID, event.VideoID, string(event.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// CountsByType aggregates a user's feedback history per feedback type.
// Unknown types stored by older writers are skipped.
func (db *DB) CountsByType(ctx context.Context, userID string) (recommend.FeedbackCounts, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT feedback_type, COUNT(*)
		 FROM feedback WHERE user_id = $1
		 GROUP BY feedback_type`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	defer rows.Close()

	counts := recommend.FeedbackCounts{}
	for rows.Next() {
		var raw string
		var count int
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("failed to scan feedback count: %w", err)
		}
		ft, err := types.ParseFeedbackType(raw)
		if err != nil {
			continue
		}
		counts[ft] = count
	}
	return counts, nil
}
