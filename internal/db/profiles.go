package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/learntube/internal/types"
)

// UpsertProfile stores or replaces a user's onboarding profile
func (db *DB) UpsertProfile(ctx context.Context, profile types.UserProfile) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_profiles (user_id, goals, main_objective, weekly_time)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET goals = $2, main_objective = $3, weekly_time = $4, updated_at = NOW()`,
		profile.UserID, profile.Goals, profile.MainObjective, profile.WeeklyTime,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile for user %s: %w", profile.UserID, err)
	}
	return nil
}

// GetProfile retrieves a user's onboarding profile. Returns nil when the user
// has not completed onboarding.
func (db *DB) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	var p types.UserProfile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, goals, main_objective, weekly_time
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Goals, &p.MainObjective, &p.WeeklyTime)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// UpsertPreferences stores or replaces a user's onboarding preferences
func (db *DB) UpsertPreferences(ctx context.Context, prefs types.UserPreferences) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_preferences (user_id, skill_levels, preferred_video_length, learning_style, difficulty_preference)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET skill_levels = $2, preferred_video_length = $3, learning_style = $4, difficulty_preference = $5, updated_at = NOW()`,
		prefs.UserID, prefs.SkillLevels, prefs.PreferredVideoLength, prefs.LearningStyle, prefs.DifficultyPreference,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences for user %s: %w", prefs.UserID, err)
	}
	return nil
}

// GetPreferences retrieves a user's onboarding preferences. Returns nil when
// the user has not completed onboarding.
func (db *DB) GetPreferences(ctx context.Context, userID string) (*types.UserPreferences, error) {
	var p types.UserPreferences
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, skill_levels, preferred_video_length, learning_style, difficulty_preference
		 FROM user_preferences WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.SkillLevels, &p.PreferredVideoLength, &p.LearningStyle, &p.DifficultyPreference)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &p, nil
}
