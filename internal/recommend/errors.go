package recommend

import "fmt"

// ErrUserEmbeddingNotFound indicates the user has no stored embedding, either
// because they never ran onboarding/embedding or the stored vector is empty.
// It distinguishes "not onboarded yet" from a collaborator outage.
type ErrUserEmbeddingNotFound struct {
	UserID string
}

func (e *ErrUserEmbeddingNotFound) Error() string {
	return fmt.Sprintf("user embedding not found for %s: run the embedding endpoint first", e.UserID)
}

// ErrVideoNotFound indicates a referenced video has no stored metadata.
type ErrVideoNotFound struct {
	VideoID string
}

func (e *ErrVideoNotFound) Error() string {
	return fmt.Sprintf("video %s not found", e.VideoID)
}
