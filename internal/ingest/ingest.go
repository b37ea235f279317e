// Package ingest coordinates content acquisition: YouTube discovery,
// NLP enrichment, embedding, and the periodic refresh workflow.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/learntube/internal/nlp"
	"github.com/jonathan/learntube/internal/recommend"
	"github.com/jonathan/learntube/internal/types"
	"github.com/jonathan/learntube/internal/youtube"
)

const (
	topicConcurrency = 3
	videoConcurrency = 4
	commentLimit     = 20
	enrichBatchSize  = 50
)

// VideoSource finds candidate videos and their comments.
type VideoSource interface {
	SearchVideos(ctx context.Context, query string, filters youtube.SearchFilters) ([]youtube.Video, error)
	FetchTopComments(ctx context.Context, videoID string, limit int) ([]string, error)
}

// VideoStore persists video metadata and enrichment signals.
type VideoStore interface {
	UpsertVideos(ctx context.Context, videos []types.VideoRecord) (int, error)
	GetVideo(ctx context.Context, videoID string) (*types.VideoRecord, error)
	UpdateEnrichment(ctx context.Context, videoID string, difficulty types.Difficulty, confidence float64, topics []string, sentiment *float64, commentsAnalyzed int) error
	ListVideoIDsMissingEnrichment(ctx context.Context, limit int) ([]string, error)
	DeleteVideosOutsideTopics(ctx context.Context, topics []string) (int64, error)
}

// Annotator derives NLP signals for video content.
type Annotator interface {
	AnnotateContent(ctx context.Context, text string) (*nlp.Annotation, error)
	ScoreCommentSentiment(ctx context.Context, comments []string) (*float64, int, error)
}

// Embedder computes and stores a video's embedding vector.
type Embedder interface {
	EmbedVideo(ctx context.Context, video types.VideoRecord) ([]float32, error)
}

// Service runs ingestion and enrichment against its collaborators.
type Service struct {
	source    VideoSource
	store     VideoStore
	annotator Annotator
	embedder  Embedder
}

// NewService creates an ingestion Service.
func NewService(source VideoSource, store VideoStore, annotator Annotator, embedder Embedder) *Service {
	return &Service{
		source:    source,
		store:     store,
		annotator: annotator,
		embedder:  embedder,
	}
}

// IngestFromYouTube searches each requested topic, stores the discovered
// videos, and embeds them. Topics are searched concurrently; the stored
// batch preserves topic order and dedupes videos found under several topics.
func (s *Service) IngestFromYouTube(ctx context.Context, req types.IngestRequest) (*types.IngestResponse, error) {
	filters := youtube.SearchFilters{
		MinViewCount:    uint64(max(req.MinViewCount, 0)),
		MaxAgeDays:      req.MaxAgeDays,
		ExcludeKeywords: req.ExcludeKeywords,
		MaxResults:      req.MaxResultsPerTopic,
	}
	if len(filters.ExcludeKeywords) == 0 {
		filters.ExcludeKeywords = types.DefaultExcludeKeywords()
	}

	perTopic := make([][]types.VideoRecord, len(req.Topics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(topicConcurrency)
	for i, topic := range req.Topics {
		g.Go(func() error {
			found, err := s.source.SearchVideos(gctx, topic, filters)
			if err != nil {
				return fmt.Errorf("search failed for topic %q: %w", topic, err)
			}
			records := make([]types.VideoRecord, 0, len(found))
			for _, v := range found {
				records = append(records, toVideoRecord(v, topic))
			}
			perTopic[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	attempted := 0
	seen := map[string]bool{}
	batch := make([]types.VideoRecord, 0)
	for _, records := range perTopic {
		for _, record := range records {
			attempted++
			if seen[record.VideoID] {
				continue
			}
			seen[record.VideoID] = true
			batch = append(batch, record)
		}
	}

	inserted, err := s.store.UpsertVideos(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to store ingested videos: %w", err)
	}

	s.embedBatch(ctx, batch)

	ids := make([]string, 0, len(batch))
	for _, record := range batch {
		ids = append(ids, record.VideoID)
	}
	return &types.IngestResponse{
		Inserted:  inserted,
		Attempted: attempted,
		Skipped:   attempted - inserted,
		Topics:    req.Topics,
		VideoIDs:  ids,
	}, nil
}

// embedBatch embeds videos concurrently. Embedding failures are logged and
// do not fail the batch; the refresh workflow retries them later.
func (s *Service) embedBatch(ctx context.Context, videos []types.VideoRecord) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, videoConcurrency)
	for _, video := range videos {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := s.embedder.EmbedVideo(ctx, video); err != nil {
				log.Printf("embedding failed for video %s: %v", video.VideoID, err)
			}
		}()
	}
	wg.Wait()
}

// EnrichVideo annotates one video with difficulty, topics and comment
// sentiment, persists the signals, and refreshes the video's embedding so
// topic tags influence search.
func (s *Service) EnrichVideo(ctx context.Context, videoID string) (*types.EnrichmentResult, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load video %s: %w", videoID, err)
	}
	if video == nil {
		return nil, &recommend.ErrVideoNotFound{VideoID: videoID}
	}

	annotation, err := s.annotator.AnnotateContent(ctx, contentText(*video))
	if err != nil {
		return nil, fmt.Errorf("annotation failed for video %s: %w", videoID, err)
	}

	comments, err := s.source.FetchTopComments(ctx, videoID, commentLimit)
	if err != nil {
		log.Printf("comment fetch failed for video %s, skipping sentiment: %v", videoID, err)
		comments = nil
	}
	sentiment, analyzed, err := s.annotator.ScoreCommentSentiment(ctx, comments)
	if err != nil {
		return nil, fmt.Errorf("sentiment scoring failed for video %s: %w", videoID, err)
	}

	err = s.store.UpdateEnrichment(ctx, videoID,
		annotation.Difficulty, annotation.DifficultyConfidence, annotation.TopicTags,
		sentiment, analyzed)
	if err != nil {
		return nil, err
	}

	video.Difficulty = &annotation.Difficulty
	video.DifficultyConfidence = &annotation.DifficultyConfidence
	video.TopicTags = annotation.TopicTags
	video.SentimentScore = sentiment
	video.CommentCountAnalyzed = analyzed
	if _, err := s.embedder.EmbedVideo(ctx, *video); err != nil {
		log.Printf("re-embedding failed for video %s: %v", videoID, err)
	}

	return &types.EnrichmentResult{
		VideoID:              videoID,
		Difficulty:           string(annotation.Difficulty),
		DifficultyConfidence: annotation.DifficultyConfidence,
		SentimentScore:       sentiment,
		CommentCountAnalyzed: analyzed,
		TopicTags:            annotation.TopicTags,
	}, nil
}

// RefreshSummary reports what one refresh pass did.
type RefreshSummary struct {
	Deleted   int64                 `json:"deleted"`
	Ingested  *types.IngestResponse `json:"ingested"`
	Enriched  []string              `json:"enriched"`
	Failed    []string              `json:"failed"`
	StartedAt time.Time             `json:"started_at"`
}

// RefreshWorkflow drops videos outside the topic set, ingests fresh content
// for those topics, and enriches anything still missing NLP signals.
// Per-video enrichment failures are collected, not fatal.
func (s *Service) RefreshWorkflow(ctx context.Context, req types.IngestRequest) (*RefreshSummary, error) {
	summary := &RefreshSummary{StartedAt: time.Now().UTC()}

	deleted, err := s.store.DeleteVideosOutsideTopics(ctx, req.Topics)
	if err != nil {
		return nil, err
	}
	summary.Deleted = deleted

	ingested, err := s.IngestFromYouTube(ctx, req)
	if err != nil {
		return nil, err
	}
	summary.Ingested = ingested

	pending, err := s.store.ListVideoIDsMissingEnrichment(ctx, enrichBatchSize)
	if err != nil {
		return nil, err
	}
	summary.Enriched = make([]string, 0, len(pending))
	summary.Failed = []string{}
	for _, videoID := range pending {
		if _, err := s.EnrichVideo(ctx, videoID); err != nil {
			log.Printf("enrichment failed for video %s: %v", videoID, err)
			summary.Failed = append(summary.Failed, videoID)
			continue
		}
		summary.Enriched = append(summary.Enriched, videoID)
	}
	return summary, nil
}

func toVideoRecord(v youtube.Video, topic string) types.VideoRecord {
	record := types.VideoRecord{
		VideoID:         v.VideoID,
		Title:           v.Title,
		Description:     v.Description,
		ChannelTitle:    v.ChannelTitle,
		DurationSeconds: int(v.DurationSeconds),
		ViewCount:       int64(v.ViewCount),
		LikeCount:       int64(v.LikeCount),
		TopicsSource:    []string{topic},
	}
	if !v.PublishedAt.IsZero() {
		published := v.PublishedAt
		record.PublishedAt = &published
	}
	return record
}

func contentText(video types.VideoRecord) string {
	parts := make([]string, 0, 2)
	if video.Title != "" {
		parts = append(parts, video.Title)
	}
	if desc := strings.TrimSpace(video.Description); desc != "" {
		parts = append(parts, desc)
	}
	return strings.Join(parts, "\n\n")
}
