// Package youtube wraps the YouTube Data API v3 for curated content discovery.
package youtube

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

const (
	defaultMaxResults = 10
	defaultCommentCap = 20
	searchPageSize    = 25
)

// SearchFilters narrows raw search results to content worth ingesting.
type SearchFilters struct {
	MinViewCount    uint64
	MaxAgeDays      int
	ExcludeKeywords []string
	MaxResults      int
}

// Video is the metadata we keep from a YouTube lookup.
type Video struct {
	VideoID         string
	Title           string
	Description     string
	ChannelTitle    string
	PublishedAt     time.Time
	DurationSeconds int64
	ViewCount       uint64
	LikeCount       uint64
}

// Client talks to the YouTube Data API.
type Client struct {
	svc *yt.Service
}

// NewClient creates a Client authenticated with an API key.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// SearchVideos runs a two-phase lookup: search.list for candidate IDs, then
// videos.list for statistics and duration, applying the filters to the
// hydrated results. Result order follows search relevance.
func (c *Client) SearchVideos(ctx context.Context, query string, filters SearchFilters) ([]Video, error) {
	maxResults := filters.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	call := c.svc.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(query).
		Type("video").
		MaxResults(searchPageSize)
	if filters.MaxAgeDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -filters.MaxAgeDays)
		call = call.PublishedAfter(cutoff.UTC().Format(time.RFC3339))
	}

	searchResp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed for %q: %w", query, err)
	}

	ids := make([]string, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return []Video{}, nil
	}

	videosResp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Context(ctx).
		Id(ids...).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube video lookup failed: %w", err)
	}

	byID := make(map[string]*yt.Video, len(videosResp.Items))
	for _, v := range videosResp.Items {
		byID[v.Id] = v
	}

	videos := make([]Video, 0, maxResults)
	for _, id := range ids {
		if len(videos) >= maxResults {
			break
		}
		raw, ok := byID[id]
		if !ok {
			continue
		}
		video, ok := hydrate(raw)
		if !ok {
			continue
		}
		if !passesFilters(video, filters) {
			continue
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// FetchTopComments returns up to limit plain-text comments ordered by
// relevance. Videos with comments disabled yield an empty slice, not an error.
func (c *Client) FetchTopComments(ctx context.Context, videoID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultCommentCap
	}

	resp, err := c.svc.CommentThreads.List([]string{"snippet"}).
		Context(ctx).
		VideoId(videoID).
		Order("relevance").
		TextFormat("plainText").
		MaxResults(int64(limit)).
		Do()
	if err != nil {
		if isCommentsDisabled(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("comment lookup failed for video %s: %w", videoID, err)
	}

	comments := make([]string, 0, len(resp.Items))
	for _, thread := range resp.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		text := strings.TrimSpace(thread.Snippet.TopLevelComment.Snippet.TextDisplay)
		if text != "" {
			comments = append(comments, text)
		}
	}
	return comments, nil
}

func hydrate(raw *yt.Video) (Video, bool) {
	if raw.Snippet == nil {
		return Video{}, false
	}
	video := Video{
		VideoID:      raw.Id,
		Title:        raw.Snippet.Title,
		Description:  raw.Snippet.Description,
		ChannelTitle: raw.Snippet.ChannelTitle,
	}
	if t, err := time.Parse(time.RFC3339, raw.Snippet.PublishedAt); err == nil {
		video.PublishedAt = t
	}
	if raw.ContentDetails != nil {
		if secs, err := parseISODuration(raw.ContentDetails.Duration); err == nil {
			video.DurationSeconds = secs
		}
	}
	if raw.Statistics != nil {
		video.ViewCount = raw.Statistics.ViewCount
		video.LikeCount = raw.Statistics.LikeCount
	}
	return video, true
}

func passesFilters(v Video, filters SearchFilters) bool {
	if v.ViewCount < filters.MinViewCount {
		return false
	}
	return !containsKeyword(v.Title, filters.ExcludeKeywords)
}

// containsKeyword does a case-insensitive substring match against the title.
func containsKeyword(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func isCommentsDisabled(err error) bool {
	return strings.Contains(err.Error(), "commentsDisabled")
}

// parseISODuration converts an ISO 8601 duration like PT1H2M3S to seconds.
// Date components longer than days do not occur in video durations.
func parseISODuration(s string) (int64, error) {
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var total int64
	var number strings.Builder
	inTime := false
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			number.WriteRune(r)
		case r == 'T':
			inTime = true
		default:
			if number.Len() == 0 {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			n, err := strconv.ParseInt(number.String(), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", s, err)
			}
			number.Reset()
			switch {
			case r == 'D':
				total += n * 86400
			case r == 'H' && inTime:
				total += n * 3600
			case r == 'M' && inTime:
				total += n * 60
			case r == 'S' && inTime:
				total += n
			default:
				return 0, fmt.Errorf("unsupported duration component %q in %q", r, s)
			}
		}
	}
	if number.Len() != 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return total, nil
}
