package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/learntube/internal/config"
	"github.com/jonathan/learntube/internal/db"
	"github.com/jonathan/learntube/internal/embeddings"
	"github.com/jonathan/learntube/internal/explain"
	"github.com/jonathan/learntube/internal/ingest"
	"github.com/jonathan/learntube/internal/llm"
	"github.com/jonathan/learntube/internal/nlp"
	"github.com/jonathan/learntube/internal/recommend"
	"github.com/jonathan/learntube/internal/server/middleware"
	"github.com/jonathan/learntube/internal/server/ratelimit"
	"github.com/jonathan/learntube/internal/types"
	"github.com/jonathan/learntube/internal/youtube"
)

// RecommendService runs the recommendation pipeline.
type RecommendService interface {
	Recommend(ctx context.Context, p recommend.Params) (*recommend.Recommendation, error)
	RecommendWithExplanations(ctx context.Context, p recommend.Params) (*recommend.ExplainedRecommendation, error)
	ExplainVideo(ctx context.Context, userID, videoID string, meta types.RecommendationMeta) (*types.ExplanationResult, error)
}

// IngestService runs content acquisition and enrichment.
type IngestService interface {
	IngestFromYouTube(ctx context.Context, req types.IngestRequest) (*types.IngestResponse, error)
	EnrichVideo(ctx context.Context, videoID string) (*types.EnrichmentResult, error)
	RefreshWorkflow(ctx context.Context, req types.IngestRequest) (*ingest.RefreshSummary, error)
}

// EmbedService computes and stores embeddings.
type EmbedService interface {
	EmbedVideo(ctx context.Context, video types.VideoRecord) ([]float32, error)
	EmbedUser(ctx context.Context, userID string, profile types.UserProfile, prefs types.UserPreferences) ([]float32, error)
}

// DataStore is the subset of database operations the handlers call directly.
type DataStore interface {
	InsertFeedback(ctx context.Context, event types.FeedbackEvent) error
	CountsByType(ctx context.Context, userID string) (recommend.FeedbackCounts, error)
	UpsertProfile(ctx context.Context, profile types.UserProfile) error
	UpsertPreferences(ctx context.Context, prefs types.UserPreferences) error
	GetProfile(ctx context.Context, userID string) (*types.UserProfile, error)
	GetPreferences(ctx context.Context, userID string) (*types.UserPreferences, error)
	GetVideo(ctx context.Context, videoID string) (*types.VideoRecord, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	llmClient   llm.Client
	cfg         *config.Config
	recommender RecommendService
	ingest      IngestService
	embedder    EmbedService
	store       DataStore
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
}

// New creates a server instance wired to real collaborators.
func New(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	ytClient, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	explainer := explain.NewExplainer(llmClient)
	annotator := nlp.NewAnnotator(llmClient)
	embedService := embeddings.NewService(llmClient, database)
	ingestService := ingest.NewService(ytClient, database, annotator, embedService)
	recommender := recommend.NewRecommender(database, database, database, database, database, explainer)

	s := &Server{
		db:          database,
		llmClient:   llmClient,
		cfg:         cfg,
		recommender: recommender,
		ingest:      ingestService,
		embedder:    embedService,
		store:       database,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // ingestion and batch explanation calls are slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request multiplexer.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.Auth(s.jwtService.AsTokenValidator())

	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /v1/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", s.authHandler.Login)
	mux.Handle("PUT /v1/auth/password", requireAuth(http.HandlerFunc(s.authHandler.UpdatePassword)))

	// Feedback and onboarding
	mux.HandleFunc("POST /v1/feedback", s.handleSubmitFeedback)
	mux.HandleFunc("GET /v1/feedback/tuning/{user_id}", s.handleFeedbackTuning)
	mux.HandleFunc("POST /v1/onboarding", s.handleOnboarding)

	// Recommendations and explanations
	mux.HandleFunc("GET /v1/recommendations/{user_id}", s.handleRecommendations)
	mux.HandleFunc("POST /v1/explanations/recommendations", s.handleExplainRecommendations)
	mux.HandleFunc("POST /v1/explanations/video", s.handleExplainVideo)
	mux.HandleFunc("POST /v1/explanations/batch", s.handleExplainBatch)

	// Content pipeline
	mux.HandleFunc("POST /v1/ingest/youtube", s.handleIngestYouTube)
	mux.HandleFunc("POST /v1/enrich/videos/{id}", s.handleEnrichVideo)
	mux.HandleFunc("POST /v1/embeddings/videos/{id}", s.handleEmbedVideo)
	mux.HandleFunc("POST /v1/embeddings/users/{id}", s.handleEmbedUser)
	mux.HandleFunc("POST /v1/workflow/refresh", s.handleWorkflowRefresh)

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("LLM client close failed: %v", err)
		}
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID identifies the client by IP address.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
