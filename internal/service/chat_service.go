package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"reelchat-backend/internal/config"
	"reelchat-backend/internal/genres"
	"reelchat-backend/internal/images"
	"reelchat-backend/internal/model"
	"reelchat-backend/internal/recommender"
	"reelchat-backend/internal/storage"
	"reelchat-backend/pkg/logger"

	"github.com/google/uuid"
)

const defaultSessionTitle = "New chat"

// apologyText replaces the assistant turn when the backend fails. The raw
// error is logged, never rendered.
const apologyText = "Sorry, something went wrong while I was looking for recommendations. Please try again in a moment."

// guidanceText replaces an empty result set so the user always gets
// actionable text.
const guidanceText = `I couldn't find anything for that. Try asking for something like "I want something funny and light-hearted", "Show me action movies from the 90s", or "a thriller series like Breaking Bad".`

// RecommendationSource is the slice of the backend the session controller
// consumes.
type RecommendationSource interface {
	Recommendations(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error)
	MoodRecommendations(ctx context.Context, query model.MoodQuery) (*recommender.Envelope, error)
	Trending(ctx context.Context, mediaType, timeWindow string) (*recommender.Envelope, error)
	Popular(ctx context.Context, mediaType string, page int) (*recommender.Envelope, error)
}

// pendingRequest is the at-most-one outstanding request per session. alive
// is the liveness token: every continuation checks it before mutating
// history, so a canceled request can never overwrite newer state.
type pendingRequest struct {
	ctx    context.Context
	cancel context.CancelFunc
	alive  atomic.Bool
}

type ChatService struct {
	storage    storage.Storage
	backend    RecommendationSource
	normalizer *Normalizer
	pacer      *Pacer
	limit      int

	mu      sync.Mutex
	pending map[string]*pendingRequest

	sessionCfg config.SessionConfig
}

func NewChatService(cfg *config.Config, backend RecommendationSource, catalog *genres.Catalog) *ChatService {
	store := storage.NewMemoryStorage()
	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize storage: %v", err)
	}

	builder := images.NewBuilder(cfg.Images.BaseURL, cfg.Images.PosterSize, cfg.Images.BackdropSize)

	cs := &ChatService{
		storage:    store,
		backend:    backend,
		normalizer: NewNormalizer(catalog, builder),
		pacer:      NewPacer(cfg.Pacer.Interval),
		limit:      cfg.Chat.ResultLimit,
		pending:    make(map[string]*pendingRequest),
		sessionCfg: cfg.Session,
	}

	if cfg.Session.CleanupInterval > 0 && cfg.Session.TTL > 0 {
		go cs.cleanupOldSessions()
	}

	return cs
}

func (s *ChatService) CreateSession(title string) (*model.Session, error) {
	if title == "" {
		title = defaultSessionTitle + " " + time.Now().Format("2006-01-02 15:04")
	}

	session := &model.Session{
		ID:        uuid.NewString(),
		Title:     title,
		Turns:     make([]model.Turn, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (s *ChatService) GetSession(sessionID string) (*model.Session, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (s *ChatService) GetSessionTurns(sessionID string) ([]model.Turn, error) {
	turns, err := s.storage.GetTurns(sessionID)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}

	return turns, nil
}

func (s *ChatService) GetAllSessions() ([]*model.Session, error) {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

// DeleteSession cancels any in-flight request for the session and removes it.
func (s *ChatService) DeleteSession(sessionID string) error {
	s.cancelPending(sessionID)

	if err := s.storage.DeleteSession(sessionID); err != nil {
		if err == storage.ErrSessionNotFound {
			return fmt.Errorf("session not found: %s", sessionID)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// ClearSession cancels any in-flight request and empties the session's
// history. Safe to call redundantly.
func (s *ChatService) ClearSession(sessionID string) error {
	s.cancelPending(sessionID)

	if err := s.storage.ClearTurns(sessionID); err != nil {
		if err == storage.ErrSessionNotFound {
			return fmt.Errorf("session not found: %s", sessionID)
		}
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}

// Ask submits a free-text query for the session. Paced updates arrive on the
// first channel; rejected input (empty text, busy session, unknown session)
// on the second. Backend failures are not errors here: they become the
// apology turn.
func (s *ChatService) Ask(sessionID, message string) (<-chan model.ChatChunk, <-chan error) {
	respChan := make(chan model.ChatChunk, 64)
	errChan := make(chan error, 1)

	query, err := BuildTextQuery(message, s.limit)
	if err != nil {
		failChat(respChan, errChan, err)
		return respChan, errChan
	}

	s.submit(sessionID, query.Query, func(ctx context.Context) (*recommender.Envelope, error) {
		return s.backend.Recommendations(ctx, query)
	}, respChan, errChan)

	return respChan, errChan
}

// AskMood submits a structured mood query for the session. The phrased form
// of the tuple becomes the user turn text.
func (s *ChatService) AskMood(sessionID string, req model.MoodChatRequest) (<-chan model.ChatChunk, <-chan error) {
	respChan := make(chan model.ChatChunk, 64)
	errChan := make(chan error, 1)

	query, err := BuildMoodQuery(req.Mood, req.EnergyLevel, req.TimeAvailableMinutes, s.limit)
	if err != nil {
		failChat(respChan, errChan, err)
		return respChan, errChan
	}

	s.submit(sessionID, query.Query, func(ctx context.Context) (*recommender.Envelope, error) {
		return s.backend.MoodRecommendations(ctx, query)
	}, respChan, errChan)

	return respChan, errChan
}

// Trending proxies the backend's trending feed through the normalizer.
func (s *ChatService) Trending(ctx context.Context, mediaType, timeWindow string) (*model.ChatResults, error) {
	envelope, err := s.backend.Trending(ctx, mediaType, timeWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending: %w", err)
	}

	items, actors := s.normalizer.Normalize(envelope.Recommendations)
	return &model.ChatResults{Items: items, Actors: actors, TotalResults: envelope.TotalResults}, nil
}

// Popular proxies the backend's popular feed through the normalizer.
func (s *ChatService) Popular(ctx context.Context, mediaType string, page int) (*model.ChatResults, error) {
	envelope, err := s.backend.Popular(ctx, mediaType, page)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch popular: %w", err)
	}

	items, actors := s.normalizer.Normalize(envelope.Recommendations)
	return &model.ChatResults{Items: items, Actors: actors, TotalResults: envelope.TotalResults}, nil
}

// submit runs the guarded part of the request lifecycle synchronously (so a
// busy session rejects without touching history) and hands the rest to a
// goroutine.
func (s *ChatService) submit(sessionID, queryText string, fetch func(context.Context) (*recommender.Envelope, error), respChan chan model.ChatChunk, errChan chan error) {
	if _, err := s.storage.GetSession(sessionID); err != nil {
		failChat(respChan, errChan, fmt.Errorf("session not found: %s", sessionID))
		return
	}

	pr, err := s.acquire(sessionID)
	if err != nil {
		failChat(respChan, errChan, err)
		return
	}

	now := time.Now()
	userTurn := &model.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      model.RoleUser,
		Text:      queryText,
		CreatedAt: now,
	}
	if err := s.storage.AppendTurn(sessionID, userTurn); err != nil {
		s.release(sessionID, pr)
		failChat(respChan, errChan, fmt.Errorf("failed to append user turn: %w", err))
		return
	}

	s.maybeRetitle(sessionID, queryText)

	assistantTurn := &model.Turn{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Role:        model.RoleAssistant,
		CreatedAt:   time.Now(),
		IsStreaming: true,
	}
	if err := s.storage.AppendTurn(sessionID, assistantTurn); err != nil {
		s.release(sessionID, pr)
		failChat(respChan, errChan, fmt.Errorf("failed to append assistant turn: %w", err))
		return
	}

	go s.resolve(pr, sessionID, assistantTurn.ID, queryText, fetch, respChan, errChan)
}

// resolve completes one request: fetch, classify, pace the text into the
// streaming turn, finalize. Every mutation is gated on the liveness token.
func (s *ChatService) resolve(pr *pendingRequest, sessionID, turnID, queryText string, fetch func(context.Context) (*recommender.Envelope, error), respChan chan model.ChatChunk, errChan chan error) {
	defer close(respChan)
	defer close(errChan)
	defer s.release(sessionID, pr)

	envelope, err := fetch(pr.ctx)

	var (
		text   string
		items  []model.DisplayItem
		actors []model.DisplayActor
		total  int
	)

	if err != nil {
		if !pr.alive.Load() {
			return
		}
		logger.Errorf("recommendation request failed for session %s: %v", sessionID, err)
		text = apologyText
	} else {
		items, actors = s.normalizer.Normalize(envelope.Recommendations)
		total = envelope.TotalResults
		if len(items) == 0 && len(actors) == 0 {
			text = guidanceText
			items = []model.DisplayItem{}
		} else {
			text = leadIn(queryText, total, envelope.Explanation)
		}
	}

	paceErr := s.pacer.Pace(pr.ctx, text, pr.alive.Load, func(partial string) error {
		if err := s.storage.SetStreamingText(sessionID, turnID, partial); err != nil {
			return err
		}
		chunk := model.ChatChunk{
			SessionID: sessionID,
			TurnID:    turnID,
			Role:      model.RoleAssistant,
			Content:   partial,
			Timestamp: time.Now().Unix(),
		}
		select {
		case respChan <- chunk:
			return nil
		case <-pr.ctx.Done():
			return ErrCanceled
		}
	})
	if paceErr != nil {
		// Canceled mid-pacing: the turn stays untouched from here on; a
		// clear wipes it along with the rest of the history.
		return
	}

	if !pr.alive.Load() {
		return
	}
	if err := s.storage.FinalizeTurn(sessionID, turnID, text, items, actors); err != nil {
		logger.Errorf("failed to finalize turn %s: %v", turnID, err)
		return
	}

	final := model.ChatChunk{
		SessionID:    sessionID,
		TurnID:       turnID,
		Role:         model.RoleAssistant,
		Content:      text,
		Done:         true,
		Timestamp:    time.Now().Unix(),
		Results:      items,
		Actors:       actors,
		TotalResults: total,
	}
	select {
	case respChan <- final:
	case <-pr.ctx.Done():
	}
}

// leadIn is the short sentence that precedes a non-empty result set.
func leadIn(queryText string, total int, explanation string) string {
	text := fmt.Sprintf("Here's what I found for %q: %d matches.", queryText, total)
	if explanation != "" {
		text += " " + explanation
	}
	return text
}

func failChat(respChan chan model.ChatChunk, errChan chan error, err error) {
	errChan <- err
	close(errChan)
	close(respChan)
}

// acquire claims the session's single in-flight slot.
func (s *ChatService) acquire(sessionID string) (*pendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[sessionID]; busy {
		return nil, ErrBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	pr := &pendingRequest{ctx: ctx, cancel: cancel}
	pr.alive.Store(true)
	s.pending[sessionID] = pr
	return pr, nil
}

func (s *ChatService) release(sessionID string, pr *pendingRequest) {
	pr.alive.Store(false)
	pr.cancel()

	s.mu.Lock()
	if s.pending[sessionID] == pr {
		delete(s.pending, sessionID)
	}
	s.mu.Unlock()
}

// cancelPending revokes the liveness token of the session's in-flight
// request, if any. Redundant calls are no-ops.
func (s *ChatService) cancelPending(sessionID string) {
	s.mu.Lock()
	pr := s.pending[sessionID]
	delete(s.pending, sessionID)
	s.mu.Unlock()

	if pr != nil {
		pr.alive.Store(false)
		pr.cancel()
	}
}

// maybeRetitle names a default-titled session after its first user turn.
func (s *ChatService) maybeRetitle(sessionID, text string) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return
	}

	turns, err := s.storage.GetTurns(sessionID)
	if err != nil || len(turns) != 1 {
		return
	}

	if strings.HasPrefix(session.Title, defaultSessionTitle) {
		session.Title = truncateString(text, 30)
		session.UpdatedAt = time.Now()
		if err := s.storage.UpdateSession(session); err != nil {
			logger.Warnf("failed to retitle session %s: %v", sessionID, err)
		}
	}
}

func truncateString(str string, maxLen int) string {
	runes := []rune(str)
	if len(runes) <= maxLen {
		return str
	}
	return string(runes[:maxLen]) + "..."
}

func (s *ChatService) cleanupOldSessions() {
	ticker := time.NewTicker(s.sessionCfg.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		sessions, err := s.storage.ListSessions()
		if err != nil {
			logger.Errorf("Failed to list sessions for cleanup: %v", err)
			continue
		}

		cutoff := time.Now().Add(-s.sessionCfg.TTL)
		for _, session := range sessions {
			if session.UpdatedAt.Before(cutoff) {
				if err := s.DeleteSession(session.ID); err != nil {
					logger.Errorf("Failed to delete expired session %s: %v", session.ID, err)
				} else {
					logger.Infof("Cleaned up expired session: %s", session.ID)
				}
			}
		}
	}
}
