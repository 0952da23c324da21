package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"reelchat-backend/internal/config"
	"reelchat-backend/internal/genres"
	"reelchat-backend/internal/model"
	"reelchat-backend/internal/recommender"
)

type stubBackend struct {
	recsFn func(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error)
	moodFn func(ctx context.Context, query model.MoodQuery) (*recommender.Envelope, error)
}

func (s *stubBackend) Recommendations(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error) {
	if s.recsFn != nil {
		return s.recsFn(ctx, query)
	}
	return &recommender.Envelope{}, nil
}

func (s *stubBackend) MoodRecommendations(ctx context.Context, query model.MoodQuery) (*recommender.Envelope, error) {
	if s.moodFn != nil {
		return s.moodFn(ctx, query)
	}
	return &recommender.Envelope{}, nil
}

func (s *stubBackend) Trending(ctx context.Context, mediaType, timeWindow string) (*recommender.Envelope, error) {
	return &recommender.Envelope{}, nil
}

func (s *stubBackend) Popular(ctx context.Context, mediaType string, page int) (*recommender.Envelope, error) {
	return &recommender.Envelope{}, nil
}

func newTestService(t *testing.T, backend RecommendationSource) *ChatService {
	t.Helper()
	cfg := &config.Config{
		Pacer: config.PacerConfig{Interval: time.Millisecond},
		Chat:  config.ChatConfig{ResultLimit: 10},
		Images: config.ImagesConfig{
			BaseURL:      "https://image.tmdb.org/t/p",
			PosterSize:   "w500",
			BackdropSize: "original",
		},
	}
	return NewChatService(cfg, backend, genres.NewCatalog())
}

func twoMovieEnvelope() *recommender.Envelope {
	return &recommender.Envelope{
		TotalResults: 2,
		Explanation:  "Both are light comedies.",
		Recommendations: []recommender.Entry{
			{Content: json.RawMessage(`{"id": 1, "title": "Paddington 2", "release_date": "2017-11-10", "vote_average": 7.8}`)},
			{Content: json.RawMessage(`{"id": 2, "title": "The Grand Budapest Hotel", "release_date": "2014-03-07", "vote_average": 8.1}`)},
		},
	}
}

func drain(respChan <-chan model.ChatChunk, errChan <-chan error) ([]model.ChatChunk, error) {
	var chunks []model.ChatChunk
	for chunk := range respChan {
		chunks = append(chunks, chunk)
	}
	var err error
	for e := range errChan {
		if e != nil {
			err = e
		}
	}
	return chunks, err
}

func TestAskSuccessPacesAndFinalizes(t *testing.T) {
	backend := &stubBackend{
		recsFn: func(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error) {
			return twoMovieEnvelope(), nil
		},
	}
	svc := newTestService(t, backend)

	session, err := svc.CreateSession("")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	chunks, askErr := drain(svc.Ask(session.ID, "something funny"))
	if askErr != nil {
		t.Fatalf("unexpected error: %v", askErr)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected paced chunks plus a final one, got %d", len(chunks))
	}

	// Message chunks grow by word prefixes.
	var prev string
	for _, chunk := range chunks[:len(chunks)-1] {
		if !strings.HasPrefix(chunk.Content, prev) {
			t.Fatalf("chunk %q does not extend %q", chunk.Content, prev)
		}
		prev = chunk.Content
	}

	final := chunks[len(chunks)-1]
	if !final.Done {
		t.Fatalf("last chunk should be the done chunk: %+v", final)
	}
	if len(final.Results) != 2 || final.TotalResults != 2 {
		t.Fatalf("expected 2 results, got %+v", final)
	}
	if !strings.Contains(final.Content, `"something funny"`) || !strings.Contains(final.Content, "2 matches") {
		t.Fatalf("lead-in missing query or count: %q", final.Content)
	}
	if !strings.Contains(final.Content, "Both are light comedies.") {
		t.Fatalf("backend explanation not appended: %q", final.Content)
	}

	turns, err := svc.GetSessionTurns(session.ID)
	if err != nil {
		t.Fatalf("get turns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected user+assistant turns, got %d", len(turns))
	}
	if turns[0].Role != model.RoleUser || turns[0].Text != "something funny" {
		t.Fatalf("unexpected user turn: %+v", turns[0])
	}
	assistant := turns[1]
	if assistant.IsStreaming {
		t.Fatal("assistant turn still streaming after completion")
	}
	if len(assistant.Results) != 2 {
		t.Fatalf("results not attached to turn: %+v", assistant)
	}
	if assistant.Text != final.Content {
		t.Fatalf("turn text %q differs from final chunk %q", assistant.Text, final.Content)
	}
}

func TestAskRejectsWhileInFlight(t *testing.T) {
	unblock := make(chan struct{})
	backend := &stubBackend{
		recsFn: func(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error) {
			<-unblock
			return twoMovieEnvelope(), nil
		},
	}
	svc := newTestService(t, backend)

	session, _ := svc.CreateSession("")
	respChan, errChan := svc.Ask(session.ID, "first question")

	turns, _ := svc.GetSessionTurns(session.ID)
	historyLen := len(turns)

	_, secondErr := drain(svc.Ask(session.ID, "second question"))
	if !errors.Is(secondErr, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", secondErr)
	}

	turns, _ = svc.GetSessionTurns(session.ID)
	if len(turns) != historyLen {
		t.Fatalf("rejected submission changed history: %d -> %d", historyLen, len(turns))
	}

	close(unblock)
	if _, err := drain(respChan, errChan); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	// The slot is free again.
	if _, err := drain(svc.Ask(session.ID, "third question")); err != nil {
		t.Fatalf("slot not released: %v", err)
	}
}

func TestAskEmptyResultsYieldsGuidance(t *testing.T) {
	svc := newTestService(t, &stubBackend{})

	session, _ := svc.CreateSession("")
	chunks, err := drain(svc.Ask(session.ID, "extremely obscure request"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final := chunks[len(chunks)-1]
	if !final.Done {
		t.Fatalf("missing done chunk")
	}
	if final.Content != guidanceText {
		t.Fatalf("expected guidance text, got %q", final.Content)
	}
	if len(final.Results) != 0 {
		t.Fatalf("expected empty results, got %d", len(final.Results))
	}

	turns, _ := svc.GetSessionTurns(session.ID)
	if turns[1].IsStreaming {
		t.Fatal("assistant turn should be finalized")
	}
}

func TestAskBackendFailureYieldsApology(t *testing.T) {
	backend := &stubBackend{
		recsFn: func(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newTestService(t, backend)

	session, _ := svc.CreateSession("")
	chunks, err := drain(svc.Ask(session.ID, "anything"))
	if err != nil {
		t.Fatalf("transport failures should not surface as errors, got %v", err)
	}

	final := chunks[len(chunks)-1]
	if final.Content != apologyText {
		t.Fatalf("expected apology text, got %q", final.Content)
	}
	if strings.Contains(final.Content, "connection refused") {
		t.Fatalf("raw error leaked to the user: %q", final.Content)
	}
}

func TestAskRejectsEmptyInput(t *testing.T) {
	svc := newTestService(t, &stubBackend{})
	session, _ := svc.CreateSession("")

	_, err := drain(svc.Ask(session.ID, "   "))
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}

	turns, _ := svc.GetSessionTurns(session.ID)
	if len(turns) != 0 {
		t.Fatalf("rejected input mutated history: %d turns", len(turns))
	}
}

func TestAskMoodRequiresMood(t *testing.T) {
	svc := newTestService(t, &stubBackend{})
	session, _ := svc.CreateSession("")

	_, err := drain(svc.AskMood(session.ID, model.MoodChatRequest{EnergyLevel: 8, TimeAvailableMinutes: 90}))
	if !errors.Is(err, ErrNoMood) {
		t.Fatalf("expected ErrNoMood, got %v", err)
	}
}

func TestAskMoodUsesPhrasedUserTurn(t *testing.T) {
	var captured model.MoodQuery
	backend := &stubBackend{
		moodFn: func(ctx context.Context, query model.MoodQuery) (*recommender.Envelope, error) {
			captured = query
			return twoMovieEnvelope(), nil
		},
	}
	svc := newTestService(t, backend)

	session, _ := svc.CreateSession("")
	if _, err := drain(svc.AskMood(session.ID, model.MoodChatRequest{
		Mood:                 "happy",
		EnergyLevel:          8,
		TimeAvailableMinutes: 90,
	})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.Mood != "happy" || captured.EnergyLevel != 8 || captured.TimeAvailableMinutes != 90 {
		t.Fatalf("tuple not forwarded: %+v", captured)
	}

	turns, _ := svc.GetSessionTurns(session.ID)
	if turns[0].Text != "I'm feeling happy and energetic, standard length" {
		t.Fatalf("unexpected user turn text: %q", turns[0].Text)
	}
}

func TestClearSessionCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	var startedOnce sync.Once
	unblock := make(chan struct{})
	backend := &stubBackend{
		recsFn: func(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error) {
			startedOnce.Do(func() { close(started) })
			select {
			case <-unblock:
			case <-ctx.Done():
			}
			return twoMovieEnvelope(), nil
		},
	}
	svc := newTestService(t, backend)

	session, _ := svc.CreateSession("")
	respChan, errChan := svc.Ask(session.ID, "about to be canceled")
	<-started

	if err := svc.ClearSession(session.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	// Redundant cancellation signals are safe.
	if err := svc.ClearSession(session.ID); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}

	close(unblock)
	drain(respChan, errChan)

	turns, err := svc.GetSessionTurns(session.ID)
	if err != nil {
		t.Fatalf("get turns: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("canceled request mutated cleared history: %d turns", len(turns))
	}

	// A fresh request is accepted after the clear.
	if _, err := drain(svc.Ask(session.ID, "fresh start")); err != nil {
		t.Fatalf("pending slot not released by clear: %v", err)
	}
}

func TestSessionListSafeWhileStreaming(t *testing.T) {
	backend := &stubBackend{
		recsFn: func(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error) {
			return twoMovieEnvelope(), nil
		},
	}
	svc := newTestService(t, backend)
	session, _ := svc.CreateSession("")

	// Reading and serializing the session list must not observe the turn
	// slice the pacer goroutine is writing to.
	respChan, errChan := svc.Ask(session.ID, "a question with enough words to pace")
	for range respChan {
		sessions, err := svc.GetAllSessions()
		if err != nil {
			t.Fatalf("list sessions: %v", err)
		}
		if _, err := json.Marshal(sessions); err != nil {
			t.Fatalf("marshal sessions: %v", err)
		}
		if _, err := svc.GetSession(session.ID); err != nil {
			t.Fatalf("get session: %v", err)
		}
	}
	for range errChan {
	}
}

func TestAtMostOneStreamingTurn(t *testing.T) {
	backend := &stubBackend{
		recsFn: func(ctx context.Context, query model.RecommendationQuery) (*recommender.Envelope, error) {
			return twoMovieEnvelope(), nil
		},
	}
	svc := newTestService(t, backend)
	session, _ := svc.CreateSession("")

	respChan, errChan := svc.Ask(session.ID, "watch the invariant")
	for range respChan {
		turns, err := svc.GetSessionTurns(session.ID)
		if err != nil {
			t.Fatalf("get turns: %v", err)
		}
		streaming := 0
		for _, turn := range turns {
			if turn.IsStreaming {
				streaming++
			}
		}
		if streaming > 1 {
			t.Fatalf("%d turns streaming at once", streaming)
		}
	}
	for range errChan {
	}
}
