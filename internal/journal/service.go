package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/mindnest/internal/heuristic"
	"github.com/spacesedan/mindnest/internal/models"
	"github.com/spacesedan/mindnest/internal/reflection"
	"github.com/spacesedan/mindnest/internal/sentiment"
)

const (
	SourceHeuristic = "heuristic"

	// CrisisMoodCutoff is the mood score below which crisis resources are surfaced.
	CrisisMoodCutoff = -0.6
)

var (
	ErrEmptyText        = errors.New("[JournalService] journal text is empty")
	ErrGuestAsync       = errors.New("[JournalService] guests cannot submit asynchronously")
	ErrAsyncUnavailable = errors.New("[JournalService] asynchronous submission is not configured")
	ErrAlreadyProcessed = errors.New("[JournalService] request already processed")
)

// Analysis is the outcome of analyzing one entry.
type Analysis struct {
	Reflection  string
	MoodScore   float64
	Source      string
	Language    string
	Intensity   float64
	CrisisAlert bool
}

type Service struct {
	store     Store
	analyzer  *heuristic.Analyzer
	reflector reflection.Reflector
	healthy   *atomic.Bool
	publisher Publisher
	cache     MoodCache
	tracker   RequestTracker
	intensity IntensityScorer
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithReflector enables the hosted reflection path. healthy may be nil; when
// set and false the reflector is skipped.
func WithReflector(r reflection.Reflector, healthy *atomic.Bool) Option {
	return func(s *Service) {
		s.reflector = r
		s.healthy = healthy
	}
}

func WithAnalyzer(a *heuristic.Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMoodCache(c MoodCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithRequestTracker(t RequestTracker) Option {
	return func(s *Service) { s.tracker = t }
}

func WithIntensityScorer(i IntensityScorer) Option {
	return func(s *Service) { s.intensity = i }
}

// WithReflectionTimeout bounds a single hosted reflection, retries included.
func WithReflectionTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		analyzer: heuristic.NewAnalyzer(heuristic.DefaultLexicons()),
		timeout:  30 * time.Second,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReflectorName reports the configured hosted provider, or the heuristic.
func (s *Service) ReflectorName() string {
	if s.reflector == nil {
		return SourceHeuristic
	}
	return s.reflector.Name()
}

func (s *Service) reflectorAvailable() bool {
	if s.reflector == nil {
		return false
	}
	return s.healthy == nil || s.healthy.Load()
}

// Analyze asks the hosted reflector first and falls back to the heuristic on
// any failure. It never returns an error.
func (s *Service) Analyze(ctx context.Context, text, language string) Analysis {
	lang := ResolveLanguage(language, text)

	analysis := Analysis{Language: lang}
	if s.reflectorAvailable() {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		res, err := s.reflector.Reflect(rctx, reflection.Request{Text: text, Language: lang})
		cancel()
		if err == nil {
			analysis.Reflection = res.Reflection
			analysis.MoodScore = reflection.ClampScore(res.MoodScore)
			analysis.Source = s.reflector.Name()
		} else {
			slog.Warn("[JournalService] Reflection provider failed, falling back to heuristic",
				slog.String("provider", s.reflector.Name()),
				slog.String("error", err.Error()))
		}
	}

	if analysis.Source == "" {
		res := s.analyzer.Analyze(text)
		analysis.Reflection = res.Reflection
		analysis.MoodScore = res.MoodScore
		analysis.Source = SourceHeuristic
	}

	if s.intensity != nil {
		analysis.Intensity = s.intensity.Intensity(text)
	}
	analysis.CrisisAlert = analysis.MoodScore < CrisisMoodCutoff ||
		(s.intensity != nil && sentiment.IsCrisis(analysis.Intensity))

	return analysis
}

// Submit analyzes text and, for signed-in users, stores the entry. Guests
// (empty userID) receive the analysis with Saved=false.
func (s *Service) Submit(ctx context.Context, userID, text, language string) (models.Submission, error) {
	if strings.TrimSpace(text) == "" {
		return models.Submission{}, ErrEmptyText
	}

	analysis := s.Analyze(ctx, text, language)
	sub := models.Submission{
		Reflection:  analysis.Reflection,
		MoodScore:   analysis.MoodScore,
		Source:      analysis.Source,
		Language:    analysis.Language,
		CrisisAlert: analysis.CrisisAlert,
	}

	if userID == "" {
		slog.Info("[JournalService] Guest submission analyzed, not saved")
		return sub, nil
	}

	entry := s.newEntry(userID, text, analysis)
	if err := s.store.PutEntry(ctx, entry); err != nil {
		return models.Submission{}, fmt.Errorf("[JournalService] failed to store entry: %w", err)
	}

	s.afterStore(ctx, []models.JournalEntry{entry}, map[string]bool{entry.EntryID: analysis.CrisisAlert})

	sub.EntryID = entry.EntryID
	sub.Saved = true
	return sub, nil
}

// Enqueue hands the entry to the asynchronous pipeline and returns its request ID.
func (s *Service) Enqueue(ctx context.Context, userID, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if userID == "" {
		return "", ErrGuestAsync
	}
	if s.publisher == nil {
		return "", ErrAsyncUnavailable
	}

	req := models.JournalRequest{
		RequestID:   s.newID(),
		UserID:      userID,
		Text:        text,
		Language:    language,
		SubmittedAt: s.now().UnixMilli(),
	}
	if err := s.publisher.PublishRequest(ctx, req); err != nil {
		return "", fmt.Errorf("[JournalService] failed to enqueue entry: %w", err)
	}

	slog.Info("[JournalService] Entry enqueued", slog.String("request_id", req.RequestID))
	return req.RequestID, nil
}

// ProcessRequest analyzes a queued request and returns the entry to store.
// Requests already stored return ErrAlreadyProcessed.
func (s *Service) ProcessRequest(ctx context.Context, req models.JournalRequest) (models.JournalEntry, bool, error) {
	if strings.TrimSpace(req.Text) == "" || req.UserID == "" {
		return models.JournalEntry{}, false, ErrEmptyText
	}

	if s.tracker != nil && req.RequestID != "" {
		done, err := s.tracker.IsProcessed(ctx, req.RequestID)
		if err != nil {
			slog.Warn("[JournalService] Could not check processed requests",
				slog.String("request_id", req.RequestID),
				slog.String("error", err.Error()))
		}
		if done {
			return models.JournalEntry{}, false, ErrAlreadyProcessed
		}
	}

	analysis := s.Analyze(ctx, req.Text, req.Language)
	entry := s.newEntry(req.UserID, req.Text, analysis)
	entry.RequestID = req.RequestID
	if req.SubmittedAt > 0 {
		entry.CreatedAt = req.SubmittedAt
	}
	return entry, analysis.CrisisAlert, nil
}

// CompleteBatch runs post-storage bookkeeping for entries the consumer has
// written: request tracking, cache invalidation and result events.
func (s *Service) CompleteBatch(ctx context.Context, entries []models.JournalEntry, crisis map[string]bool) {
	s.afterStore(ctx, entries, crisis)
}

func (s *Service) newEntry(userID, text string, a Analysis) models.JournalEntry {
	return models.JournalEntry{
		UserID:     userID,
		CreatedAt:  s.now().UnixMilli(),
		EntryID:    s.newID(),
		Text:       text,
		Reflection: a.Reflection,
		MoodScore:  a.MoodScore,
		Intensity:  a.Intensity,
		Source:     a.Source,
		Language:   a.Language,
	}
}

func (s *Service) afterStore(ctx context.Context, entries []models.JournalEntry, crisis map[string]bool) {
	invalidated := make(map[string]bool)
	for _, entry := range entries {
		if s.tracker != nil && entry.RequestID != "" {
			if err := s.tracker.MarkProcessed(ctx, entry.RequestID); err != nil {
				slog.Warn("[JournalService] Failed to mark request processed",
					slog.String("request_id", entry.RequestID),
					slog.String("error", err.Error()))
			}
		}

		if s.cache != nil && !invalidated[entry.UserID] {
			invalidated[entry.UserID] = true
			if err := s.cache.InvalidateMoodData(ctx, entry.UserID); err != nil {
				slog.Warn("[JournalService] Failed to invalidate mood cache",
					slog.String("error", err.Error()))
			}
		}

		if s.publisher != nil {
			event := models.JournalAnalyzedEvent{
				EntryID:     entry.EntryID,
				UserID:      entry.UserID,
				MoodScore:   entry.MoodScore,
				Source:      entry.Source,
				CrisisAlert: crisis[entry.EntryID],
				CreatedAt:   entry.CreatedAt,
			}
			if err := s.publisher.PublishAnalyzed(ctx, event); err != nil {
				slog.Warn("[JournalService] Failed to publish analyzed event",
					slog.String("entry_id", entry.EntryID),
					slog.String("error", err.Error()))
			}
		}
	}
}
