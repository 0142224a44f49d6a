package journal

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/spacesedan/mindnest/internal/models"
	"github.com/spacesedan/mindnest/internal/reflection"
)

type fakeStore struct {
	mu      sync.Mutex
	entries []models.JournalEntry
	putErr  error
	queries int
}

func (f *fakeStore) PutEntry(_ context.Context, e models.JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeStore) QueryEntries(_ context.Context, userID string, ascending bool) ([]models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++

	var out []models.JournalEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

type fakePublisher struct {
	requests []models.JournalRequest
	analyzed []models.JournalAnalyzedEvent
	err      error
}

func (f *fakePublisher) PublishRequest(_ context.Context, req models.JournalRequest) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakePublisher) PublishAnalyzed(_ context.Context, ev models.JournalAnalyzedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.analyzed = append(f.analyzed, ev)
	return nil
}

type fakeCache struct {
	data        map[string][]models.MoodPoint
	invalidated []string
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]models.MoodPoint)}
}

func (f *fakeCache) GetMoodData(_ context.Context, userID string) ([]models.MoodPoint, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	p, ok := f.data[userID]
	return p, ok, nil
}

func (f *fakeCache) SetMoodData(_ context.Context, userID string, points []models.MoodPoint) error {
	f.data[userID] = points
	return nil
}

func (f *fakeCache) InvalidateMoodData(_ context.Context, userID string) error {
	delete(f.data, userID)
	f.invalidated = append(f.invalidated, userID)
	return nil
}

type fakeTracker struct {
	processed map[string]bool
}

func (f *fakeTracker) IsProcessed(_ context.Context, id string) (bool, error) {
	return f.processed[id], nil
}

func (f *fakeTracker) MarkProcessed(_ context.Context, id string) error {
	f.processed[id] = true
	return nil
}

type stubReflector struct {
	result reflection.Result
	err    error
	calls  int
}

func (s *stubReflector) Name() string { return "stub" }

func (s *stubReflector) Reflect(_ context.Context, _ reflection.Request) (reflection.Result, error) {
	s.calls++
	return s.result, s.err
}

type fixedIntensity float64

func (f fixedIntensity) Intensity(string) float64 { return float64(f) }

var errBoom = errors.New("boom")
