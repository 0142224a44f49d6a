package journal

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/mindnest/internal/heuristic"
	"github.com/spacesedan/mindnest/internal/models"
	"github.com/spacesedan/mindnest/internal/reflection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService(store Store, opts ...Option) *Service {
	var n int
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	}
	return NewService(store, append(base, opts...)...)
}

func TestAnalyze_HeuristicWhenNoReflector(t *testing.T) {
	svc := newTestService(&fakeStore{})

	got := svc.Analyze(context.Background(), "happy", "")
	want := heuristic.Analyze("happy")

	assert.Equal(t, want.Reflection, got.Reflection)
	assert.Equal(t, 0.5, got.MoodScore)
	assert.Equal(t, SourceHeuristic, got.Source)
	assert.Equal(t, "en", got.Language)
	assert.False(t, got.CrisisAlert)
}

func TestAnalyze_UsesReflector(t *testing.T) {
	r := &stubReflector{result: reflection.Result{Reflection: "You did well.", MoodScore: 0.7}}
	svc := newTestService(&fakeStore{}, WithReflector(r, nil))

	got := svc.Analyze(context.Background(), "sad", "ta")
	assert.Equal(t, "You did well.", got.Reflection)
	assert.Equal(t, 0.7, got.MoodScore)
	assert.Equal(t, "stub", got.Source)
	assert.Equal(t, "ta", got.Language)
	assert.Equal(t, 1, r.calls)
}

func TestAnalyze_FallsBackOnReflectorError(t *testing.T) {
	r := &stubReflector{err: errBoom}
	svc := newTestService(&fakeStore{}, WithReflector(r, nil))

	got := svc.Analyze(context.Background(), "sad sad sad", "en")
	assert.Equal(t, SourceHeuristic, got.Source)
	assert.Equal(t, -0.75, got.MoodScore)
	assert.True(t, got.CrisisAlert)
}

func TestAnalyze_SkipsUnhealthyReflector(t *testing.T) {
	r := &stubReflector{result: reflection.Result{Reflection: "x", MoodScore: 1}}
	healthy := &atomic.Bool{}
	svc := newTestService(&fakeStore{}, WithReflector(r, healthy))

	got := svc.Analyze(context.Background(), "happy", "")
	assert.Equal(t, SourceHeuristic, got.Source)
	assert.Zero(t, r.calls)

	healthy.Store(true)
	got = svc.Analyze(context.Background(), "happy", "")
	assert.Equal(t, "stub", got.Source)
}

func TestAnalyze_CrisisFromIntensity(t *testing.T) {
	svc := newTestService(&fakeStore{}, WithIntensityScorer(fixedIntensity(-0.9)))

	got := svc.Analyze(context.Background(), "nothing matters", "")
	assert.Equal(t, 0.0, got.MoodScore)
	assert.Equal(t, -0.9, got.Intensity)
	assert.True(t, got.CrisisAlert)
}

func TestAnalyze_CrisisCutoffIsStrict(t *testing.T) {
	r := &stubReflector{result: reflection.Result{Reflection: "x", MoodScore: CrisisMoodCutoff}}
	svc := newTestService(&fakeStore{}, WithReflector(r, nil))

	assert.False(t, svc.Analyze(context.Background(), "x", "").CrisisAlert)
}

func TestSubmit_RejectsEmptyText(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Submit(context.Background(), "u1", "  \n ", "")
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestSubmit_GuestNotSaved(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := newTestService(store, WithPublisher(pub))

	sub, err := svc.Submit(context.Background(), "", "happy day", "")
	require.NoError(t, err)
	assert.False(t, sub.Saved)
	assert.Empty(t, sub.EntryID)
	assert.Empty(t, store.entries)
	assert.Empty(t, pub.analyzed)
}

func TestSubmit_StoresPublishesAndInvalidates(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	cache := newFakeCache()
	cache.data["u1"] = []models.MoodPoint{{Date: "2026-03-13", MoodScore: 0.1}}
	svc := newTestService(store, WithPublisher(pub), WithMoodCache(cache))

	sub, err := svc.Submit(context.Background(), "u1", "I feel calm and proud", "en")
	require.NoError(t, err)

	assert.True(t, sub.Saved)
	assert.Equal(t, "id-1", sub.EntryID)
	require.Len(t, store.entries, 1)

	entry := store.entries[0]
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, fixedNow.UnixMilli(), entry.CreatedAt)
	assert.Equal(t, sub.Reflection, entry.Reflection)
	assert.Equal(t, sub.MoodScore, entry.MoodScore)
	assert.Equal(t, SourceHeuristic, entry.Source)

	assert.Equal(t, []string{"u1"}, cache.invalidated)
	assert.NotContains(t, cache.data, "u1")

	require.Len(t, pub.analyzed, 1)
	assert.Equal(t, "id-1", pub.analyzed[0].EntryID)
}

func TestSubmit_StoreFailure(t *testing.T) {
	svc := newTestService(&fakeStore{putErr: errBoom})

	_, err := svc.Submit(context.Background(), "u1", "hello there", "")
	require.ErrorIs(t, err, errBoom)
}

func TestSubmit_PublishFailureIsNotFatal(t *testing.T) {
	svc := newTestService(&fakeStore{}, WithPublisher(&fakePublisher{err: errBoom}))

	sub, err := svc.Submit(context.Background(), "u1", "hello there", "")
	require.NoError(t, err)
	assert.True(t, sub.Saved)
}

func TestEnqueue(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(&fakeStore{}, WithPublisher(pub))

	id, err := svc.Enqueue(context.Background(), "u1", "long day", "hi")
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	require.Len(t, pub.requests, 1)
	assert.Equal(t, models.JournalRequest{
		RequestID:   "id-1",
		UserID:      "u1",
		Text:        "long day",
		Language:    "hi",
		SubmittedAt: fixedNow.UnixMilli(),
	}, pub.requests[0])
}

func TestEnqueue_Errors(t *testing.T) {
	svc := newTestService(&fakeStore{})
	_, err := svc.Enqueue(context.Background(), "u1", "x", "")
	require.ErrorIs(t, err, ErrAsyncUnavailable)

	svc = newTestService(&fakeStore{}, WithPublisher(&fakePublisher{}))
	_, err = svc.Enqueue(context.Background(), "", "x", "")
	require.ErrorIs(t, err, ErrGuestAsync)

	_, err = svc.Enqueue(context.Background(), "u1", " ", "")
	require.ErrorIs(t, err, ErrEmptyText)

	svc = newTestService(&fakeStore{}, WithPublisher(&fakePublisher{err: errBoom}))
	_, err = svc.Enqueue(context.Background(), "u1", "x", "")
	require.ErrorIs(t, err, errBoom)
}

func TestProcessRequest_AndCompleteBatch(t *testing.T) {
	tracker := &fakeTracker{processed: map[string]bool{}}
	pub := &fakePublisher{}
	cache := newFakeCache()
	svc := newTestService(&fakeStore{}, WithRequestTracker(tracker), WithPublisher(pub), WithMoodCache(cache))

	req := models.JournalRequest{RequestID: "req-1", UserID: "u1", Text: "awful awful day", SubmittedAt: 1000}
	entry, crisis, err := svc.ProcessRequest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, int64(1000), entry.CreatedAt)
	assert.InDelta(t, -2.0/3.0, entry.MoodScore, 1e-9)
	assert.True(t, crisis)

	svc.CompleteBatch(context.Background(), []models.JournalEntry{entry}, map[string]bool{entry.EntryID: crisis})
	assert.True(t, tracker.processed["req-1"])
	assert.Equal(t, []string{"u1"}, cache.invalidated)
	require.Len(t, pub.analyzed, 1)
	assert.True(t, pub.analyzed[0].CrisisAlert)

	_, _, err = svc.ProcessRequest(context.Background(), req)
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestProcessRequest_Invalid(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, _, err := svc.ProcessRequest(context.Background(), models.JournalRequest{UserID: "u1"})
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestReflectorName(t *testing.T) {
	assert.Equal(t, SourceHeuristic, newTestService(&fakeStore{}).ReflectorName())
	assert.Equal(t, "stub", newTestService(&fakeStore{}, WithReflector(&stubReflector{}, nil)).ReflectorName())
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		requested, text, want string
	}{
		{"", "hello", "en"},
		{"TE", "hello", "te"},
		{"fr", "bonjour", "en"},
		{"en", "आज अच्छा दिन था", "hi"},
		{"ta", "mixed आज text", "hi"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveLanguage(tt.requested, tt.text), "%q/%q", tt.requested, tt.text)
	}
}
