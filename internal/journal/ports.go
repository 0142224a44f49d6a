package journal

import (
	"context"

	"github.com/spacesedan/mindnest/internal/models"
)

type Store interface {
	PutEntry(ctx context.Context, entry models.JournalEntry) error
	QueryEntries(ctx context.Context, userID string, ascending bool) ([]models.JournalEntry, error)
}

type Publisher interface {
	PublishRequest(ctx context.Context, req models.JournalRequest) error
	PublishAnalyzed(ctx context.Context, event models.JournalAnalyzedEvent) error
}

type MoodCache interface {
	GetMoodData(ctx context.Context, userID string) ([]models.MoodPoint, bool, error)
	SetMoodData(ctx context.Context, userID string, points []models.MoodPoint) error
	InvalidateMoodData(ctx context.Context, userID string) error
}

// RequestTracker remembers which asynchronous requests have been stored.
type RequestTracker interface {
	IsProcessed(ctx context.Context, requestID string) (bool, error)
	MarkProcessed(ctx context.Context, requestID string) error
}

type IntensityScorer interface {
	Intensity(text string) float64
}
