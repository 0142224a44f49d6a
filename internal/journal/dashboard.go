package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/mindnest/internal/models"
)

const moodDateLayout = "2006-01-02"

// Entries returns the user's entries, newest first.
func (s *Service) Entries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	if userID == "" {
		return []models.JournalEntry{}, nil
	}
	entries, err := s.store.QueryEntries(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("[JournalService] failed to load entries: %w", err)
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return entries, nil
}

// MoodData returns one point per entry, oldest first. Results are cached per
// user until the next stored entry.
func (s *Service) MoodData(ctx context.Context, userID string) ([]models.MoodPoint, error) {
	if userID == "" {
		return []models.MoodPoint{}, nil
	}

	if s.cache != nil {
		points, ok, err := s.cache.GetMoodData(ctx, userID)
		if err != nil {
			slog.Warn("[JournalService] Mood cache read failed",
				slog.String("error", err.Error()))
		} else if ok {
			return points, nil
		}
	}

	entries, err := s.store.QueryEntries(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("[JournalService] failed to load mood data: %w", err)
	}

	points := make([]models.MoodPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, models.MoodPoint{
			Date:      time.UnixMilli(e.CreatedAt).UTC().Format(moodDateLayout),
			MoodScore: e.MoodScore,
			CreatedAt: e.CreatedAt,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetMoodData(ctx, userID, points); err != nil {
			slog.Warn("[JournalService] Mood cache write failed",
				slog.String("error", err.Error()))
		}
	}
	return points, nil
}

func (s *Service) Dashboard(ctx context.Context, userID string) (models.Dashboard, error) {
	points, err := s.MoodData(ctx, userID)
	if err != nil {
		return models.Dashboard{}, err
	}
	return BuildDashboard(points), nil
}

// BuildDashboard averages mood per calendar day, keeping days in the order
// they first appear.
func BuildDashboard(points []models.MoodPoint) models.Dashboard {
	index := make(map[string]int)
	sums := []float64{}
	days := []models.DailyMood{}
	var total float64

	for _, p := range points {
		total += p.MoodScore
		i, ok := index[p.Date]
		if !ok {
			i = len(days)
			index[p.Date] = i
			days = append(days, models.DailyMood{Date: p.Date})
			sums = append(sums, 0)
		}
		sums[i] += p.MoodScore
		days[i].Entries++
	}

	for i := range days {
		days[i].Mood = sums[i] / float64(days[i].Entries)
	}

	var avg float64
	if len(points) > 0 {
		avg = total / float64(len(points))
	}

	return models.Dashboard{
		Days:         days,
		TotalEntries: len(points),
		AverageMood:  avg,
		MoodLabel:    MoodLabel(avg),
	}
}

func MoodLabel(score float64) string {
	switch {
	case score > 0.3:
		return "Positive"
	case score > 0:
		return "Slightly Positive"
	case score > -0.3:
		return "Neutral"
	default:
		return "Needs Attention"
	}
}
