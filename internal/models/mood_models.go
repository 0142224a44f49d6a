package models

type MoodPoint struct {
	Date      string  `json:"date"`
	MoodScore float64 `json:"moodScore"`
	CreatedAt int64   `json:"createdAt"`
}

type DailyMood struct {
	Date    string  `json:"date"`
	Mood    float64 `json:"mood"`
	Entries int     `json:"entries"`
}

type Dashboard struct {
	Days         []DailyMood `json:"days"`
	TotalEntries int         `json:"totalEntries"`
	AverageMood  float64     `json:"averageMood"`
	MoodLabel    string      `json:"moodLabel"`
}
