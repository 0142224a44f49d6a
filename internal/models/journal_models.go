package models

// JournalEntry is a persisted journal entry together with its analysis.
type JournalEntry struct {
	UserID     string  `json:"userId" dynamodbav:"user_id"`
	CreatedAt  int64   `json:"createdAt" dynamodbav:"created_at"` // unix millis
	EntryID    string  `json:"entryId" dynamodbav:"entry_id"`
	Text       string  `json:"text" dynamodbav:"text"`
	Reflection string  `json:"reflection" dynamodbav:"reflection"`
	MoodScore  float64 `json:"moodScore" dynamodbav:"mood_score"`
	Intensity  float64 `json:"intensity" dynamodbav:"intensity"`
	Source     string  `json:"source" dynamodbav:"source"`
	Language   string  `json:"language" dynamodbav:"language"`
	RequestID  string  `json:"requestId,omitempty" dynamodbav:"request_id,omitempty"`
}

// JournalRequest is an asynchronous submission waiting for analysis.
type JournalRequest struct {
	RequestID   string `json:"requestId"`
	UserID      string `json:"userId"`
	Text        string `json:"text"`
	Language    string `json:"language"`
	SubmittedAt int64  `json:"submittedAt"`
}

// JournalAnalyzedEvent is published once an entry has been analyzed and stored.
type JournalAnalyzedEvent struct {
	EntryID     string  `json:"entryId"`
	UserID      string  `json:"userId"`
	MoodScore   float64 `json:"moodScore"`
	Source      string  `json:"source"`
	CrisisAlert bool    `json:"crisisAlert"`
	CreatedAt   int64   `json:"createdAt"`
}

// Submission is returned to the client after a synchronous submit.
type Submission struct {
	EntryID     string  `json:"entryId,omitempty"`
	Reflection  string  `json:"reflection"`
	MoodScore   float64 `json:"moodScore"`
	Source      string  `json:"source"`
	Language    string  `json:"language"`
	CrisisAlert bool    `json:"crisisAlert"`
	Saved       bool    `json:"saved"`
}
