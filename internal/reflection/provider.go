// Package reflection asks a hosted language model for an empathetic
// reflection and mood score for a journal entry.
package reflection

import (
	"context"
	"errors"
)

var (
	ErrEmptyReflection = errors.New("[Reflection] empty reflection from provider")
	ErrNoContent       = errors.New("[Reflection] provider returned no content")
	ErrNoJSON          = errors.New("[Reflection] no JSON object in provider response")
)

type Request struct {
	Text     string
	Language string
}

// Result mirrors the JSON object the model is asked to return.
type Result struct {
	Reflection string  `json:"reflection" jsonschema:"required,description=Supportive reflection of at most 100 words"`
	MoodScore  float64 `json:"moodScore" jsonschema:"required,description=-1 very negative through 0 neutral to 1 very positive"`
}

type Reflector interface {
	Name() string
	Reflect(ctx context.Context, req Request) (Result, error)
}

// HealthChecker is implemented by reflectors that can cheaply probe their backend.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
