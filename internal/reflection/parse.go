package reflection

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type rawResult struct {
	Reflection any `json:"reflection"`
	MoodScore  any `json:"moodScore"`
}

// ParseResult decodes a model response. Models occasionally wrap the object
// in prose or code fences, so the outermost {...} span is tried when strict
// decoding fails. The score is normalized to [-1, 1].
func ParseResult(text string) (Result, error) {
	var raw rawResult
	s := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		match := jsonObjectPattern.FindString(s)
		if match == "" {
			return Result{}, ErrNoJSON
		}
		if err := json.Unmarshal([]byte(match), &raw); err != nil {
			return Result{}, fmt.Errorf("[Reflection] failed to parse JSON from response: %w", err)
		}
	}

	reflection := strings.TrimSpace(stringValue(raw.Reflection))
	if reflection == "" {
		return Result{}, ErrEmptyReflection
	}

	return Result{
		Reflection: reflection,
		MoodScore:  ClampScore(numberValue(raw.MoodScore)),
	}, nil
}

// ClampScore maps non-finite values to 0 and limits the rest to [-1, 1].
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return max(-1, min(1, score))
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func numberValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}
