// Package llmjson extracts JSON objects from free-form model output.
package llmjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/calorieking/backend/internal/types"
)

const (
	jsonFence = "```json"
	fence     = "```"
)

// Object is a decoded JSON object of unknown shape
type Object = map[string]any

// ErrEmpty is wrapped by ParseError when there is nothing to decode
var ErrEmpty = errors.New("empty response")

// ParseError reports model output that could not be decoded as JSON. Raw holds
// the text exactly as the model returned it.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Strip returns the payload of the first fenced block in raw, or raw itself
// when it carries no fence marker. An unterminated fence runs to the end of
// the text.
func Strip(raw string) string {
	text := raw
	if i := strings.Index(text, jsonFence); i >= 0 {
		text = text[i+len(jsonFence):]
	} else if i := strings.Index(text, fence); i >= 0 {
		text = text[i+len(fence):]
	} else {
		return strings.TrimSpace(text)
	}

	if end := strings.Index(text, fence); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// Extract decodes the JSON object embedded in raw
func Extract(raw string) (Object, error) {
	var obj Object
	if err := decode(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// DecodeAnalysis decodes a meal analysis. Any valid JSON object decodes:
// foods that are missing or not a list become empty, and a missing total is
// computed from the foods.
func DecodeAnalysis(raw string) (*types.Analysis, error) {
	var payload struct {
		Foods         json.RawMessage `json:"foods"`
		TotalCalories *types.Calories `json:"total_calories"`
	}
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}

	analysis := &types.Analysis{Foods: []types.FoodItem{}}
	if bytes.HasPrefix(bytes.TrimSpace(payload.Foods), []byte("[")) {
		var foods []types.FoodItem
		if err := json.Unmarshal(payload.Foods, &foods); err == nil && foods != nil {
			analysis.Foods = foods
		}
	}
	if payload.TotalCalories != nil {
		analysis.TotalCalories = *payload.TotalCalories
	} else {
		analysis.TotalCalories = types.SumCalories(analysis.Foods)
	}
	return analysis, nil
}

// DecodeItemEstimate decodes a single food re-estimate
func DecodeItemEstimate(raw string) (*types.ItemEstimate, error) {
	var estimate types.ItemEstimate
	if err := decode(raw, &estimate); err != nil {
		return nil, err
	}
	return &estimate, nil
}

func decode(raw string, v any) error {
	text := Strip(raw)
	if text == "" {
		return &ParseError{Raw: raw, Err: ErrEmpty}
	}
	// Only objects are accepted at the top level.
	if !strings.HasPrefix(text, "{") {
		var probe any
		if err := json.Unmarshal([]byte(text), &probe); err != nil {
			return &ParseError{Raw: raw, Err: err}
		}
		return &ParseError{Raw: raw, Err: fmt.Errorf("expected a JSON object, got %T", probe)}
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}
