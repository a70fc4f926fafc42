package review

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// FieldError is one violation of the QAResult contract.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Outcome holds either a typed result or the field errors, never both.
type Outcome struct {
	Result *models.QAResult
	Errors []FieldError
}

// Valid reports whether the outcome carries a result.
func (o Outcome) Valid() bool {
	return o.Result != nil
}

// ValidationError is returned when an AI response breaks the contract.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return "qa result failed validation: " + strings.Join(parts, "; ")
}

// Validate checks a value decoded from the AI JSON response. Every check runs
// so the caller sees all violations; any violation rejects the whole value.
func Validate(raw any) Outcome {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Outcome{Errors: []FieldError{{Field: "$", Message: "must be a JSON object"}}}
	}

	v := &validator{}

	if n, ok := obj["total_score"].(float64); !ok {
		v.add("total_score", "must be a number")
	} else if n < 0 || n > 100 {
		v.add("total_score", fmt.Sprintf("must be between 0 and 100, got %g", n))
	}

	if s, ok := obj["verdict"].(string); !ok || !oneOf(s, models.Verdicts) {
		v.add("verdict", fmt.Sprintf("must be one of %s", joinEnum(models.Verdicts)))
	}

	if s, ok := obj["short_summary"].(string); !ok || utf8.RuneCountInString(strings.TrimSpace(s)) < 5 {
		v.add("short_summary", "must be a string of at least 5 characters")
	}

	if _, ok := obj["revision_required"].(bool); !ok {
		v.add("revision_required", "must be a boolean")
	}

	for _, field := range []string{"revision_triggers", "strengths", "risks", "suggestions"} {
		v.stringArray(field, obj[field])
	}

	if items, ok := v.array("issues", obj["issues"]); ok {
		for i, item := range items {
			v.issue(fmt.Sprintf("issues[%d]", i), item)
		}
	}

	if items, ok := v.array("scores", obj["scores"]); ok {
		for i, item := range items {
			v.score(fmt.Sprintf("scores[%d]", i), item)
		}
	}

	if len(v.errs) > 0 {
		return Outcome{Errors: v.errs}
	}

	result, err := decode(obj)
	if err != nil {
		return Outcome{Errors: []FieldError{{Field: "$", Message: err.Error()}}}
	}
	return Outcome{Result: result}
}

type validator struct {
	errs []FieldError
}

func (v *validator) add(field, msg string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: msg})
}

func (v *validator) array(field string, raw any) ([]any, bool) {
	items, ok := raw.([]any)
	if !ok {
		v.add(field, "must be an array")
	}
	return items, ok
}

func (v *validator) stringArray(field string, raw any) {
	items, ok := v.array(field, raw)
	if !ok {
		return
	}
	for i, item := range items {
		if _, ok := item.(string); !ok {
			v.add(fmt.Sprintf("%s[%d]", field, i), "must be a string")
		}
	}
}

func (v *validator) issue(field string, raw any) {
	obj, ok := raw.(map[string]any)
	if !ok {
		v.add(field, "must be an object")
		return
	}
	if s, ok := obj["severity"].(string); !ok || !oneOf(s, models.Severities) {
		v.add(field+".severity", fmt.Sprintf("must be one of %s", joinEnum(models.Severities)))
	}
	if s, ok := obj["description"].(string); !ok || strings.TrimSpace(s) == "" {
		v.add(field+".description", "must be a non-empty string")
	}
	if _, ok := obj["suggestion"].(string); !ok {
		v.add(field+".suggestion", "must be a string")
	}
	if sn, present := obj["slideNumber"]; present && sn != nil {
		n, ok := sn.(float64)
		if !ok || n < 1 || n != math.Trunc(n) {
			v.add(field+".slideNumber", "must be a positive integer when present")
		}
	}
}

func (v *validator) score(field string, raw any) {
	obj, ok := raw.(map[string]any)
	if !ok {
		v.add(field, "must be an object")
		return
	}
	if _, ok := obj["category"].(string); !ok {
		v.add(field+".category", "must be a string")
	}
	if notes, present := obj["notes"]; present && notes != nil {
		if _, ok := notes.(string); !ok {
			v.add(field+".notes", "must be a string")
		}
	}
	maxScore, okMax := obj["maxScore"].(float64)
	if !okMax || maxScore <= 0 {
		v.add(field+".maxScore", "must be a positive number")
	}
	score, ok := obj["score"].(float64)
	switch {
	case !ok:
		v.add(field+".score", "must be a number")
	case score < 0 || (okMax && score > maxScore):
		v.add(field+".score", fmt.Sprintf("must be between 0 and maxScore, got %g", score))
	}
}

// decode converts the checked generic value into the typed result.
func decode(obj map[string]any) (*models.QAResult, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("re-encode result: %w", err)
	}
	var result models.QAResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}

func oneOf[T ~string](s string, values []T) bool {
	for _, v := range values {
		if string(v) == s {
			return true
		}
	}
	return false
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
