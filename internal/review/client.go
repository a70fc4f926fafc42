package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

var (
	// ErrEmptyResponse is returned when the AI service answers with no text.
	ErrEmptyResponse = errors.New("ai service returned an empty response")
	// ErrRefusal is returned when the AI service declines the review instead of answering in JSON.
	ErrRefusal = errors.New("ai service refused the review")
)

// GenerateRequest is one call to the AI service.
type GenerateRequest struct {
	SystemInstruction string
	Transcript        string
}

// Generator is the AI service port.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Model() string
}

// Attempt is a validated response together with the text it was parsed from.
type Attempt struct {
	Result *models.QAResult
	Raw    string
}

// Client turns raw AI text into a validated QAResult.
type Client struct {
	gen Generator
}

func NewClient(gen Generator) *Client {
	return &Client{gen: gen}
}

// Model names the model behind the client.
func (c *Client) Model() string {
	return c.gen.Model()
}

// Review makes a single call. It does not retry.
func (c *Client) Review(ctx context.Context, req GenerateRequest) (*Attempt, error) {
	raw, err := c.gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate review: %w", err)
	}

	body := stripFences(raw)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		if refused(body) {
			return nil, ErrRefusal
		}
		return nil, fmt.Errorf("parse ai response as JSON: %w", err)
	}

	out := Validate(parsed)
	if !out.Valid() {
		return nil, &ValidationError{Errors: out.Errors}
	}
	return &Attempt{Result: out.Result, Raw: raw}, nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

func refused(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
