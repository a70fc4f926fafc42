package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/lessonreview/internal/models"
	"github.com/Lllllllleong/lessonreview/internal/review"
)

// DefaultReviewModel is used when VERTEX_MODEL is unset.
const DefaultReviewModel = "gemini-1.5-pro"

// VertexClient is the Gemini-backed review.Generator.
type VertexClient struct {
	baseClient *genai.Client
	modelName  string
}

var _ review.Generator = (*VertexClient)(nil)

// NewVertexClient creates a client for the given project, region and model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultReviewModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexClient{baseClient: baseClient, modelName: modelName}, nil
}

func (c *VertexClient) Model() string {
	return c.modelName
}

// Generate sends one transcript with its own system instruction. A fresh
// model handle is built per call since the instruction differs by mode.
func (c *VertexClient) Generate(ctx context.Context, req review.GenerateRequest) (string, error) {
	model := c.baseClient.GenerativeModel(c.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.SystemInstruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   QAResultSchema(),
		Temperature:      genai.Ptr[float32](0.0),
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Transcript))
	if err != nil {
		return "", fmt.Errorf("GenerateContent: %w", err)
	}
	return responseText(resp), nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

// QAResultSchema mirrors models.QAResult for constrained decoding.
func QAResultSchema() *genai.Schema {
	stringList := &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"total_score":       {Type: genai.TypeNumber, Description: "Overall score from 0 to 100."},
			"verdict":           {Type: genai.TypeString, Enum: enumValues(models.Verdicts)},
			"short_summary":     {Type: genai.TypeString},
			"revision_required": {Type: genai.TypeBoolean},
			"revision_triggers": stringList,
			"strengths":         stringList,
			"risks":             stringList,
			"suggestions":       stringList,
			"issues": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"slideNumber": {Type: genai.TypeInteger, Nullable: true},
						"severity":    {Type: genai.TypeString, Enum: enumValues(models.Severities)},
						"description": {Type: genai.TypeString},
						"suggestion":  {Type: genai.TypeString},
					},
					Required: []string{"severity", "description", "suggestion"},
				},
			},
			"scores": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category": {Type: genai.TypeString},
						"score":    {Type: genai.TypeNumber},
						"maxScore": {Type: genai.TypeNumber},
						"notes":    {Type: genai.TypeString},
					},
					Required: []string{"category", "score", "maxScore"},
				},
			},
		},
		Required: []string{
			"total_score", "verdict", "short_summary", "revision_required", "revision_triggers",
			"strengths", "issues", "risks", "suggestions", "scores",
		},
	}
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
