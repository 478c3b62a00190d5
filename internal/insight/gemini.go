package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const maxHeadlinesPerCall = 120

// GeminiService implements Service against the Gemini API.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates the Gemini-backed insight service.
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiService{client: client, model: model}, nil
}

// Close releases the underlying client.
func (g *GeminiService) Close() {
	if g != nil && g.client != nil {
		g.client.Close()
	}
}

// Digest asks the model for a structured report over the given headlines.
func (g *GeminiService) Digest(ctx context.Context, headlines []string) (*Digest, error) {
	if len(headlines) == 0 {
		return &Digest{}, nil
	}

	prompt := digestPrompt(capHeadlines(headlines))
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var digest Digest
	if err := json.Unmarshal([]byte(raw), &digest); err != nil {
		return nil, fmt.Errorf("decode digest response: %w", err)
	}
	return &digest, nil
}

// SentimentTimeline asks the model to score headline mood per time slot.
func (g *GeminiService) SentimentTimeline(ctx context.Context, headlines []TimedHeadline) ([]SentimentInterval, error) {
	if len(headlines) == 0 {
		return nil, nil
	}
	if len(headlines) > maxHeadlinesPerCall {
		headlines = headlines[:maxHeadlinesPerCall]
	}

	raw, err := g.generate(ctx, sentimentPrompt(headlines))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Intervals []SentimentInterval `json:"intervals"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode sentiment response: %w", err)
	}
	return payload.Intervals, nil
}

func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("model returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return stripCodeFence(sb.String()), nil
}

// stripCodeFence removes a surrounding markdown code fence when the model
// ignores the JSON MIME type hint.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func capHeadlines(headlines []string) []string {
	if len(headlines) > maxHeadlinesPerCall {
		return headlines[:maxHeadlinesPerCall]
	}
	return headlines
}

func digestPrompt(headlines []string) string {
	var sb strings.Builder
	sb.WriteString("You are a news analyst. Given the headlines below, respond with a single JSON object matching exactly this shape:\n")
	sb.WriteString(`{"summary": string, "keywords": [string], "topics": [{"topic": string, "summary": string, "headlines": [string]}], "categories": {string: int}, "personalities": [string], "locations": [string]}`)
	sb.WriteString("\nNo prose outside the JSON.\n\nHEADLINES:\n")
	for _, h := range headlines {
		sb.WriteString("- ")
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	return sb.String()
}

func sentimentPrompt(headlines []TimedHeadline) string {
	var sb strings.Builder
	sb.WriteString("Score the sentiment of these timestamped headlines grouped into hourly intervals. Respond with a single JSON object matching exactly this shape:\n")
	sb.WriteString(`{"intervals": [{"interval": string, "score": number, "label": string}]}`)
	sb.WriteString("\nScore is -1.0 to 1.0. No prose outside the JSON.\n\nHEADLINES:\n")
	for _, h := range headlines {
		sb.WriteString("- [")
		sb.WriteString(h.PublishedAt.UTC().Format("2006-01-02T15:04Z"))
		sb.WriteString("] ")
		sb.WriteString(h.Title)
		sb.WriteString("\n")
	}
	return sb.String()
}
