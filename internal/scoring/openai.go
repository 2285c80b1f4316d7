package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/vidyagam/vidyagam/internal/models"
)

// OpenAIConfig holds LLM scoring parameters.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	BaseURL     string // override for tests
}

// DefaultOpenAIConfig returns sensible defaults for digest scoring.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:       openai.GPT4oMini,
		Temperature: 0.3,
		MaxTokens:   300,
		Timeout:     30 * time.Second,
	}
}

// OpenAIScorer scores articles with a single chat-completion call per
// entry. Every failure mode (transport, timeout, malformed JSON, out of
// range values) degrades to the deterministic fallback; scoring never
// propagates an error into the pipeline and never retries.
type OpenAIScorer struct {
	client     *openai.Client
	config     OpenAIConfig
	fallback   *FallbackScorer
	logger     *slog.Logger
	onFallback func()
}

// NewOpenAIScorer creates an LLM-backed scorer.
func NewOpenAIScorer(cfg OpenAIConfig, logger *slog.Logger) *OpenAIScorer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIScorer{
		client:   openai.NewClientWithConfig(clientConfig),
		config:   cfg,
		fallback: NewFallbackScorer(),
		logger:   logger,
	}
}

// OnFallback registers a hook invoked whenever scoring degrades to the
// heuristic path. Used to feed the Prometheus fallback counter.
func (s *OpenAIScorer) OnFallback(hook func()) {
	s.onFallback = hook
}

// llmAnalysis is the JSON shape requested from the model.
type llmAnalysis struct {
	Summary           string  `json:"summary"`
	SignificanceScore float64 `json:"significance_score"`
	ImpactLevel       string  `json:"impact_level"`
}

// Score asks the LLM for a significance analysis, falling back to the
// heuristic on any failure.
func (s *OpenAIScorer) Score(ctx context.Context, title, description string) Analysis {
	analysis, err := s.scoreLLM(ctx, title, description)
	if err != nil {
		s.logger.Warn("llm scoring failed, using fallback",
			"title", title,
			"error", err)
		if s.onFallback != nil {
			s.onFallback()
		}
		return s.fallback.Score(ctx, title, description)
	}
	return analysis
}

func (s *OpenAIScorer) scoreLLM(ctx context.Context, title, description string) (Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildAnalysisPrompt(title, description)},
		},
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Analysis{}, fmt.Errorf("chat completion returned no choices")
	}

	return parseAnalysis(resp.Choices[0].Message.Content)
}

// parseAnalysis validates the model's response at the ingestion boundary
// rather than trusting it downstream.
func parseAnalysis(content string) (Analysis, error) {
	content = strings.TrimSpace(content)

	// Some models wrap JSON in markdown fences despite instructions.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var raw llmAnalysis
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Analysis{}, fmt.Errorf("failed to parse analysis JSON: %w", err)
	}

	if strings.TrimSpace(raw.Summary) == "" {
		return Analysis{}, fmt.Errorf("analysis missing summary")
	}

	return Analysis{
		Summary:           strings.TrimSpace(raw.Summary),
		SignificanceScore: clampScore(raw.SignificanceScore),
		ImpactLevel:       models.NormalizeImpactLevel(strings.ToLower(raw.ImpactLevel)),
		LLMProcessed:      true,
	}, nil
}
