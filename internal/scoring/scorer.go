package scoring

import (
	"context"
	"strings"

	"github.com/vidyagam/vidyagam/internal/models"
)

// Analysis is the significance assessment produced for one article.
type Analysis struct {
	Summary           string             `json:"summary"`
	SignificanceScore float64            `json:"significance_score"`
	ImpactLevel       models.ImpactLevel `json:"impact_level"`
	LLMProcessed      bool               `json:"llm_processed"`
}

// Scorer produces a significance analysis for an article. Implementations
// are infallible by contract: degradation (LLM outage, malformed response)
// is handled internally so the scrape pipeline never blocks on scoring.
type Scorer interface {
	Score(ctx context.Context, title, description string) Analysis
}

const (
	fallbackScore         = 5.0
	fallbackSummaryLength = 100
)

// FallbackScorer is the deterministic heuristic used when no LLM is
// configured or the LLM path fails: a synthetic summary from the title and
// truncated description, a fixed mid-range score, medium impact.
type FallbackScorer struct{}

// NewFallbackScorer creates the heuristic scorer.
func NewFallbackScorer() *FallbackScorer {
	return &FallbackScorer{}
}

// Score produces the deterministic fallback analysis.
func (s *FallbackScorer) Score(ctx context.Context, title, description string) Analysis {
	return Analysis{
		Summary:           fallbackSummary(title, description),
		SignificanceScore: fallbackScore,
		ImpactLevel:       models.ImpactMedium,
		LLMProcessed:      false,
	}
}

func fallbackSummary(title, description string) string {
	summary := strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if description != "" {
		if len(description) > fallbackSummaryLength {
			description = description[:fallbackSummaryLength] + "..."
		}
		if summary != "" {
			summary += ". "
		}
		summary += description
	}

	return summary
}

// clampScore forces a score into the [0, 10] contract.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
