package scoring

import (
	"fmt"
)

const systemPrompt = `You are an analyst ranking AI industry news for a daily digest. ` +
	`Respond only with valid JSON, no prose and no markdown fences.`

const analysisTemplate = `Analyze this AI news article and provide:
1. A concise 2-sentence summary
2. A significance score from 0 to 10, where 10 is breakthrough news
3. An impact level: low, medium, or high

Title: %s
Description: %s

Respond in JSON format:
{
  "summary": "Your 2-sentence summary",
  "significance_score": 7.5,
  "impact_level": "high"
}`

// buildAnalysisPrompt fills the analysis template for one article.
func buildAnalysisPrompt(title, description string) string {
	if description == "" {
		description = "No description"
	}
	return fmt.Sprintf(analysisTemplate, title, description)
}
