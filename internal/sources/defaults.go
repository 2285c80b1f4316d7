// Package sources holds the built-in feed registry. Definitions are seeded
// into the sources table on first start; after that the table is the
// operator-owned system of record.
package sources

import (
	"github.com/vidyagam/vidyagam/internal/models"
)

// Defaults returns the built-in AI news source registry.
func Defaults() []models.SourceDefinition {
	return []models.SourceDefinition{
		{
			Name:        "OpenAI",
			FeedURL:     "https://openai.com/blog/rss.xml",
			Website:     "https://openai.com",
			ContentType: models.ContentTypeBlogs,
			Category:    "research",
			Enabled:     true,
			Priority:    1,
			Description: "Official OpenAI blog and announcements",
		},
		{
			Name:        "Anthropic",
			FeedURL:     "https://www.anthropic.com/news/rss.xml",
			Website:     "https://www.anthropic.com",
			ContentType: models.ContentTypeBlogs,
			Category:    "research",
			Enabled:     true,
			Priority:    1,
			Description: "Anthropic news and research updates",
		},
		{
			Name:        "Google DeepMind",
			FeedURL:     "https://deepmind.google/discover/blog/rss.xml",
			Website:     "https://deepmind.google",
			ContentType: models.ContentTypeBlogs,
			Category:    "research",
			Enabled:     true,
			Priority:    1,
			Description: "DeepMind research blog",
		},
		{
			Name:        "Meta AI",
			FeedURL:     "https://ai.meta.com/blog/rss",
			Website:     "https://ai.meta.com",
			ContentType: models.ContentTypeBlogs,
			Category:    "research",
			Enabled:     true,
			Priority:    1,
			Description: "Meta AI research and product updates",
		},
		{
			Name:        "Google AI Blog",
			FeedURL:     "https://blog.google/technology/ai/rss",
			Website:     "https://blog.google/technology/ai",
			ContentType: models.ContentTypeBlogs,
			Category:    "research",
			Enabled:     true,
			Priority:    1,
			Description: "Google AI and technology blog",
		},
		{
			Name:        "NVIDIA AI",
			FeedURL:     "https://blogs.nvidia.com/blog/category/artificial-intelligence/feed",
			Website:     "https://blogs.nvidia.com",
			ContentType: models.ContentTypeBlogs,
			Category:    "technical",
			Enabled:     true,
			Priority:    1,
			Description: "NVIDIA AI engineering blog",
		},
		{
			Name:        "MIT CSAIL",
			FeedURL:     "https://www.csail.mit.edu/news/rss.xml",
			Website:     "https://www.csail.mit.edu",
			ContentType: models.ContentTypeBlogs,
			Category:    "research",
			Enabled:     true,
			Priority:    2,
			Description: "MIT Computer Science and AI Laboratory news",
		},
		{
			Name:        "Berkeley AI Research",
			FeedURL:     "https://bair.berkeley.edu/blog/feed.xml",
			Website:     "https://bair.berkeley.edu",
			ContentType: models.ContentTypeBlogs,
			Category:    "research",
			Enabled:     true,
			Priority:    2,
			Description: "BAIR lab research blog",
		},
		{
			Name:        "VentureBeat AI",
			FeedURL:     "https://venturebeat.com/ai/feed",
			Website:     "https://venturebeat.com/ai",
			ContentType: models.ContentTypeBlogs,
			Category:    "business",
			Enabled:     true,
			Priority:    2,
			Description: "AI business and industry coverage",
		},
		{
			Name:        "TechCrunch AI",
			FeedURL:     "https://techcrunch.com/category/artificial-intelligence/feed",
			Website:     "https://techcrunch.com",
			ContentType: models.ContentTypeBlogs,
			Category:    "business",
			Enabled:     true,
			Priority:    2,
			Description: "Startup and industry AI news",
		},
		{
			Name:        "MIT Technology Review AI",
			FeedURL:     "https://www.technologyreview.com/topic/artificial-intelligence/feed",
			Website:     "https://www.technologyreview.com",
			ContentType: models.ContentTypeBlogs,
			Category:    "business",
			Enabled:     true,
			Priority:    2,
			Description: "In-depth AI journalism",
		},
		{
			Name:        "Lex Fridman Podcast",
			FeedURL:     "https://lexfridman.com/feed/podcast/",
			Website:     "https://lexfridman.com",
			ContentType: models.ContentTypePodcasts,
			Category:    "learning",
			Enabled:     false,
			Priority:    3,
			Description: "Long-form AI interviews",
		},
	}
}
