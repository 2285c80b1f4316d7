package models

// SourceDefinition describes one feed the scraper pulls from. Definitions
// are loaded at startup and treated as read-only for the duration of a run;
// operators edit them out-of-band.
type SourceDefinition struct {
	Name        string      `json:"name"`
	FeedURL     string      `json:"feed_url"`
	Website     string      `json:"website,omitempty"`
	ContentType ContentType `json:"content_type"`
	Category    string      `json:"category"`
	Enabled     bool        `json:"enabled"`
	Priority    int         `json:"priority"` // lower = higher priority
	Description string      `json:"description,omitempty"`
}

// ContentType categorizes what kind of content a source publishes.
type ContentType string

const (
	ContentTypeBlogs    ContentType = "blogs"
	ContentTypePodcasts ContentType = "podcasts"
	ContentTypeVideos   ContentType = "videos"
	ContentTypeLearning ContentType = "learning"
	ContentTypeEvents   ContentType = "events"
	ContentTypeDemos    ContentType = "demos"
)

// Valid reports whether the content type is one of the known values.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeBlogs, ContentTypePodcasts, ContentTypeVideos,
		ContentTypeLearning, ContentTypeEvents, ContentTypeDemos:
		return true
	}
	return false
}
