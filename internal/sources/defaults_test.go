package sources

import (
	"strings"
	"testing"
)

func TestDefaultsAreWellFormed(t *testing.T) {
	defaults := Defaults()
	if len(defaults) == 0 {
		t.Fatal("expected a non-empty default source registry")
	}

	seen := make(map[string]bool)
	enabled := 0

	for _, source := range defaults {
		if source.Name == "" {
			t.Error("source with empty name")
			continue
		}
		if seen[source.Name] {
			t.Errorf("duplicate source name %q", source.Name)
		}
		seen[source.Name] = true

		if !strings.HasPrefix(source.FeedURL, "http") {
			t.Errorf("source %q has invalid feed url %q", source.Name, source.FeedURL)
		}
		if !source.ContentType.Valid() {
			t.Errorf("source %q has invalid content type %q", source.Name, source.ContentType)
		}
		if source.Priority <= 0 {
			t.Errorf("source %q has non-positive priority %d", source.Name, source.Priority)
		}
		if source.Enabled {
			enabled++
		}
	}

	if enabled == 0 {
		t.Error("at least one default source must be enabled")
	}
}
