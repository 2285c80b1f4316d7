package ingestion

import (
	"fmt"
	"time"
)

// Classifier decides whether a timestamp falls on the current calendar day
// in a fixed reference timezone. The decision is made once at scrape time
// and stored with the article; it is never re-evaluated later.
type Classifier struct {
	location *time.Location
	now      func() time.Time
}

// NewClassifier creates a classifier for the named timezone.
func NewClassifier(timezone string) (*Classifier, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	return &Classifier{
		location: location,
		now:      time.Now,
	}, nil
}

// WithClock overrides the clock. Used by tests to pin the reference day.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	clone := *c
	clone.now = now
	return &clone
}

// IsCurrentDay reports whether ts falls on the same calendar date as now
// in the reference timezone. A missing timestamp classifies as not current
// day: the filter fails closed rather than over-including.
func (c *Classifier) IsCurrentDay(ts *time.Time) bool {
	if ts == nil {
		return false
	}

	entryDay := ts.In(c.location).Format("2006-01-02")
	currentDay := c.now().In(c.location).Format("2006-01-02")
	return entryDay == currentDay
}

// CurrentDay returns today's date string in the reference timezone.
func (c *Classifier) CurrentDay() string {
	return c.now().In(c.location).Format("2006-01-02")
}
