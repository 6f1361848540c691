package models

import "time"

// MNewsArticle is one processed news item for a symbol.
type MNewsArticle struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Publisher   string `json:"publisher"`
	Link        string `json:"link"`
	PublishTime string `json:"publish_time"`
}

// -----------------------------------------------------------------------------

// MNewsEntry is a cached news list with its capture time.
type MNewsEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Articles  []MNewsArticle `json:"articles"`
}
