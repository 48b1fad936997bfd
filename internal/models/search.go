package models

import "time"

// SearchResult is one directory search hit with its relevance score and the
// snippet assembled from the fields that matched.
type SearchResult struct {
	Profile Profile `json:"profile"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// SearchQuery is the analytics record of one executed search.
type SearchQuery struct {
	ID           int64     `json:"id"`
	Query        string    `json:"query"`
	ResultsCount int       `json:"results_count"`
	CreatedAt    time.Time `json:"created_at"`
}
