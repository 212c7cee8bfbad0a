package domain

import "time"

// BuildInfo summarizes one registration pass for a store
type BuildInfo struct {
	BuildID      string    `json:"build_id"`
	StoreID      string    `json:"store_id"`
	StaticPaths  int       `json:"static_paths"`
	Pages        int       `json:"pages"`
	Redirects    int       `json:"redirects"`
	SkippedPaths []string  `json:"skipped_paths,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}
