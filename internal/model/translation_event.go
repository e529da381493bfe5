package model

import "time"

// TranslationEvent is emitted once per handled translate or fix request.
type TranslationEvent struct {
	RequestID    string    `json:"request_id"`
	Endpoint     string    `json:"endpoint"` // "translate" or "fix"
	Question     string    `json:"question,omitempty"`
	IndexPattern string    `json:"index_pattern,omitempty"`
	Outcome      string    `json:"outcome"` // "ok", "rejected" or "failed"
	Optimized    bool      `json:"optimized"`
	Fallback     bool      `json:"fallback"`
	Error        string    `json:"error,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	Time         time.Time `json:"time"`
}
