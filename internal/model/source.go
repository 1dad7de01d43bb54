package model

import "time"

// SourceStatus is the health of one source URL as seen by a HEAD probe
type SourceStatus struct {
	Category     string     `json:"category" yaml:"category"`
	URL          string     `json:"url" yaml:"url"`
	IsAccessible bool       `json:"is_accessible" yaml:"is_accessible"`
	StatusCode   int        `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	AgeDays      *int       `json:"age_days,omitempty" yaml:"age_days,omitempty"`
	IsStale      bool       `json:"is_stale" yaml:"is_stale"`                               // Not modified for longer than the stale threshold
	IsDead       bool       `json:"is_dead" yaml:"is_dead"`                                 // 404, 410 or unreachable
	RedirectURL  string     `json:"redirect_url,omitempty" yaml:"redirect_url,omitempty"` // Final URL if redirected
	Error        string     `json:"error,omitempty" yaml:"error,omitempty"`
}
