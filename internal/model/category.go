package model

// Category is a named group of rule sources producing one output file
type Category struct {
	Name string   `json:"name" yaml:"name"`
	URLs []string `json:"urls" yaml:"urls"` // Source URLs in config order
}

// CategoryResult records what happened to one category during a run
type CategoryResult struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`                   // Output file path
	Sources      int      `json:"sources"`                // URLs listed in config
	Contributing []string `json:"contributing"`           // URLs whose fetch succeeded
	Failed       []string `json:"failed,omitempty"`       // URLs whose fetch failed
	Total        int      `json:"total"`                  // Deduplicated rule count
	Changed      bool     `json:"changed"`                // Output file was (or would be) written
	Error        error    `json:"-"`                      // Write failure, if any
}

// Summary is the outcome of a full run
type Summary struct {
	Categories []CategoryResult `json:"categories"`
	Changed    bool             `json:"changed"` // Any category output changed
}

// Failures returns the categories whose output could not be written
func (s *Summary) Failures() []CategoryResult {
	var failed []CategoryResult
	for _, c := range s.Categories {
		if c.Error != nil {
			failed = append(failed, c)
		}
	}
	return failed
}
