package sources

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/ppiankov/rulemerge/internal/model"
)

// Select keeps the categories whose name matches any of the glob patterns.
// No patterns selects everything.
func Select(categories []model.Category, patterns []string) ([]model.Category, error) {
	if len(patterns) == 0 {
		return categories, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	var selected []model.Category
	for _, c := range categories {
		for _, g := range globs {
			if g.Match(c.Name) {
				selected = append(selected, c)
				break
			}
		}
	}
	return selected, nil
}
