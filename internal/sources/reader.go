// Package sources reads the category/URL list that drives a rulemerge run.
//
// The format is line oriented:
//
//	## CategoryName
//	https://example.com/list1.txt
//	# a comment
//
// Anything else is ignored.
package sources

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/rulemerge/internal/model"
)

const categoryPrefix = "## "

// ReadFile parses the sources file at path.
// On open or read failure it returns no categories together with the error,
// so callers can log it and carry on with an empty run.
func ReadFile(path string, logw io.Writer) ([]model.Category, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer func() { _ = file.Close() }()

	categories, err := Parse(file, logw)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Parse reads categories from r in file order
func Parse(r io.Reader, logw io.Writer) ([]model.Category, error) {
	if logw == nil {
		logw = io.Discard
	}

	var categories []model.Category
	index := make(map[string]int)
	current := -1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, categoryPrefix):
			name := strings.TrimSpace(line[len(categoryPrefix):])
			if i, ok := index[name]; ok {
				// Redeclaring a category starts its URL list over
				categories[i].URLs = []string{}
				current = i
				continue
			}
			categories = append(categories, model.Category{Name: name, URLs: []string{}})
			current = len(categories) - 1
			index[name] = current
		case strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "##"):
			continue
		case current >= 0 && isURL(line):
			categories[current].URLs = append(categories[current].URLs, line)
		default:
			fmt.Fprintf(logw, "  sources:%d: unrecognized line: %q\n", lineNo, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan sources file: %w", err)
	}

	return categories, nil
}

func isURL(line string) bool {
	return strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://")
}
