package pipeline

import (
	"strings"

	"github.com/ppiankov/rulemerge/internal/model"
)

// rulePrefix pairs a rule type with the literal text a line must start with
type rulePrefix struct {
	Type   model.RuleType
	Prefix string
}

// classifierTable is tested in order; the first literal prefix match claims
// the line. A match followed by '-' belongs to a longer keyword, so DOMAIN
// never claims DOMAIN-SUFFIX lines while IP-CIDR still takes IP-CIDR6.
var classifierTable = buildClassifierTable()

func buildClassifierTable() []rulePrefix {
	types := model.RuleTypes()
	table := make([]rulePrefix, 0, len(types))
	for _, t := range types {
		table = append(table, rulePrefix{Type: t, Prefix: t.String()})
	}
	return table
}

// Classified holds the rule lines of one source grouped by type
type Classified struct {
	Rules map[model.RuleType][]string
	Total int
}

// Classify splits raw rule-list text into typed buckets.
// Blank lines, # comments and lines with an unknown keyword are dropped.
func Classify(content string) Classified {
	result := Classified{Rules: make(map[model.RuleType][]string)}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if t, ok := classifyLine(line); ok {
			result.Rules[t] = append(result.Rules[t], line)
			result.Total++
		}
	}

	return result
}

func classifyLine(line string) (model.RuleType, bool) {
	for _, p := range classifierTable {
		if !strings.HasPrefix(line, p.Prefix) {
			continue
		}
		if len(line) > len(p.Prefix) && line[len(p.Prefix)] == '-' {
			continue
		}
		return p.Type, true
	}
	return 0, false
}
