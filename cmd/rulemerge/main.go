// rulemerge merges remote proxy rule lists into per-category rule-provider files.
package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/rulemerge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
