package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/rulemerge/internal/sources"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// categoriesCmd lists what an update run would process, without any network access
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories and source URLs of the sources file",
	Long: `Parse the sources file and print its categories as YAML.
No sources are downloaded.

Example:
  rulemerge categories
  rulemerge categories --sources rule_sources.conf --only 'Proxy*'`,
	Args: cobra.NoArgs,
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	detail := io.Discard
	if cfg.Output.Verbose {
		detail = os.Stderr
	}

	categories, err := sources.ReadFile(cfg.Sources.File, detail)
	if err != nil {
		return err
	}

	categories, err = sources.Select(categories, cfg.Sources.Only)
	if err != nil {
		return fmt.Errorf("select categories: %w", err)
	}

	out, err := yaml.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
