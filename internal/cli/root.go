package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/rulemerge/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	verbose     bool
	sourcesFile string
	only        []string
)

// version is overridden at build time with -ldflags "-X ..."
var version = "v0.1.0"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rulemerge",
	Short: "Merge remote rule lists into per-category rule-provider files",
	Long: `rulemerge downloads rule lists (DOMAIN, DOMAIN-SUFFIX, IP-CIDR, ...) from
the sources named in a rule_sources.conf file, deduplicates them per category
and writes one <Category>.list file per category.

Files are only rewritten when their rules change, and a marker file records
whether anything changed so CI jobs can decide whether to commit.

Sources file format:
  ## CategoryName
  https://example.com/list1.txt
  # comment`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rulemerge %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := model.DefaultConfig()

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.rulemerge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&sourcesFile, "sources", "s", defaults.Sources.File, "rule sources file")
	rootCmd.PersistentFlags().StringSliceVar(&only, "only", nil, "only process categories matching these glob patterns")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("sources.file", rootCmd.PersistentFlags().Lookup("sources"))
	_ = viper.BindPFlag("sources.only", rootCmd.PersistentFlags().Lookup("only"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.rulemerge")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// RULEMERGE_OUTPUT_DIR overrides output.dir, and so on
	viper.SetEnvPrefix("RULEMERGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers flags, environment and config file over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
