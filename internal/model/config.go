package model

import "time"

// Config holds every tunable of a rulemerge run
type Config struct {
	Sources      SourcesConfig      `yaml:"sources" mapstructure:"sources"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Header       HeaderConfig       `yaml:"header" mapstructure:"header"`
}

// SourcesConfig locates the category/URL list
type SourcesConfig struct {
	File string   `yaml:"file" mapstructure:"file"`
	Only []string `yaml:"only,omitempty" mapstructure:"only"` // Glob patterns selecting categories by name
}

// HTTPConfig controls how rule sources are downloaded
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ConcurrencyConfig bounds parallel fetches within one category
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // 1 = sequential
}

// RateLimitingConfig throttles requests per source host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 = unlimited
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the fetch cache
type CacheConfig struct {
	Dir string        `yaml:"dir,omitempty" mapstructure:"dir"` // Empty = memory only
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls where merged rule files land
type OutputConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Ext      string `yaml:"ext" mapstructure:"ext"`
	FlagFile string `yaml:"flag_file" mapstructure:"flag_file"`
	DryRun   bool   `yaml:"dry_run" mapstructure:"dry_run"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// HeaderConfig holds the fixed attribution lines of every output file
type HeaderConfig struct {
	Author string `yaml:"author" mapstructure:"author"`
	Repo   string `yaml:"repo" mapstructure:"repo"`
}

const (
	DefaultSourcesFile = "rule_sources.conf"
	DefaultOutputDir   = "rule-provider"
	DefaultExt         = ".list"
	DefaultFlagFile    = "rules_updated.flag"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultAuthor      = "Generated by GitHub Action"
	DefaultRepo        = "https://github.com/your-username/your-repo"
)

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			File: DefaultSourcesFile,
		},
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: 64 << 20,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Output: OutputConfig{
			Dir:      DefaultOutputDir,
			Ext:      DefaultExt,
			FlagFile: DefaultFlagFile,
		},
		Header: HeaderConfig{
			Author: DefaultAuthor,
			Repo:   DefaultRepo,
		},
	}
}
