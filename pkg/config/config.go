package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for glean-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8484"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Curation engine tunables
	Curation CurationConfig `yaml:"curation"`

	// Relevance scoring weights and taxonomy location
	Scoring ScoringConfig `yaml:"scoring"`

	// Analyzer (claim extraction) configuration
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Scout (discovery collection) configuration
	Scout ScoutConfig `yaml:"scout"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether bearer tokens are validated.
	// Set to false for local development.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWTSecret signs and verifies HS256 bearer tokens. Secret - not in YAML.
	JWTSecret string `yaml:"-" env:"GLEAN_JWT_SECRET"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"glean"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"glean_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// URL builds a connection string for pgx and golang-migrate.
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// CurationConfig holds the tunables of the curation engine. The dedup
// threshold and promotion guards are deliberately configuration, not code.
type CurationConfig struct {
	// DedupThreshold is the similarity at or above which two product records
	// are considered the same real-world product.
	DedupThreshold float64 `yaml:"dedup_threshold" env:"DEDUP_THRESHOLD" env-default:"0.85"`

	// NameWeight and DomainWeight blend name similarity and domain similarity
	// into the overall dedup similarity. They must sum to 1.
	NameWeight   float64 `yaml:"name_weight" env:"DEDUP_NAME_WEIGHT" env-default:"0.6"`
	DomainWeight float64 `yaml:"domain_weight" env:"DEDUP_DOMAIN_WEIGHT" env-default:"0.4"`

	// MinClaims is the minimum claim count before a tool may leave analyzing.
	MinClaims int `yaml:"min_claims" env:"CURATION_MIN_CLAIMS" env-default:"1"`

	// MinScore is the minimum relevance score for promotion to review.
	MinScore float64 `yaml:"min_score" env:"CURATION_MIN_SCORE" env-default:"0.3"`

	// MaxReviewQueue caps how many tools sit in review at once.
	MaxReviewQueue int `yaml:"max_review_queue" env:"CURATION_MAX_REVIEW_QUEUE" env-default:"50"`
}

// ScoringConfig holds the relevance scorer's weights. Weights must sum to 1
// so the composite score stays in [0,1].
type ScoringConfig struct {
	CategoryWeight    float64 `yaml:"category_weight" env:"SCORE_CATEGORY_WEIGHT" env-default:"0.30"`
	VolumeWeight      float64 `yaml:"volume_weight" env:"SCORE_VOLUME_WEIGHT" env-default:"0.15"`
	ConfidenceWeight  float64 `yaml:"confidence_weight" env:"SCORE_CONFIDENCE_WEIGHT" env-default:"0.20"`
	ReliabilityWeight float64 `yaml:"reliability_weight" env:"SCORE_RELIABILITY_WEIGHT" env-default:"0.15"`
	KeywordWeight     float64 `yaml:"keyword_weight" env:"SCORE_KEYWORD_WEIGHT" env-default:"0.20"`

	// ClaimCap is the claim count at which the volume component saturates.
	ClaimCap int `yaml:"claim_cap" env:"SCORE_CLAIM_CAP" env-default:"8"`

	// TaxonomyPath points at the YAML file defining category weights and
	// keyword signals.
	TaxonomyPath string `yaml:"taxonomy_path" env:"TAXONOMY_PATH" env-default:"taxonomy.yaml"`
}

// Sum returns the total of the five component weights.
func (s *ScoringConfig) Sum() float64 {
	return s.CategoryWeight + s.VolumeWeight + s.ConfidenceWeight + s.ReliabilityWeight + s.KeywordWeight
}

// AnalyzerConfig selects and configures the claim extractor.
type AnalyzerConfig struct {
	// Provider is one of "pattern", "claude", "openai".
	Provider string `yaml:"provider" env:"ANALYZER_PROVIDER" env-default:"pattern"`
	Model    string `yaml:"model" env:"ANALYZER_MODEL" env-default:""`

	// API keys are secrets - environment only.
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`

	// BatchLimit bounds how many discoveries one analyze run processes.
	BatchLimit int `yaml:"batch_limit" env:"ANALYZER_BATCH_LIMIT" env-default:"25"`
}

// ScoutConfig configures discovery collection.
type ScoutConfig struct {
	// RequestsPerSecond rate-limits outbound fetches per scout.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"SCOUT_RPS" env-default:"1"`

	// FeedURLs are the RSS/Atom feeds the rss scout polls.
	FeedURLs []string `yaml:"feed_urls" env:"SCOUT_FEED_URLS" env-separator:","`
}

// Load reads configuration from config.yaml with environment variable
// overrides. If no config file exists, environment variables and defaults
// alone apply. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFrom("config.yaml", version)
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if sum := c.Scoring.Sum(); !nearOne(sum) {
		return fmt.Errorf("scoring weights sum to %.4f, must sum to 1", sum)
	}
	if sum := c.Curation.NameWeight + c.Curation.DomainWeight; !nearOne(sum) {
		return fmt.Errorf("dedup name/domain weights sum to %.4f, must sum to 1", sum)
	}
	if c.Curation.DedupThreshold <= 0 || c.Curation.DedupThreshold > 1 {
		return fmt.Errorf("dedup threshold %.4f outside (0,1]", c.Curation.DedupThreshold)
	}
	if c.Auth.EnableVerification && c.Auth.JWTSecret == "" {
		return fmt.Errorf("GLEAN_JWT_SECRET must be set when auth verification is enabled")
	}
	return nil
}

func nearOne(v float64) bool {
	const eps = 1e-6
	return v > 1-eps && v < 1+eps
}
