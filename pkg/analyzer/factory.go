package analyzer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/config"
)

// New builds the analyzer the configuration selects. LLM providers require
// their API key to be present.
func New(cfg config.AnalyzerConfig, logger *zap.Logger) (Analyzer, error) {
	switch cfg.Provider {
	case "", "pattern":
		return NewPatternAnalyzer(logger), nil
	case "claude":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("analyzer provider claude requires ANTHROPIC_API_KEY")
		}
		return NewClaudeAnalyzer(cfg.AnthropicAPIKey, cfg.Model, logger), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("analyzer provider openai requires OPENAI_API_KEY")
		}
		return NewOpenAIAnalyzer(cfg.OpenAIAPIKey, cfg.Model, logger), nil
	default:
		return nil, fmt.Errorf("unknown analyzer provider: %s", cfg.Provider)
	}
}
