package analyzer

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/models"
)

const defaultClaudeModel = "claude-sonnet-4-5-20250929"

type claudeAnalyzer struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewClaudeAnalyzer creates an analyzer backed by the Anthropic API.
func NewClaudeAnalyzer(apiKey, model string, logger *zap.Logger) Analyzer {
	if model == "" {
		model = defaultClaudeModel
	}
	return &claudeAnalyzer{
		client: anthropic.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

var _ Analyzer = (*claudeAnalyzer)(nil)

func (a *claudeAnalyzer) Name() string { return "claude" }

func (a *claudeAnalyzer) Analyze(ctx context.Context, discovery *models.Discovery) (*Extraction, error) {
	if strings.TrimSpace(discovery.RawText) == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(extractionPrompt, discovery.RawText)

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: 2000,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude extraction request failed: %w", err)
	}

	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			responseText = *block.Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("claude returned no text content")
	}

	extraction, err := parseExtractionJSON(responseText)
	if err != nil {
		return nil, err
	}
	if extraction == nil {
		a.logger.Debug("Claude found no product in discovery",
			zap.String("discovery_id", discovery.ID.String()))
	}

	return extraction, nil
}
