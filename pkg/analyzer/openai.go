package analyzer

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gleanhq/glean-engine/pkg/models"
)

const defaultOpenAIModel = openai.GPT4oMini

type openaiAnalyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIAnalyzer creates an analyzer backed by the OpenAI API.
func NewOpenAIAnalyzer(apiKey, model string, logger *zap.Logger) Analyzer {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openaiAnalyzer{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

var _ Analyzer = (*openaiAnalyzer)(nil)

func (a *openaiAnalyzer) Name() string { return "openai" }

func (a *openaiAnalyzer) Analyze(ctx context.Context, discovery *models.Discovery) (*Extraction, error) {
	if strings.TrimSpace(discovery.RawText) == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(extractionPrompt, discovery.RawText)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 2000,
	})
	if err != nil {
		return nil, fmt.Errorf("openai extraction request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	extraction, err := parseExtractionJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if extraction == nil {
		a.logger.Debug("OpenAI found no product in discovery",
			zap.String("discovery_id", discovery.ID.String()))
	}

	return extraction, nil
}
