package anthropic

import (
	"context"
	"errors"
	"fmt"
	"os"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/llm"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/resilience"
)

const credentialEnv = "ANTHROPIC_API_KEY"

type Client struct {
	model     string
	maxTokens int64
}

func New(model string, maxTokens int64) *Client {
	return &Client{
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *Client) Name() string {
	return "anthropic"
}

func (c *Client) CredentialEnv() string {
	return credentialEnv
}

func (c *Client) Configured() bool {
	return os.Getenv(credentialEnv) != ""
}

// Generate builds the SDK client per call so a credential rotated in the
// environment takes effect on the next request.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	client := sdk.NewClient(option.WithAPIKey(os.Getenv(credentialEnv)))

	message, err := client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: sdk.Float(0.1),
		System: []sdk.TextBlockParam{
			{Text: llm.SystemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in anthropic response")
}

func (c *Client) ClassifyError(err error) resilience.ErrorClassification {
	if class, ok := llm.ClassifyTransportError(err); ok {
		return class
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return llm.ClassifyStatusCode(apiErr.StatusCode)
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
