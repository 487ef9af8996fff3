// Package llm wraps the Azure OpenAI chat-completion API behind the small
// surface the dispatcher needs.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"github.com/planora/agent-gateway/internal/config"
)

type Client struct {
	api        *openai.Client
	deployment string
}

// New builds an Azure-flavored client: api-key header auth, deployment name
// in the path, explicit api-version query parameter.
func New(cfg *config.Config) *Client {
	acfg := openai.DefaultAzureConfig(cfg.AzureOpenAIKey, cfg.AzureOpenAIEndpoint)
	if cfg.AzureAPIVersion != "" {
		acfg.APIVersion = cfg.AzureAPIVersion
	}
	deployment := cfg.AzureDeployment
	acfg.AzureModelMapperFunc = func(string) string { return deployment }

	return &Client{
		api:        openai.NewClientWithConfig(acfg),
		deployment: deployment,
	}
}

func (c *Client) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	req.Model = c.deployment
	return c.api.CreateChatCompletion(ctx, req)
}
