package inference

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	configpkg "github.com/minhyannv/mcp-chat-go/pkg/config"
	"github.com/minhyannv/mcp-chat-go/pkg/conversation"
	loggerpkg "github.com/minhyannv/mcp-chat-go/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client on top of the chat completions API.
type OpenAIClient struct {
	client  openai.Client
	model   string
	logger  loggerpkg.Logger
	verbose bool
}

// NewOpenAIClient builds a client for cfg. With an endpoint configured it talks
// to Azure OpenAI, authenticating with the API key when one is set and with the
// Azure default credential chain otherwise.
func NewOpenAIClient(cfg configpkg.Config, l loggerpkg.Logger, extra ...option.RequestOption) (*OpenAIClient, error) {
	if l == nil {
		l = loggerpkg.NopLogger{}
	}
	opts, err := requestOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)

	loggerpkg.Debug(cfg.Verbose, l, "inference client ready", map[string]any{
		"endpoint": cfg.Endpoint,
		"base_url": cfg.BaseURL,
		"model":    cfg.Model,
	})
	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		logger:  l,
		verbose: cfg.Verbose,
	}, nil
}

func requestOptions(cfg configpkg.Config) ([]option.RequestOption, error) {
	opts := []option.RequestOption{}
	if cfg.Endpoint != "" {
		opts = append(opts, azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion))
		if cfg.APIKey != "" {
			return append(opts, azure.WithAPIKey(cfg.APIKey)), nil
		}
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("azure credential: %w", err)
		}
		return append(opts, azure.WithTokenCredential(cred)), nil
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return opts, nil
}

// Complete performs one chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	params, err := c.newChatParams(req)
	if err != nil {
		return Response{}, err
	}

	loggerpkg.Debug(c.verbose, c.logger, "sending chat completion", map[string]any{
		"messages": len(req.Messages),
		"tools":    len(req.Tools),
	})
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, err
	}
	if len(completion.Choices) == 0 {
		return Response{}, errors.New("empty completion choices")
	}
	loggerpkg.Debug(c.verbose, c.logger, "chat completion received", map[string]any{
		"choices":       len(completion.Choices),
		"finish_reason": completion.Choices[0].FinishReason,
	})

	resp := Response{Choices: make([]conversation.AssistantMessage, 0, len(completion.Choices))}
	for _, choice := range completion.Choices {
		resp.Choices = append(resp.Choices, fromCompletionMessage(choice.Message))
	}
	return resp, nil
}

func (c *OpenAIClient) newChatParams(req Request) (openai.ChatCompletionNewParams, error) {
	messages, err := toParams(req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if len(req.Tools) > 0 {
		params.Tools = req.Tools
	}
	return params, nil
}
