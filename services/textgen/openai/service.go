package openaisvc

import (
	"context"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/trezcool/internat/core/recap"
)

type service struct {
	client *openai.Client
	model  string
}

var _ recap.TextProvider = (*service)(nil)

func NewProvider(apiKey, model string) recap.TextProvider {
	return &service{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (svc *service) Name() string { return "openai" }

func (svc *service) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := svc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       svc.model,
		MaxTokens:   1024,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: recap.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "openai completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
