package anthropicsvc

import (
	"context"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/internat/core/recap"
)

type service struct {
	client *anthropic.Client
	model  string
}

var _ recap.TextProvider = (*service)(nil)

func NewProvider(apiKey, model string) recap.TextProvider {
	return &service{
		client: anthropic.NewClient(apiKey),
		model:  model,
	}
}

func (svc *service) Name() string { return "anthropic" }

func (svc *service) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := svc.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(svc.model),
		MaxTokens: 1024,
		System:    recap.SystemPrompt,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "anthropic completion")
	}
	text := resp.GetFirstContentText()
	if text == "" {
		return "", errors.New("anthropic: empty response")
	}
	return text, nil
}
