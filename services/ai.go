package services

import (
	"context"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Settings keys for the optional AI rewrite step.
const (
	SettingAIEnabled = "ai_enabled"
	SettingAIBaseURL = "ai_provider_base_url"
	SettingAIAPIKey  = "ai_api_key"
	SettingAIModel   = "ai_model"
	SettingAITone    = "ai_tone"
)

// Polisher optionally rewrites a rendered reminder in the configured tone
// through an OpenAI-compatible endpoint. Strictly best effort: any problem
// returns the original text.
type Polisher struct {
	store RecordStore
}

func NewPolisher(store RecordStore) *Polisher {
	return &Polisher{store: store}
}

func (p *Polisher) Polish(ctx context.Context, body string) string {
	if !p.store.SettingBool(SettingAIEnabled, false) {
		return body
	}
	apiKey := p.store.SettingString(SettingAIAPIKey, "")
	if apiKey == "" {
		return body
	}

	cfg := openai.DefaultConfig(apiKey)
	if base := p.store.SettingString(SettingAIBaseURL, ""); base != "" {
		cfg.BaseURL = base
	}
	client := openai.NewClientWithConfig(cfg)

	model := p.store.SettingString(SettingAIModel, openai.GPT4oMini)
	tone := p.store.SettingString(SettingAITone, "professional")

	reqCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "Rewrite the following customer reminder in a " + tone +
					" tone. Keep every name, plan, amount and day count exactly as given. " +
					"Reply with the rewritten message only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: body,
			},
		},
	})
	if err != nil {
		log.Printf("ai polish: %v (keeping original message)", err)
		return body
	}
	if len(resp.Choices) == 0 {
		return body
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return body
	}
	return out
}
