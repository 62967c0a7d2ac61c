package translate

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/voice_convert/internal/upstream"
)

const openAIProvider = "openai"

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClient) Name() string { return openAIProvider }

func (c *OpenAIClient) Translate(ctx context.Context, in Request) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(in)},
		{Role: openai.ChatMessageRoleUser, Content: in.Text},
	}

	reply, err := c.GetCompletion(ctx, messages)
	if err != nil {
		return "", upstream.FromOpenAI(err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyTranslation
	}
	return reply, nil
}

func (c *OpenAIClient) GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func systemPrompt(in Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the user's message from %s to %s.\n", in.SourceLang, in.TargetLang)
	b.WriteString("The text is a transcript of speech and the translation will be read aloud by a speech synthesizer.\n")
	switch in.Formality {
	case "more", "prefer_more":
		b.WriteString("Use a polite, formal register.\n")
	case "less", "prefer_less":
		b.WriteString("Use a casual, informal register.\n")
	}
	b.WriteString("Reply with the translation only: no quotes, notes, or explanations.")
	return b.String()
}
