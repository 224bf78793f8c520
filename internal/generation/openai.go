package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"osonaiAPI/internal/scene"
)

const textSystemPrompt = `You are a creative Instagram content generator. Based on the user's prompt, generate engaging Instagram post content.

Return your response as a JSON object with the following structure:
{
    "title": "A catchy title (3-6 words max, bold and engaging)",
    "subtitle": "An optional subtitle (up to 10 words, complements the title)",
    "caption": "Instagram caption (2-3 sentences max, engaging and authentic with relevant emojis)",
    "hashtags": ["array", "of", "15-25", "relevant", "hashtags", "without", "spaces"]
}

Make sure the content is:
- Engaging and Instagram-optimized
- Relevant to the prompt
- Uses appropriate emojis
- Has trending and niche hashtags
- Feels authentic and not overly promotional`

const contentPolicyCode = "content_policy_violation"

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
}

// OpenAIProvider generates text with a chat model and backgrounds with an
// image model.
type OpenAIProvider struct {
	client     *openai.Client
	textModel  string
	imageModel string

	// pick chooses the regeneration variation; nil means random.
	pick func(n int) int
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = openai.GPT4
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = openai.CreateImageModelDallE3
	}
	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}
}

// NewProvider returns the OpenAI provider, or Disabled when no key is set.
func NewProvider(cfg OpenAIConfig) Provider {
	if cfg.APIKey == "" {
		log.Println("OPENAI_API_KEY not set, generation will use mock content")
		return Disabled{}
	}
	return NewOpenAIProvider(cfg)
}

func (p *OpenAIProvider) GenerateText(ctx context.Context, prompt string) (Content, error) {
	if strings.TrimSpace(prompt) == "" {
		return Content{}, ErrPromptRequired
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: textSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Generate Instagram content for: " + prompt},
		},
		Temperature: 0.8,
		MaxTokens:   1000,
	})
	if err != nil {
		return Content{}, classify("generate text", err)
	}
	if len(resp.Choices) == 0 {
		return Content{}, fmt.Errorf("%w: generate text: empty response", ErrGenerationFailed)
	}

	var content Content
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Choices[0].Message.Content)), &content); err != nil {
		log.Printf("generated text was not valid JSON, using fallback content: %v", err)
		return FallbackContent(), nil
	}
	return content, nil
}

func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string, aspect scene.AspectRatio) (Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return Image{}, ErrPromptRequired
	}
	return p.createImage(ctx, "generate image", EnhancePrompt(prompt), aspect)
}

func (p *OpenAIProvider) RegenerateImage(ctx context.Context, prompt string, aspect scene.AspectRatio) (Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return Image{}, ErrPromptRequired
	}
	return p.createImage(ctx, "regenerate image", VariedPrompt(prompt, p.pick), aspect)
}

func (p *OpenAIProvider) createImage(ctx context.Context, op, prompt string, aspect scene.AspectRatio) (Image, error) {
	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          p.imageModel,
		N:              1,
		Size:           ImageSize(aspect),
		Quality:        openai.CreateImageQualityStandard,
		Style:          openai.CreateImageStyleVivid,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return Image{}, classify(op, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return Image{}, fmt.Errorf("%w: %s: no image returned", ErrGenerationFailed, op)
	}
	return Image{URL: resp.Data[0].URL, RevisedPrompt: resp.Data[0].RevisedPrompt}, nil
}

// classify wraps a client error, singling out content policy rejections.
func classify(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && fmt.Sprint(apiErr.Code) == contentPolicyCode {
		return &ContentPolicyError{Message: apiErr.Message}
	}
	return fmt.Errorf("%w: %s: %v", ErrGenerationFailed, op, err)
}
