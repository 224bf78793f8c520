// Package generation is the contract with the remote text and image
// generation service, plus the deterministic content used when it fails.
package generation

import (
	"context"
	"math/rand/v2"

	"osonaiAPI/internal/scene"
)

// Content is the generated text of a post.
type Content struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// Image is a generated background.
type Image struct {
	URL           string `json:"imageUrl"`
	RevisedPrompt string `json:"revisedPrompt,omitempty"`
}

// Provider generates post content from a prompt.
type Provider interface {
	GenerateText(ctx context.Context, prompt string) (Content, error)
	GenerateImage(ctx context.Context, prompt string, aspect scene.AspectRatio) (Image, error)
	// RegenerateImage is GenerateImage nudged to give a different result
	// for the same prompt.
	RegenerateImage(ctx context.Context, prompt string, aspect scene.AspectRatio) (Image, error)
}

const promptEnhancement = ", high quality, professional photography, Instagram-worthy, vibrant colors, excellent composition"

var variations = []string{
	"different angle",
	"alternative composition",
	"different lighting",
	"unique perspective",
	"creative interpretation",
}

// ImageSize is the provider image size closest to each aspect ratio.
func ImageSize(aspect scene.AspectRatio) string {
	switch aspect {
	case scene.AspectPortrait:
		return "1024x1280"
	case scene.AspectLandscape:
		return "1792x1024"
	default:
		return "1024x1024"
	}
}

// EnhancePrompt appends the photography quality hints to a user prompt.
func EnhancePrompt(prompt string) string {
	return prompt + promptEnhancement
}

// VariedPrompt appends one variation phrase. pick(n) chooses an index in
// [0, n); nil picks at random.
func VariedPrompt(prompt string, pick func(n int) int) string {
	if pick == nil {
		pick = rand.IntN
	}
	return prompt + ", " + variations[pick(len(variations))]
}
