package generation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"osonaiAPI/internal/scene"
)

// mockRule matches prompts containing any of its keywords.
type mockRule struct {
	keywords []string
	content  Content
}

var mockRules = []mockRule{
	{
		keywords: []string{"forest", "nature"},
		content: Content{
			Title:    "Into the Wild",
			Subtitle: "Nature calls",
			Caption:  "Lost in the beauty of nature. Sometimes you need to disconnect to reconnect. 🌲",
			Hashtags: []string{"#nature", "#forest", "#wilderness", "#outdoors", "#hiking", "#peaceful", "#naturephotography", "#trees", "#adventure", "#mindfulness"},
		},
	},
	{
		keywords: []string{"quote", "peaceful"},
		content: Content{
			Title:    "Find Peace",
			Subtitle: "Within yourself",
			Caption:  "In the quiet moments, we find our strength. Take time to breathe and just be. 🧘‍♀️",
			Hashtags: []string{"#peace", "#mindfulness", "#meditation", "#quotes", "#innerpeace", "#wellness", "#selfcare", "#tranquility", "#zen", "#breathe"},
		},
	},
	{
		keywords: []string{"sunset", "golden"},
		content: Content{
			Title:    "Golden Hour",
			Subtitle: "Magic happens",
			Caption:  "Chasing sunsets and dreams. Every ending is a new beginning. 🌅",
			Hashtags: []string{"#sunset", "#goldenhour", "#photography", "#sky", "#beautiful", "#nature", "#evening", "#peaceful", "#magical", "#dreams"},
		},
	},
}

const (
	defaultTitle    = "Inspiration"
	defaultSubtitle = "Find your moment"
	defaultCaption  = "Embrace the beauty of everyday moments. ✨"
)

// MockContent picks canned content by keyword. Rules are checked in order,
// so the first matching set wins. Words are split on single spaces and
// compared lowercased.
func MockContent(prompt string) Content {
	words := strings.Split(strings.ToLower(prompt), " ")
	for _, rule := range mockRules {
		for _, kw := range rule.keywords {
			if slices.Contains(words, kw) {
				return cloneContent(rule.content)
			}
		}
	}
	return Content{
		Title:    defaultTitle,
		Subtitle: defaultSubtitle,
		Caption:  defaultCaption,
		Hashtags: []string{"#inspiration", "#motivation", "#lifestyle", "#mindfulness", "#beauty"},
	}
}

// FallbackContent is used when the provider answered with something that
// is not the expected JSON document.
func FallbackContent() Content {
	return Content{
		Title:    defaultTitle,
		Subtitle: defaultSubtitle,
		Caption:  defaultCaption,
		Hashtags: []string{"#inspiration", "#motivation", "#lifestyle", "#mindfulness", "#beauty", "#moments", "#life", "#positivity", "#wellness", "#selfcare", "#mindset", "#growth", "#peace", "#joy", "#gratitude"},
	}
}

// PlaceholderImageURL is the generic image used when image generation fails.
func PlaceholderImageURL(now time.Time) string {
	return fmt.Sprintf("https://picsum.photos/800/800?random=%d", now.UnixMilli())
}

func cloneContent(c Content) Content {
	c.Hashtags = slices.Clone(c.Hashtags)
	return c
}

// Disabled is the provider used when no API key is configured. Every call
// fails so callers fall back to mock content.
type Disabled struct{}

func (Disabled) GenerateText(context.Context, string) (Content, error) {
	return Content{}, ErrProviderDisabled
}

func (Disabled) GenerateImage(context.Context, string, scene.AspectRatio) (Image, error) {
	return Image{}, ErrProviderDisabled
}

func (Disabled) RegenerateImage(context.Context, string, scene.AspectRatio) (Image, error) {
	return Image{}, ErrProviderDisabled
}
