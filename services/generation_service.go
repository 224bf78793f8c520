package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"osonaiAPI/internal/generation"
	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/scene"
	"osonaiAPI/internal/types/canvas"
)

var ErrNoPrompt = errors.New("no prompt available, generate a post first")

const (
	NoticeText  = "text"
	NoticeImage = "image"
)

// Notice tells the user a generation step degraded instead of failing.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type GenerationResult struct {
	Scene   canvas.SceneView `json:"scene"`
	Notices []Notice         `json:"notices"`
}

type GenerationService struct {
	provider generation.Provider
	timeout  time.Duration
	manager  *SceneManager
	now      func() time.Time
}

func NewGenerationService(provider generation.Provider, timeout time.Duration, manager *SceneManager) *GenerationService {
	return &GenerationService{
		provider: provider,
		timeout:  timeout,
		manager:  manager,
		now:      time.Now,
	}
}

func (s *GenerationService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func cleanPrompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", generation.ErrPromptRequired
	}
	return prompt, nil
}

// Text calls the provider directly, without any fallback.
func (s *GenerationService) Text(ctx context.Context, prompt string) (generation.Content, error) {
	prompt, err := cleanPrompt(prompt)
	if err != nil {
		return generation.Content{}, err
	}
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.provider.GenerateText(ctx, prompt)
}

func (s *GenerationService) Image(ctx context.Context, prompt string, aspect scene.AspectRatio) (generation.Image, error) {
	prompt, err := cleanPrompt(prompt)
	if err != nil {
		return generation.Image{}, err
	}
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.provider.GenerateImage(ctx, prompt, aspect)
}

func (s *GenerationService) RegenerateImage(ctx context.Context, prompt string, aspect scene.AspectRatio) (generation.Image, error) {
	prompt, err := cleanPrompt(prompt)
	if err != nil {
		return generation.Image{}, err
	}
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.provider.RegenerateImage(ctx, prompt, aspect)
}

// GeneratePost fills a scene from a new prompt. Failed steps fall back to
// mock text or a placeholder background and are reported as notices.
func (s *GenerationService) GeneratePost(ctx context.Context, sceneID, prompt string) (GenerationResult, error) {
	prompt, err := cleanPrompt(prompt)
	if err != nil {
		return GenerationResult{}, err
	}
	return s.post(ctx, sceneID, func(*scene.Scene) (string, error) { return prompt, nil })
}

// RegeneratePost repeats the generation with the prompt the scene was last
// generated from.
func (s *GenerationService) RegeneratePost(ctx context.Context, sceneID string) (GenerationResult, error) {
	return s.post(ctx, sceneID, storedPrompt)
}

func storedPrompt(sc *scene.Scene) (string, error) {
	if sc.Prompt == "" {
		return "", ErrNoPrompt
	}
	return sc.Prompt, nil
}

func (s *GenerationService) post(ctx context.Context, sceneID string, promptOf func(*scene.Scene) (string, error)) (GenerationResult, error) {
	sess, err := s.manager.Get(sceneID)
	if err != nil {
		return GenerationResult{}, err
	}
	release, err := sess.beginGeneration()
	if err != nil {
		return GenerationResult{}, err
	}
	defer release()

	var (
		prompt string
		aspect scene.AspectRatio
	)
	if err := sess.Do(func(sc *scene.Scene) error {
		p, err := promptOf(sc)
		prompt, aspect = p, sc.AspectRatio
		return err
	}); err != nil {
		return GenerationResult{}, err
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	var (
		content         generation.Content
		img             generation.Image
		textErr, imgErr error
		g               errgroup.Group
	)
	g.Go(func() error {
		content, textErr = s.provider.GenerateText(ctx, prompt)
		return nil
	})
	g.Go(func() error {
		img, imgErr = s.provider.GenerateImage(ctx, prompt, aspect)
		return nil
	})
	g.Wait()

	var notices []Notice
	if textErr != nil {
		log.Printf("[Session %s] text generation failed, using mock content: %v", sess.ID, textErr)
		generationFallbacks.WithLabelValues(NoticeText, fallbackReason(textErr)).Inc()
		content = generation.MockContent(prompt)
		notices = append(notices, Notice{Kind: NoticeText, Message: noticeMessage("text", textErr)})
	}
	if imgErr != nil {
		log.Printf("[Session %s] image generation failed, using placeholder: %v", sess.ID, imgErr)
		generationFallbacks.WithLabelValues(NoticeImage, fallbackReason(imgErr)).Inc()
		img = generation.Image{URL: generation.PlaceholderImageURL(s.now())}
		notices = append(notices, Notice{Kind: NoticeImage, Message: noticeMessage("image", imgErr)})
	}

	src, err := imagesource.FromURL(img.URL)
	if err != nil {
		log.Printf("[Session %s] provider returned unusable image url %q: %v", sess.ID, img.URL, err)
		src, _ = imagesource.FromURL(generation.PlaceholderImageURL(s.now()))
		notices = append(notices, Notice{Kind: NoticeImage, Message: noticeMessage("image", err)})
	}

	var view canvas.SceneView
	sess.Do(func(sc *scene.Scene) error {
		sc.Prompt = prompt
		sc.SetContent(content.Title, content.Subtitle, content.Caption, content.Hashtags)
		sc.SetBackground(src)
		view = canvas.FromScene(sc)
		return nil
	})
	return GenerationResult{Scene: view, Notices: nonNilNotices(notices)}, nil
}

// RegenerateSceneImage swaps only the background for a fresh variation. A
// failure keeps the current background.
func (s *GenerationService) RegenerateSceneImage(ctx context.Context, sceneID string) (GenerationResult, error) {
	sess, err := s.manager.Get(sceneID)
	if err != nil {
		return GenerationResult{}, err
	}
	release, err := sess.beginGeneration()
	if err != nil {
		return GenerationResult{}, err
	}
	defer release()

	var (
		prompt string
		aspect scene.AspectRatio
	)
	if err := sess.Do(func(sc *scene.Scene) error {
		p, err := storedPrompt(sc)
		prompt, aspect = p, sc.AspectRatio
		return err
	}); err != nil {
		return GenerationResult{}, err
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	var notices []Notice
	img, err := s.provider.RegenerateImage(ctx, prompt, aspect)
	var src imagesource.Source
	if err == nil {
		src, err = imagesource.FromURL(img.URL)
	}
	if err != nil {
		log.Printf("[Session %s] image regeneration failed, keeping background: %v", sess.ID, err)
		generationFallbacks.WithLabelValues(NoticeImage, fallbackReason(err)).Inc()
		notices = append(notices, Notice{Kind: NoticeImage, Message: noticeMessage("regenerate", err)})
	}

	var view canvas.SceneView
	sess.Do(func(sc *scene.Scene) error {
		if !src.IsZero() {
			sc.SetBackground(src)
		}
		view = canvas.FromScene(sc)
		return nil
	})
	return GenerationResult{Scene: view, Notices: nonNilNotices(notices)}, nil
}

func fallbackReason(err error) string {
	switch {
	case generation.IsContentPolicy(err):
		return "content_policy"
	case errors.Is(err, generation.ErrProviderDisabled):
		return "disabled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

func noticeMessage(step string, err error) string {
	if generation.IsContentPolicy(err) {
		return "Your prompt was rejected by the content policy. Try rewording it."
	}
	switch step {
	case "text":
		return fmt.Sprintf("Text generation failed, showing sample content instead (%v)", err)
	case "regenerate":
		return fmt.Sprintf("Image regeneration failed, the current background was kept (%v)", err)
	}
	return fmt.Sprintf("Image generation failed, showing a placeholder instead (%v)", err)
}

func nonNilNotices(n []Notice) []Notice {
	if n == nil {
		return []Notice{}
	}
	return n
}
