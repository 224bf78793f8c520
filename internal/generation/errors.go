package generation

import (
	"errors"
	"fmt"
)

var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrProviderDisabled = fmt.Errorf("%w: no generation provider configured", ErrGenerationFailed)
	ErrPromptRequired   = errors.New("prompt is required")
)

// ContentPolicyError is a rejection the user can act on by rewording the
// prompt. It matches ErrGenerationFailed.
type ContentPolicyError struct {
	Message string
}

func (e *ContentPolicyError) Error() string {
	if e.Message == "" {
		return "prompt was rejected by the content policy"
	}
	return "prompt was rejected by the content policy: " + e.Message
}

func (e *ContentPolicyError) Unwrap() error {
	return ErrGenerationFailed
}

// IsContentPolicy reports whether err is a content policy rejection.
func IsContentPolicy(err error) bool {
	var cp *ContentPolicyError
	return errors.As(err, &cp)
}
