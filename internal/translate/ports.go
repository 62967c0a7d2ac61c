package translate

import (
	"context"
	"errors"
)

// ErrEmptyTranslation is returned when the provider answers but gives no text.
var ErrEmptyTranslation = errors.New("empty translation")

type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	// Formality follows DeepL's vocabulary: "default", "more", "less",
	// "prefer_more", "prefer_less".
	Formality string
}

type Translator interface {
	Name() string
	Translate(ctx context.Context, req Request) (string, error)
}
