package translate

import (
	"fmt"

	"github.com/Vovarama1992/voice_convert/internal/config"
)

// NewTranslator builds the backend selected by TRANSLATE_PROVIDER.
func NewTranslator(cfg config.Config) (Translator, error) {
	switch cfg.TranslateProvider {
	case config.ProviderDeepL:
		return NewDeepLClient(cfg.DeepL.APIKey, cfg.DeepL.BaseURL), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.ChatModel), nil
	}
	return nil, fmt.Errorf("unknown translate provider %q", cfg.TranslateProvider)
}
