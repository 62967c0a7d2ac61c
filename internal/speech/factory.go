package speech

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/voice_convert/internal/config"
)

// NewTranscriber builds the STT backend selected by STT_PROVIDER.
func NewTranscriber(ctx context.Context, cfg config.Config) (Transcriber, error) {
	switch cfg.STTProvider {
	case config.ProviderElevenLabs:
		return NewElevenLabsClient(ElevenLabsOptions{
			APIKey:       cfg.ElevenLabs.APIKey,
			BaseURL:      cfg.ElevenLabs.BaseURL,
			STTModelID:   cfg.ElevenLabs.STTModelID,
			OutputFormat: cfg.ElevenLabs.OutputFormat,
		}), nil
	case config.ProviderDeepgram:
		return NewDeepgramClient(cfg.Deepgram.APIKey, cfg.Deepgram.BaseURL, cfg.Deepgram.Model), nil
	case config.ProviderOpenAI:
		return newOpenAIFromConfig(cfg), nil
	case config.ProviderGoogle:
		c, err := NewGoogleClient(ctx, cfg.Google.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown STT provider %q", cfg.STTProvider)
}

// NewSynthesizer builds the TTS backend selected by TTS_PROVIDER.
func NewSynthesizer(cfg config.Config) (Synthesizer, error) {
	switch cfg.TTSProvider {
	case config.ProviderElevenLabs:
		return NewElevenLabsClient(ElevenLabsOptions{
			APIKey:       cfg.ElevenLabs.APIKey,
			BaseURL:      cfg.ElevenLabs.BaseURL,
			STTModelID:   cfg.ElevenLabs.STTModelID,
			OutputFormat: cfg.ElevenLabs.OutputFormat,
		}), nil
	case config.ProviderOpenAI:
		return newOpenAIFromConfig(cfg), nil
	}
	return nil, fmt.Errorf("unknown TTS provider %q", cfg.TTSProvider)
}

// VoiceFor returns the synthesis parameters that match the selected TTS backend.
func VoiceFor(cfg config.Config) SynthesisRequest {
	if cfg.TTSProvider == config.ProviderOpenAI {
		return SynthesisRequest{
			VoiceID: cfg.OpenAI.TTSVoice,
			ModelID: cfg.OpenAI.TTSModel,
		}
	}
	return SynthesisRequest{
		VoiceID:         cfg.ElevenLabs.VoiceID,
		ModelID:         cfg.ElevenLabs.ModelID,
		Stability:       cfg.ElevenLabs.Stability,
		SimilarityBoost: cfg.ElevenLabs.SimilarityBoost,
	}
}

func newOpenAIFromConfig(cfg config.Config) *OpenAIClient {
	return NewOpenAIClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.STTModel,
		cfg.OpenAI.TTSModel,
		cfg.OpenAI.TTSVoice,
	)
}
