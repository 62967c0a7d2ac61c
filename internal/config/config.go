package config

import (
	"fmt"
	"sort"
	"strings"
)

const (
	ProviderElevenLabs = "elevenlabs"
	ProviderDeepgram   = "deepgram"
	ProviderOpenAI     = "openai"
	ProviderGoogle     = "google"
	ProviderDeepL      = "deepl"
)

type Config struct {
	Port           string   `yaml:"port"`
	MaxUploadBytes int64    `yaml:"-"`
	MaxUploadSize  string   `yaml:"max_upload_size"`
	UploadDir      string   `yaml:"upload_dir"`
	CORSOrigins    []string `yaml:"cors_allowed_origins"`
	LogLevel       string   `yaml:"log_level"`

	SourceLang string `yaml:"source_lang"`
	TargetLang string `yaml:"target_lang"`
	Formality  string `yaml:"translation_formality"`

	STTProvider       string `yaml:"stt_provider"`
	TranslateProvider string `yaml:"translate_provider"`
	TTSProvider       string `yaml:"tts_provider"`

	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	DeepL      DeepLConfig      `yaml:"deepl"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Deepgram   DeepgramConfig   `yaml:"deepgram"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

type ElevenLabsConfig struct {
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	VoiceID         string  `yaml:"voice_id"`
	ModelID         string  `yaml:"model_id"`
	STTModelID      string  `yaml:"stt_model_id"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
	OutputFormat    string  `yaml:"output_format"`
}

type DeepLConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	ChatModel string `yaml:"chat_model"`
	STTModel  string `yaml:"stt_model"`
	TTSModel  string `yaml:"tts_model"`
	TTSVoice  string `yaml:"tts_voice"`
}

type DeepgramConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

type TelegramConfig struct {
	Token        string  `yaml:"token"`
	AdminChatIDs []int64 `yaml:"admin_chat_ids"`
}

// Default returns a Config with every optional value filled in and no credentials.
func Default() Config {
	return Config{
		Port:           "8080",
		MaxUploadBytes: 100 << 20,
		MaxUploadSize:  "100MiB",
		CORSOrigins:    []string{"*"},
		LogLevel:       "info",

		SourceLang: "ja",
		TargetLang: "en-US",
		Formality:  "prefer_more",

		STTProvider:       ProviderElevenLabs,
		TranslateProvider: ProviderDeepL,
		TTSProvider:       ProviderElevenLabs,

		ElevenLabs: ElevenLabsConfig{
			BaseURL:         "https://api.elevenlabs.io",
			ModelID:         "eleven_multilingual_v2",
			STTModelID:      "scribe_v1",
			Stability:       0.5,
			SimilarityBoost: 0.75,
			OutputFormat:    "mp3_44100_128",
		},
		OpenAI: OpenAIConfig{
			ChatModel: "gpt-4o-mini",
			STTModel:  "whisper-1",
			TTSModel:  "tts-1",
			TTSVoice:  "alloy",
		},
		Deepgram: DeepgramConfig{
			BaseURL: "https://api.deepgram.com",
			Model:   "nova-2",
		},
	}
}

// MissingError lists the configuration keys required by the selected providers
// that are not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing configuration: " + strings.Join(e.Keys, ", ")
}

// Validate reports unknown providers first, then every absent credential.
func (c Config) Validate() error {
	switch c.STTProvider {
	case ProviderElevenLabs, ProviderDeepgram, ProviderOpenAI, ProviderGoogle:
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STTProvider)
	}
	switch c.TranslateProvider {
	case ProviderDeepL, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown TRANSLATE_PROVIDER %q", c.TranslateProvider)
	}
	switch c.TTSProvider {
	case ProviderElevenLabs, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider)
	}

	missing := map[string]bool{}
	need := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing[key] = true
		}
	}

	switch c.STTProvider {
	case ProviderElevenLabs:
		need("ELEVENLABS_API_KEY", c.ElevenLabs.APIKey)
	case ProviderDeepgram:
		need("DEEPGRAM_API_KEY", c.Deepgram.APIKey)
	case ProviderOpenAI:
		need("OPENAI_API_KEY", c.OpenAI.APIKey)
	case ProviderGoogle:
		need("GOOGLE_APPLICATION_CREDENTIALS", c.Google.CredentialsFile)
	}

	switch c.TranslateProvider {
	case ProviderDeepL:
		need("DEEPL_API_KEY", c.DeepL.APIKey)
	case ProviderOpenAI:
		need("OPENAI_API_KEY", c.OpenAI.APIKey)
	}

	switch c.TTSProvider {
	case ProviderElevenLabs:
		need("ELEVENLABS_API_KEY", c.ElevenLabs.APIKey)
		need("ELEVENLABS_VOICE_ID", c.ElevenLabs.VoiceID)
	case ProviderOpenAI:
		need("OPENAI_API_KEY", c.OpenAI.APIKey)
	}

	need("SOURCE_LANG", c.SourceLang)
	need("TARGET_LANG", c.TargetLang)

	if len(missing) == 0 {
		return nil
	}

	keys := make([]string, 0, len(missing))
	for k := range missing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &MissingError{Keys: keys}
}
