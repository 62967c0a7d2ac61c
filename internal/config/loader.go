package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Load builds the process configuration: defaults, then the optional YAML file
// named by CONFIG_FILE, then environment variables. Credentials are not checked
// here; see Validate.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	size, err := humanize.ParseBytes(cfg.MaxUploadSize)
	if err != nil {
		return cfg, fmt.Errorf("parse MAX_UPLOAD_SIZE %q: %w", cfg.MaxUploadSize, err)
	}
	if size == 0 {
		return cfg, fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if size > math.MaxInt64 {
		return cfg, fmt.Errorf("MAX_UPLOAD_SIZE %q is out of range", cfg.MaxUploadSize)
	}
	cfg.MaxUploadBytes = int64(size)

	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("PORT", &cfg.Port)
	str("MAX_UPLOAD_SIZE", &cfg.MaxUploadSize)
	str("UPLOAD_DIR", &cfg.UploadDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("SOURCE_LANG", &cfg.SourceLang)
	str("TARGET_LANG", &cfg.TargetLang)
	str("TRANSLATION_FORMALITY", &cfg.Formality)
	str("STT_PROVIDER", &cfg.STTProvider)
	str("TRANSLATE_PROVIDER", &cfg.TranslateProvider)
	str("TTS_PROVIDER", &cfg.TTSProvider)

	str("ELEVENLABS_API_KEY", &cfg.ElevenLabs.APIKey)
	str("ELEVENLABS_BASE_URL", &cfg.ElevenLabs.BaseURL)
	str("ELEVENLABS_VOICE_ID", &cfg.ElevenLabs.VoiceID)
	str("ELEVENLABS_MODEL_ID", &cfg.ElevenLabs.ModelID)
	str("ELEVENLABS_STT_MODEL_ID", &cfg.ElevenLabs.STTModelID)
	str("ELEVENLABS_OUTPUT_FORMAT", &cfg.ElevenLabs.OutputFormat)

	str("DEEPL_API_KEY", &cfg.DeepL.APIKey)
	str("DEEPL_BASE_URL", &cfg.DeepL.BaseURL)

	str("OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	str("OPENAI_BASE_URL", &cfg.OpenAI.BaseURL)
	str("OPENAI_CHAT_MODEL", &cfg.OpenAI.ChatModel)
	str("OPENAI_STT_MODEL", &cfg.OpenAI.STTModel)
	str("OPENAI_TTS_MODEL", &cfg.OpenAI.TTSModel)
	str("OPENAI_TTS_VOICE", &cfg.OpenAI.TTSVoice)

	str("DEEPGRAM_API_KEY", &cfg.Deepgram.APIKey)
	str("DEEPGRAM_BASE_URL", &cfg.Deepgram.BaseURL)
	str("DEEPGRAM_MODEL", &cfg.Deepgram.Model)

	str("GOOGLE_APPLICATION_CREDENTIALS", &cfg.Google.CredentialsFile)

	str("TELEGRAM_ALERT_TOKEN", &cfg.Telegram.Token)

	if err := envFloat("ELEVENLABS_STABILITY", &cfg.ElevenLabs.Stability); err != nil {
		return err
	}
	if err := envFloat("ELEVENLABS_SIMILARITY_BOOST", &cfg.ElevenLabs.SimilarityBoost); err != nil {
		return err
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_ALERT_CHAT_IDS")); v != "" {
		ids, err := parseChatIDs(v)
		if err != nil {
			return err
		}
		cfg.Telegram.AdminChatIDs = ids
	}

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	return nil
}

func envFloat(key string, dst *float64) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("%s must be within [0, 1], got %v", key, f)
	}
	*dst = f
	return nil
}

func parseChatIDs(v string) ([]int64, error) {
	var ids []int64
	for _, s := range splitList(v) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse TELEGRAM_ALERT_CHAT_IDS: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
