package speech

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/voice_convert/internal/upstream"
)

const openAIProvider = "openai"

// OpenAIClient covers both directions: Whisper for STT and the speech endpoint for TTS.
type OpenAIClient struct {
	client   *openai.Client
	sttModel string
	ttsModel string
	voice    string
}

func NewOpenAIClient(apiKey, baseURL, sttModel, ttsModel, voice string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if sttModel == "" {
		sttModel = openai.Whisper1
	}
	if ttsModel == "" {
		ttsModel = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		sttModel: sttModel,
		ttsModel: ttsModel,
		voice:    voice,
	}
}

func (c *OpenAIClient) Name() string { return openAIProvider }

func (c *OpenAIClient) Transcribe(ctx context.Context, audio *AudioPayload, lang string) (*TranscriptionResult, error) {
	f, err := audio.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(audio.Filename)
	if name == "." || name == "/" {
		name = filepath.Base(audio.Path)
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.sttModel,
		FilePath: name,
		Reader:   f,
		Language: PrimaryLanguage(lang),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return nil, upstream.FromOpenAI(err)
	}

	detected := resp.Language
	if detected == "" {
		detected = lang
	}

	return &TranscriptionResult{
		Text:     strings.TrimSpace(resp.Text),
		Language: detected,
	}, nil
}

func (c *OpenAIClient) Synthesize(ctx context.Context, in SynthesisRequest) (*SynthesizedAudio, error) {
	model := in.ModelID
	if model == "" {
		model = c.ttsModel
	}
	voice := in.VoiceID
	if voice == "" {
		voice = c.voice
	}

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(model),
		Input:          in.Text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, upstream.FromOpenAI(err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read openai audio: %w", err)
	}

	return &SynthesizedAudio{Data: data, MIMEType: "audio/mp3"}, nil
}
