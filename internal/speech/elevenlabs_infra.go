package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Vovarama1992/voice_convert/internal/upstream"
)

const elevenLabsProvider = "elevenlabs"

type ElevenLabsClient struct {
	apiKey       string
	baseURL      string
	sttModel     string
	outputFormat string
	client       *http.Client
}

type ElevenLabsOptions struct {
	APIKey       string
	BaseURL      string
	STTModelID   string
	OutputFormat string
}

func NewElevenLabsClient(opts ElevenLabsOptions) *ElevenLabsClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.elevenlabs.io"
	}
	if opts.STTModelID == "" {
		opts.STTModelID = "scribe_v1"
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = "mp3_44100_128"
	}

	return &ElevenLabsClient{
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		sttModel:     opts.STTModelID,
		outputFormat: opts.OutputFormat,
		client:       &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *ElevenLabsClient) Name() string { return elevenLabsProvider }

// SPEECH → TEXT
func (c *ElevenLabsClient) Transcribe(ctx context.Context, audio *AudioPayload, lang string) (*TranscriptionResult, error) {
	src, err := audio.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeSTTForm(mw, src, audio, c.sttModel, PrimaryLanguage(lang)))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/speech-to-text", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if !upstream.OK(resp) {
		return nil, upstream.FromResponse(elevenLabsProvider, resp)
	}

	var parsed struct {
		LanguageCode string `json:"language_code"`
		Text         string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode elevenlabs transcript: %w", err)
	}

	return &TranscriptionResult{
		Text:     strings.TrimSpace(parsed.Text),
		Language: parsed.LanguageCode,
	}, nil
}

func writeSTTForm(mw *multipart.Writer, src io.Reader, audio *AudioPayload, model, lang string) error {
	if err := mw.WriteField("model_id", model); err != nil {
		return err
	}
	if lang != "" {
		if err := mw.WriteField("language_code", lang); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(audio.Filename)))
	if audio.MIMEType != "" {
		h.Set("Content-Type", audio.MIMEType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("stream audio: %w", err)
	}
	return mw.Close()
}

type elevenLabsTTSRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// TEXT → SPEECH
func (c *ElevenLabsClient) Synthesize(ctx context.Context, in SynthesisRequest) (*SynthesizedAudio, error) {
	if in.VoiceID == "" {
		return nil, fmt.Errorf("elevenlabs: voice id required")
	}

	payload, err := json.Marshal(elevenLabsTTSRequest{
		Text:    in.Text,
		ModelID: in.ModelID,
		VoiceSettings: &elevenLabsVoiceSettings{
			Stability:       in.Stability,
			SimilarityBoost: in.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		c.baseURL, url.PathEscape(in.VoiceID), url.QueryEscape(c.outputFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if !upstream.OK(resp) {
		return nil, upstream.FromResponse(elevenLabsProvider, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read elevenlabs audio: %w", err)
	}

	return &SynthesizedAudio{
		Data:     data,
		MIMEType: outputMIME(c.outputFormat),
	}, nil
}

// outputMIME maps an ElevenLabs output_format such as "mp3_44100_128" to the
// MIME type used in the returned data URI.
func outputMIME(format string) string {
	codec, _, _ := strings.Cut(format, "_")
	switch codec {
	case "pcm":
		return "audio/pcm"
	case "ulaw":
		return "audio/basic"
	case "opus":
		return "audio/opus"
	case "wav":
		return "audio/wav"
	default:
		return "audio/mp3"
	}
}
