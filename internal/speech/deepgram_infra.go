package speech

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Vovarama1992/voice_convert/internal/upstream"
)

const deepgramProvider = "deepgram"

type DeepgramClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewDeepgramClient(apiKey, baseURL, model string) *DeepgramClient {
	if baseURL == "" {
		baseURL = "https://api.deepgram.com"
	}
	if model == "" {
		model = "nova-2"
	}

	return &DeepgramClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *DeepgramClient) Name() string { return deepgramProvider }

func (c *DeepgramClient) Transcribe(ctx context.Context, audio *AudioPayload, lang string) (*TranscriptionResult, error) {
	body, err := audio.Open()
	if err != nil {
		return nil, err
	}
	defer body.Close()

	q := url.Values{}
	q.Set("model", c.model)
	q.Set("smart_format", "true")
	if lang != "" {
		q.Set("language", lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/listen?"+q.Encode(), body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = audio.Size
	req.Header.Set("Authorization", "Token "+c.apiKey)
	contentType := audio.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	if !upstream.OK(resp) {
		return nil, upstream.FromResponse(deepgramProvider, resp)
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				DetectedLanguage string `json:"detected_language"`
				Alternatives     []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode deepgram: %w", err)
	}

	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return nil, fmt.Errorf("empty transcript")
	}

	ch := parsed.Results.Channels[0]
	detected := ch.DetectedLanguage
	if detected == "" {
		detected = lang
	}

	return &TranscriptionResult{
		Text:     strings.TrimSpace(ch.Alternatives[0].Transcript),
		Language: detected,
	}, nil
}
