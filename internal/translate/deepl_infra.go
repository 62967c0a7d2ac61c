package translate

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Vovarama1992/voice_convert/internal/upstream"
)

const (
	deeplProvider = "deepl"
	deeplFreeURL  = "https://api-free.deepl.com"
	deeplProURL   = "https://api.deepl.com"
)

type DeepLClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDeepLClient picks the free endpoint for ":fx" keys unless baseURL is set.
func NewDeepLClient(apiKey, baseURL string) *DeepLClient {
	if baseURL == "" {
		baseURL = deeplProURL
		if strings.HasSuffix(apiKey, ":fx") {
			baseURL = deeplFreeURL
		}
	}

	return &DeepLClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *DeepLClient) Name() string { return deeplProvider }

type deeplRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
	Formality  string   `json:"formality,omitempty"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

func (c *DeepLClient) Translate(ctx context.Context, in Request) (string, error) {
	payload, err := json.Marshal(deeplRequest{
		Text:       []string{in.Text},
		SourceLang: deeplSourceLang(in.SourceLang),
		TargetLang: deeplTargetLang(in.TargetLang),
		Formality:  in.Formality,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/translate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl request: %w", err)
	}
	defer resp.Body.Close()

	if !upstream.OK(resp) {
		return "", upstream.FromResponse(deeplProvider, resp)
	}

	var out deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode deepl: %w", err)
	}

	if len(out.Translations) == 0 {
		return "", ErrEmptyTranslation
	}
	text := strings.TrimSpace(out.Translations[0].Text)
	if text == "" {
		return "", ErrEmptyTranslation
	}
	return text, nil
}

// DeepL accepts only the bare language as source ("JA"), while some targets
// need a region ("EN-US", "PT-BR").
func deeplSourceLang(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToUpper(tag)
}

func deeplTargetLang(tag string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}
