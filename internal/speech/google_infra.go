package speech

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

const googleProvider = "google"

type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// GoogleClient uses synchronous Recognize, which fits the short clips this
// service is built for.
type GoogleClient struct {
	rec recognizer
}

func NewGoogleClient(ctx context.Context, credentialsFile string) (*GoogleClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	c, err := gspeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleClient{rec: c}, nil
}

func (c *GoogleClient) Name() string { return googleProvider }

func (c *GoogleClient) Close() error {
	if c.rec == nil {
		return nil
	}
	return c.rec.Close()
}

func (c *GoogleClient) Transcribe(ctx context.Context, audio *AudioPayload, lang string) (*TranscriptionResult, error) {
	enc, err := googleEncoding(audio)
	if err != nil {
		return nil, err
	}

	data, err := audio.ReadAll()
	if err != nil {
		return nil, err
	}

	resp, err := c.rec.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   enc,
			LanguageCode:               lang,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("google recognize: %w", err)
	}

	var parts []string
	detected := lang
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
		if r.GetLanguageCode() != "" {
			detected = r.GetLanguageCode()
		}
	}

	return &TranscriptionResult{
		Text:     strings.Join(parts, " "),
		Language: detected,
	}, nil
}

// googleEncoding leaves WAV and FLAC unspecified so the service reads the
// header itself; headerless formats must be named explicitly. MP3, AAC and MP4
// containers are refused before the audio is sent.
func googleEncoding(audio *AudioPayload) (speechpb.RecognitionConfig_AudioEncoding, error) {
	mime := strings.ToLower(audio.MIMEType)
	ext := strings.ToLower(filepath.Ext(audio.Filename))

	switch {
	case strings.Contains(mime, "wav") || ext == ".wav",
		strings.Contains(mime, "flac") || ext == ".flac":
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, nil
	case strings.Contains(mime, "ogg") || ext == ".ogg" || ext == ".oga" || ext == ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case strings.Contains(mime, "webm") || ext == ".webm":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	case strings.Contains(mime, "amr") || ext == ".amr":
		return speechpb.RecognitionConfig_AMR, nil
	}
	return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
		fmt.Errorf("google: %w: %s (%s)", ErrUnsupportedEncoding, audio.Filename, audio.MIMEType)
}
