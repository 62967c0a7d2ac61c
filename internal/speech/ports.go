package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// AudioPayload is one uploaded clip, spooled to a request-scoped file.
type AudioPayload struct {
	Filename string
	MIMEType string
	Size     int64
	Path     string
}

func (p *AudioPayload) Open() (io.ReadCloser, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	return f, nil
}

func (p *AudioPayload) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	return data, nil
}

// ErrUnsupportedEncoding means the backend cannot decode the uploaded container.
var ErrUnsupportedEncoding = errors.New("unsupported audio encoding")

type TranscriptionResult struct {
	Text     string
	Language string
}

type SynthesisRequest struct {
	Text            string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
}

type SynthesizedAudio struct {
	Data     []byte
	MIMEType string
}

// голос → текст
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio *AudioPayload, lang string) (*TranscriptionResult, error)
}

// текст → голос
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesizedAudio, error)
}
