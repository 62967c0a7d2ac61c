package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_convert/internal/config"
	"github.com/Vovarama1992/voice_convert/internal/metrics"
	"github.com/Vovarama1992/voice_convert/internal/notify"
	"github.com/Vovarama1992/voice_convert/internal/speech"
	"github.com/Vovarama1992/voice_convert/internal/translate"
)

const (
	stageTranscribe = "transcribe"
	stageTranslate  = "translate"
	stageSynthesize = "synthesize"
)

var (
	errNoSpeech   = errors.New("no speech recognized")
	errEmptyAudio = errors.New("synthesizer returned no audio")
)

// Backends is the capability set the pipeline is parameterized over.
type Backends struct {
	Transcriber speech.Transcriber
	Translator  translate.Translator
	Synthesizer speech.Synthesizer
}

type Result struct {
	URL         string
	Transcript  string
	Translation string
	Audio       *speech.SynthesizedAudio
}

type Service struct {
	cfg      config.Config
	backends Backends
	voice    speech.SynthesisRequest
	metrics  *metrics.Collector
	notifier notify.Notificator
	log      *zap.Logger
}

// NewService binds the read-only configuration and the backends built from it.
// Backends may be nil when configuration is incomplete; Convert then reports
// misconfiguration instead of calling anything.
func NewService(
	cfg config.Config,
	backends Backends,
	collector *metrics.Collector,
	notifier notify.Notificator,
	log *zap.Logger,
) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		backends: backends,
		voice:    speech.VoiceFor(cfg),
		metrics:  collector,
		notifier: notifier,
		log:      log.With(zap.String("component", "convert")),
	}
}

// Convert runs one clip through transcription, translation and synthesis, in
// that order, and stops at the first failure.
func (s *Service) Convert(ctx context.Context, audio *speech.AudioPayload) (*Result, error) {
	if audio == nil || audio.Size == 0 {
		return nil, s.fail(ctx, MissingInput("audio file not found"))
	}

	if err := s.ready(); err != nil {
		return nil, s.fail(ctx, newError(KindMisconfigured, "server is misconfigured", err))
	}

	start := time.Now()
	log := s.log.With(
		zap.String("filename", audio.Filename),
		zap.String("mime", audio.MIMEType),
		zap.Int64("size", audio.Size),
	)

	// 1) голос → текст
	t0 := time.Now()
	tr, err := s.backends.Transcriber.Transcribe(ctx, audio, s.cfg.SourceLang)
	if err == nil && (tr == nil || tr.Text == "") {
		err = errNoSpeech
	}
	s.metrics.ObserveStage(stageTranscribe, s.backends.Transcriber.Name(), time.Since(t0), err)
	if errors.Is(err, speech.ErrUnsupportedEncoding) {
		return nil, s.fail(ctx, InvalidInput("audio format not supported by "+s.backends.Transcriber.Name(), err))
	}
	if err != nil {
		return nil, s.fail(ctx, newError(KindTranscription, "transcription failed", err))
	}
	log.Info("transcribed", zap.Int("chars", len(tr.Text)), zap.String("lang", tr.Language), zap.Duration("took", time.Since(t0)))

	// 2) перевод
	t0 = time.Now()
	translated, err := s.backends.Translator.Translate(ctx, translate.Request{
		Text:       tr.Text,
		SourceLang: s.cfg.SourceLang,
		TargetLang: s.cfg.TargetLang,
		Formality:  s.cfg.Formality,
	})
	if err == nil && translated == "" {
		err = translate.ErrEmptyTranslation
	}
	s.metrics.ObserveStage(stageTranslate, s.backends.Translator.Name(), time.Since(t0), err)
	if err != nil {
		return nil, s.fail(ctx, newError(KindTranslation, "translation failed", err))
	}
	log.Info("translated", zap.Int("chars", len(translated)), zap.Duration("took", time.Since(t0)))

	// 3) текст → голос
	t0 = time.Now()
	req := s.voice
	req.Text = translated
	out, err := s.backends.Synthesizer.Synthesize(ctx, req)
	if err == nil && (out == nil || len(out.Data) == 0) {
		err = errEmptyAudio
	}
	s.metrics.ObserveStage(stageSynthesize, s.backends.Synthesizer.Name(), time.Since(t0), err)
	if err != nil {
		return nil, s.fail(ctx, newError(KindSynthesis, "speech synthesis failed", err))
	}

	// 4) inline data URI
	s.metrics.RecordConversion("ok")
	log.Info("converted", zap.Int("audio_bytes", len(out.Data)), zap.Duration("took", time.Since(start)))

	return &Result{
		URL:         EncodeDataURI(out.MIMEType, out.Data),
		Transcript:  tr.Text,
		Translation: translated,
		Audio:       out,
	}, nil
}

// Reject records a request that never reached Convert, e.g. a bad upload.
func (s *Service) Reject(ctx context.Context, err error) *Error {
	return s.fail(ctx, AsError(err))
}

func (s *Service) ready() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	var missing []string
	if s.backends.Transcriber == nil {
		missing = append(missing, "transcriber")
	}
	if s.backends.Translator == nil {
		missing = append(missing, "translator")
	}
	if s.backends.Synthesizer == nil {
		missing = append(missing, "synthesizer")
	}
	if len(missing) > 0 {
		return fmt.Errorf("backends not initialized: %v", missing)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, e *Error) *Error {
	s.metrics.RecordConversion(string(e.Kind))

	if e.HTTPStatus() < 500 {
		s.log.Info("conversion rejected", zap.String("kind", string(e.Kind)), zap.String("reason", e.Error()))
		return e
	}

	s.log.Error("conversion failed", zap.String("kind", string(e.Kind)), zap.Error(e.Err))
	_ = s.notifier.Notify(ctx, e, "kind="+string(e.Kind))
	return e
}
