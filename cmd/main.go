package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Vovarama1992/voice_convert/internal/config"
	"github.com/Vovarama1992/voice_convert/internal/convert"
	"github.com/Vovarama1992/voice_convert/internal/delivery"
	"github.com/Vovarama1992/voice_convert/internal/metrics"
	"github.com/Vovarama1992/voice_convert/internal/notify"
	"github.com/Vovarama1992/voice_convert/internal/speech"
	"github.com/Vovarama1992/voice_convert/internal/translate"
)

const serviceName = "voice_convert"

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	baseLogger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// не падаем: каждый запрос вернёт misconfigured, пока ключи не появятся
	if err := cfg.Validate(); err != nil {
		baseLogger.Warn("configuration incomplete", zap.Error(err))
	}

	// =========================================================================
	// METRICS
	// =========================================================================

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(serviceName, reg)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var notifier notify.Notificator = notify.Nop{}
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegramInfra(cfg.Telegram.Token, cfg.Telegram.AdminChatIDs, baseLogger)
		if err != nil {
			baseLogger.Warn("telegram alerts disabled", zap.Error(err))
		} else {
			notifier = notify.NewService(tg, baseLogger)
		}
	}

	// =========================================================================
	// CLIENTS (STT / MT / TTS)
	// =========================================================================

	ctx := context.Background()

	transcriber, err := speech.NewTranscriber(ctx, cfg)
	if err != nil {
		baseLogger.Warn("transcriber unavailable", zap.String("provider", cfg.STTProvider), zap.Error(err))
	}
	translator, err := translate.NewTranslator(cfg)
	if err != nil {
		baseLogger.Warn("translator unavailable", zap.String("provider", cfg.TranslateProvider), zap.Error(err))
	}
	synthesizer, err := speech.NewSynthesizer(cfg)
	if err != nil {
		baseLogger.Warn("synthesizer unavailable", zap.String("provider", cfg.TTSProvider), zap.Error(err))
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	convertService := convert.NewService(
		cfg,
		convert.Backends{
			Transcriber: transcriber, // голос → текст
			Translator:  translator,
			Synthesizer: synthesizer, // текст → голос
		},
		collector,
		notifier,
		baseLogger,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	convertHandler := delivery.NewConvertHandler(convertService, cfg.MaxUploadBytes, cfg.UploadDir, collector, zl)

	r := delivery.NewRouter(delivery.RouterDeps{
		Convert:     convertHandler,
		CORSOrigins: cfg.CORSOrigins,
		Gatherer:    reg,
		Metrics:     collector,
		Log:         baseLogger,
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zl.Log(logger.LogEntry{
		Level: "info",
		Message: "listening at " + addr +
			" (stt=" + cfg.STTProvider +
			", mt=" + cfg.TranslateProvider +
			", tts=" + cfg.TTSProvider +
			", max upload " + humanize.IBytes(uint64(cfg.MaxUploadBytes)) + ")",
		Service: serviceName,
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
