package delivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/Vovarama1992/voice_convert/internal/convert"
	"github.com/Vovarama1992/voice_convert/internal/metrics"
	"github.com/Vovarama1992/voice_convert/internal/speech"
	"github.com/Vovarama1992/voice_convert/internal/upload"
)

// multipart headers and boundaries on top of the file itself
const multipartOverhead = 1 << 20

type Converter interface {
	Convert(ctx context.Context, audio *speech.AudioPayload) (*convert.Result, error)
	Reject(ctx context.Context, err error) *convert.Error
}

type ConvertHandler struct {
	converter Converter
	maxBytes  int64
	uploadDir string
	metrics   *metrics.Collector
	log       *logger.ZapLogger
}

func NewConvertHandler(
	converter Converter,
	maxBytes int64,
	uploadDir string,
	m *metrics.Collector,
	log *logger.ZapLogger,
) *ConvertHandler {
	return &ConvertHandler{
		converter: converter,
		maxBytes:  maxBytes,
		uploadDir: uploadDir,
		metrics:   m,
		log:       log,
	}
}

type convertResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	}

	audio, cleanup, err := upload.Spool(r, upload.Options{
		Field:    upload.DefaultField,
		MaxBytes: h.maxBytes,
		Dir:      h.uploadDir,
	})
	defer cleanup()
	if err != nil {
		h.writeError(w, h.converter.Reject(r.Context(), uploadError(err, h.maxBytes)))
		return
	}

	h.metrics.ObserveUpload(audio.Size)
	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "audio received: " + audio.Filename + " (" + humanize.IBytes(uint64(audio.Size)) + ", " + audio.MIMEType + ")",
		Service: "convert",
	})

	res, err := h.converter.Convert(r.Context(), audio)
	if err != nil {
		h.writeError(w, convert.AsError(err))
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{URL: res.URL})
}

func (h *ConvertHandler) writeError(w http.ResponseWriter, e *convert.Error) {
	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "conversion failed: " + string(e.Kind),
			Service: "convert",
			Error:   e,
		})
	}

	writeJSON(w, status, errorResponse{Error: e.Message, Details: e.Details})
}

func uploadError(err error, maxBytes int64) *convert.Error {
	switch {
	case errors.Is(err, upload.ErrMissingAudio):
		return convert.MissingInput("audio file not found")
	case errors.Is(err, upload.ErrTooLarge):
		return convert.TooLarge("audio file exceeds " + humanize.IBytes(uint64(maxBytes)))
	case errors.Is(err, upload.ErrUnsupportedType):
		return convert.InvalidInput("unsupported audio type", err)
	}
	return convert.Internal(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
