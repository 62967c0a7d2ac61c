// Package upload streams a multipart audio upload into a request-scoped temp
// file without buffering the whole body in memory.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Vovarama1992/voice_convert/internal/speech"
)

var (
	ErrMissingAudio    = errors.New("audio file not found")
	ErrTooLarge        = errors.New("audio file too large")
	ErrUnsupportedType = errors.New("unsupported audio type")
)

const DefaultField = "audio"

var audioExt = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".webm": "audio/webm",
	".aac":  "audio/aac",
	".mp4":  "audio/mp4",
}

type Options struct {
	Field    string
	MaxBytes int64
	Dir      string
}

// Spool reads the multipart body part by part and writes the first file in
// opts.Field to disk. cleanup is never nil and is safe to call more than once.
func Spool(r *http.Request, opts Options) (*speech.AudioPayload, func(), error) {
	noop := func() {}

	if opts.Field == "" {
		opts.Field = DefaultField
	}
	if opts.Dir == "" {
		opts.Dir = os.TempDir()
	}

	mr, err := r.MultipartReader()
	if err != nil {
		// не multipart или нет boundary — значит файла нет
		return nil, noop, fmt.Errorf("%w: %v", ErrMissingAudio, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, noop, ErrMissingAudio
		}
		if err != nil {
			return nil, noop, readError(err)
		}

		if part.FormName() != opts.Field || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		payload, cleanup, err := spoolPart(part, opts)
		_ = part.Close()
		return payload, cleanup, err
	}
}

func spoolPart(part *multipart.Part, opts Options) (*speech.AudioPayload, func(), error) {
	noop := func() {}

	name := filepath.Base(part.FileName())
	ext := strings.ToLower(filepath.Ext(name))
	mimeType, err := DetectMIME(name, part.Header.Get("Content-Type"))
	if err != nil {
		return nil, noop, err
	}

	path := filepath.Join(opts.Dir, "upload-"+uuid.NewString()+ext)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, noop, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(path) }

	var src io.Reader = part
	if opts.MaxBytes > 0 {
		src = io.LimitReader(part, opts.MaxBytes+1)
	}

	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		cleanup()
		return nil, noop, readError(err)
	}
	if opts.MaxBytes > 0 && n > opts.MaxBytes {
		cleanup()
		return nil, noop, ErrTooLarge
	}
	if n == 0 {
		cleanup()
		return nil, noop, ErrMissingAudio
	}

	return &speech.AudioPayload{
		Filename: name,
		MIMEType: mimeType,
		Size:     n,
		Path:     path,
	}, cleanup, nil
}

// DetectMIME accepts any audio/* content type, otherwise falls back to the
// file extension. application/octet-stream is what most browsers send for
// .m4a and .flac, so it does not count as a declared type.
func DetectMIME(filename, contentType string) (string, error) {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mt, "audio/") {
			return mt, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := audioExt[ext]; ok {
		return mt, nil
	}

	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, filename, contentType)
}

func readError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return ErrTooLarge
	}
	return fmt.Errorf("read upload: %w", err)
}
