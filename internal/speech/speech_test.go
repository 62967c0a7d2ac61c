package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/goccy/go-json"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/voice_convert/internal/config"
	"github.com/Vovarama1992/voice_convert/internal/upstream"
)

func writePayload(t *testing.T, data []byte, name, mime string) *AudioPayload {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload"+filepath.Ext(name))
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return &AudioPayload{Filename: name, MIMEType: mime, Size: int64(len(data)), Path: path}
}

func TestElevenLabs_Transcribe(t *testing.T) {
	audio := []byte("RIFF....WAVEfmt fake")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/speech-to-text", r.URL.Path)
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "scribe_v1", r.FormValue("model_id"))
		assert.Equal(t, "ja", r.FormValue("language_code"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		got, _ := io.ReadAll(f)
		assert.Equal(t, audio, got)
		assert.Equal(t, "clip.wav", hdr.Filename)
		assert.Equal(t, "audio/wav", hdr.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"language_code":"jpn","text":" こんにちは ","words":[]}`))
	}))
	defer srv.Close()

	c := NewElevenLabsClient(ElevenLabsOptions{APIKey: "el-key", BaseURL: srv.URL})
	res, err := c.Transcribe(context.Background(), writePayload(t, audio, "clip.wav", "audio/wav"), "ja")

	require.NoError(t, err)
	assert.Equal(t, "こんにちは", res.Text)
	assert.Equal(t, "jpn", res.Language)
}

func TestElevenLabs_TranscribeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"status":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	c := NewElevenLabsClient(ElevenLabsOptions{APIKey: "bad", BaseURL: srv.URL})
	_, err := c.Transcribe(context.Background(), writePayload(t, []byte("x"), "a.mp3", "audio/mpeg"), "ja")

	var ue *upstream.Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	assert.Contains(t, ue.Body, "invalid_api_key")
}

func TestElevenLabs_Synthesize(t *testing.T) {
	mp3 := []byte{0x49, 0x44, 0x33, 0x04, 0x00, 0xff, 0xfb}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-123", r.URL.Path)
		assert.Equal(t, "mp3_44100_128", r.URL.Query().Get("output_format"))
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))

		var body elevenLabsTTSRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Hello", body.Text)
		assert.Equal(t, "eleven_multilingual_v2", body.ModelID)
		require.NotNil(t, body.VoiceSettings)
		assert.Equal(t, 0.5, body.VoiceSettings.Stability)
		assert.Equal(t, 0.75, body.VoiceSettings.SimilarityBoost)

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(mp3)
	}))
	defer srv.Close()

	c := NewElevenLabsClient(ElevenLabsOptions{APIKey: "el-key", BaseURL: srv.URL})
	out, err := c.Synthesize(context.Background(), SynthesisRequest{
		Text:            "Hello",
		VoiceID:         "voice-123",
		ModelID:         "eleven_multilingual_v2",
		Stability:       0.5,
		SimilarityBoost: 0.75,
	})

	require.NoError(t, err)
	assert.Equal(t, mp3, out.Data)
	assert.Equal(t, "audio/mp3", out.MIMEType)
}

func TestElevenLabs_SynthesizeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewElevenLabsClient(ElevenLabsOptions{APIKey: "k", BaseURL: srv.URL})

	_, err := c.Synthesize(context.Background(), SynthesisRequest{Text: "hi"})
	assert.ErrorContains(t, err, "voice id required")

	_, err = c.Synthesize(context.Background(), SynthesisRequest{Text: "hi", VoiceID: "v"})
	var ue *upstream.Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, "quota exceeded", ue.Body)
}

func TestOutputMIME(t *testing.T) {
	assert.Equal(t, "audio/mp3", outputMIME("mp3_44100_128"))
	assert.Equal(t, "audio/pcm", outputMIME("pcm_16000"))
	assert.Equal(t, "audio/basic", outputMIME("ulaw_8000"))
	assert.Equal(t, "audio/opus", outputMIME("opus_48000_64"))
	assert.Equal(t, "audio/mp3", outputMIME(""))
}

func TestDeepgram_Transcribe(t *testing.T) {
	audio := []byte("OggS fake opus")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "true", r.URL.Query().Get("smart_format"))
		assert.Equal(t, "ja", r.URL.Query().Get("language"))
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/ogg", r.Header.Get("Content-Type"))

		got, _ := io.ReadAll(r.Body)
		assert.Equal(t, audio, got)

		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"こんにちは"}]}]}}`))
	}))
	defer srv.Close()

	c := NewDeepgramClient("dg-key", srv.URL, "")
	res, err := c.Transcribe(context.Background(), writePayload(t, audio, "voice.ogg", "audio/ogg"), "ja")

	require.NoError(t, err)
	assert.Equal(t, "こんにちは", res.Text)
	assert.Equal(t, "ja", res.Language)
}

func TestDeepgram_EmptyAndError(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"results":{"channels":[]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"err_code":"Bad Request"}`))
	}))
	defer srv.Close()

	c := NewDeepgramClient("k", srv.URL, "nova-2")
	p := writePayload(t, []byte("x"), "a.wav", "audio/wav")

	_, err := c.Transcribe(context.Background(), p, "ja")
	assert.ErrorContains(t, err, "empty transcript")

	status = http.StatusBadRequest
	_, err = c.Transcribe(context.Background(), p, "ja")
	var ue *upstream.Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "deepgram", ue.Provider)
}

func TestOpenAI_TranscribeAndSynthesize(t *testing.T) {
	mp3 := []byte("ID3 openai audio")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer oa-key", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/v1/audio/transcriptions":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "whisper-1", r.FormValue("model"))
			assert.Equal(t, "ja", r.FormValue("language"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"text":"こんにちは"}`))
		case "/v1/audio/speech":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Hello", body["input"])
			assert.Equal(t, "nova", body["voice"])
			assert.Equal(t, "tts-1", body["model"])
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write(mp3)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewOpenAIClient("oa-key", srv.URL+"/v1", "", "", "")

	res, err := c.Transcribe(context.Background(), writePayload(t, []byte("RIFF"), "clip.wav", "audio/wav"), "ja-JP")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", res.Text)
	assert.Equal(t, "ja-JP", res.Language)

	out, err := c.Synthesize(context.Background(), SynthesisRequest{Text: "Hello", VoiceID: "nova"})
	require.NoError(t, err)
	assert.Equal(t, mp3, out.Data)
	assert.Equal(t, "audio/mp3", out.MIMEType)
}

func TestOpenAI_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("bad", srv.URL+"/v1", "", "", "")
	_, err := c.Synthesize(context.Background(), SynthesisRequest{Text: "Hello"})

	var ue *upstream.Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	assert.Contains(t, ue.Body, "Incorrect API key")
}

type fakeRecognizer struct {
	req  *speechpb.RecognizeRequest
	resp *speechpb.RecognizeResponse
	err  error
}

func (f *fakeRecognizer) Recognize(_ context.Context, req *speechpb.RecognizeRequest, _ ...gax.CallOption) (*speechpb.RecognizeResponse, error) {
	f.req = req
	return f.resp, f.err
}

func (f *fakeRecognizer) Close() error { return nil }

func TestGoogle_Transcribe(t *testing.T) {
	rec := &fakeRecognizer{resp: &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "こんにちは"}}, LanguageCode: "ja-jp"},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "世界"}}},
			{},
		},
	}}
	c := &GoogleClient{rec: rec}

	res, err := c.Transcribe(context.Background(), writePayload(t, []byte("OggS"), "v.ogg", "audio/ogg"), "ja-JP")

	require.NoError(t, err)
	assert.Equal(t, "こんにちは 世界", res.Text)
	assert.Equal(t, "ja-jp", res.Language)
	assert.Equal(t, "ja-JP", rec.req.GetConfig().GetLanguageCode())
	assert.Equal(t, speechpb.RecognitionConfig_OGG_OPUS, rec.req.GetConfig().GetEncoding())
	assert.Equal(t, []byte("OggS"), rec.req.GetAudio().GetContent())
}

func TestGoogle_TranscribeError(t *testing.T) {
	c := &GoogleClient{rec: &fakeRecognizer{err: errors.New("permission denied")}}

	_, err := c.Transcribe(context.Background(), writePayload(t, []byte("x"), "a.wav", "audio/wav"), "ja-JP")
	assert.ErrorContains(t, err, "permission denied")
}

func TestGoogleEncoding(t *testing.T) {
	tests := []struct {
		audio *AudioPayload
		want  speechpb.RecognitionConfig_AudioEncoding
	}{
		{&AudioPayload{MIMEType: "audio/webm"}, speechpb.RecognitionConfig_WEBM_OPUS},
		{&AudioPayload{Filename: "a.oga"}, speechpb.RecognitionConfig_OGG_OPUS},
		{&AudioPayload{MIMEType: "audio/wav", Filename: "a.wav"}, speechpb.RecognitionConfig_ENCODING_UNSPECIFIED},
		{&AudioPayload{MIMEType: "audio/flac", Filename: "a.flac"}, speechpb.RecognitionConfig_ENCODING_UNSPECIFIED},
	}
	for _, tt := range tests {
		got, err := googleEncoding(tt.audio)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	for _, a := range []*AudioPayload{
		{MIMEType: "audio/mpeg", Filename: "a.mp3"},
		{MIMEType: "audio/mp4", Filename: "a.m4a"},
		{MIMEType: "audio/aac", Filename: "a.aac"},
	} {
		_, err := googleEncoding(a)
		assert.ErrorIs(t, err, ErrUnsupportedEncoding, a.Filename)
	}
}

func TestGoogle_RejectsMP3BeforeRecognize(t *testing.T) {
	rec := &fakeRecognizer{}
	c := &GoogleClient{rec: rec}

	_, err := c.Transcribe(context.Background(), writePayload(t, []byte("ID3"), "clip.mp3", "audio/mpeg"), "ja-JP")

	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
	assert.Nil(t, rec.req)
}

func TestPrimaryLanguage(t *testing.T) {
	assert.Equal(t, "en", PrimaryLanguage("en-US"))
	assert.Equal(t, "ja", PrimaryLanguage("JA"))
	assert.Equal(t, "pt", PrimaryLanguage("pt_BR"))
	assert.Equal(t, "", PrimaryLanguage(""))
}

func TestFactory(t *testing.T) {
	cfg := config.Default()

	for provider, name := range map[string]string{
		config.ProviderElevenLabs: "elevenlabs",
		config.ProviderDeepgram:   "deepgram",
		config.ProviderOpenAI:     "openai",
	} {
		cfg.STTProvider = provider
		tr, err := NewTranscriber(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, name, tr.Name())
	}

	cfg.STTProvider = "nope"
	_, err := NewTranscriber(context.Background(), cfg)
	assert.Error(t, err)

	cfg.TTSProvider = config.ProviderOpenAI
	syn, err := NewSynthesizer(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", syn.Name())

	cfg.TTSProvider = "nope"
	_, err = NewSynthesizer(cfg)
	assert.Error(t, err)
}

func TestVoiceFor(t *testing.T) {
	cfg := config.Default()
	cfg.ElevenLabs.VoiceID = "voice-1"

	v := VoiceFor(cfg)
	assert.Equal(t, "voice-1", v.VoiceID)
	assert.Equal(t, "eleven_multilingual_v2", v.ModelID)
	assert.Equal(t, 0.5, v.Stability)
	assert.Equal(t, 0.75, v.SimilarityBoost)

	cfg.TTSProvider = config.ProviderOpenAI
	v = VoiceFor(cfg)
	assert.Equal(t, "alloy", v.VoiceID)
	assert.Equal(t, "tts-1", v.ModelID)
}
