package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/sherpa-go/internal/audiofile"
	"github.com/tphakala/sherpa-go/internal/conf"
	"github.com/tphakala/sherpa-go/internal/observability"
	"github.com/tphakala/sherpa-go/internal/sherpa"
	"github.com/tphakala/sherpa-go/internal/sherpa/enginetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

type fakePublisher struct {
	mu      sync.Mutex
	err     error
	sources []string
	events  [][]sherpa.AudioEvent
}

func (f *fakePublisher) PublishTags(_ context.Context, source string, events []sherpa.AudioEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, source)
	f.events = append(f.events, events)
	return f.err
}

func tone(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	return s
}

func wavFile(t *testing.T, n, rate int) []byte {
	t.Helper()
	b, err := audiofile.WAVBytes(tone(n), rate)
	require.NoError(t, err)
	return b
}

func newVits(t *testing.T, e *enginetest.Engine) *sherpa.OfflineTts {
	t.Helper()
	tts, err := sherpa.NewOfflineTts(e, sherpa.TtsOptions{
		Model: sherpa.VitsModel{Model: "vits/model.onnx", Tokens: "vits/tokens.txt"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tts.Close() })
	return tts
}

func newZipvoice(t *testing.T, e *enginetest.Engine) *sherpa.OfflineTts {
	t.Helper()
	tts, err := sherpa.NewOfflineTts(e, sherpa.TtsOptions{
		Model: sherpa.ZipvoiceModel{
			Tokens:            "zipvoice/tokens.txt",
			TextModel:         "zipvoice/text_encoder.onnx",
			FlowMatchingModel: "zipvoice/fm_decoder.onnx",
			Vocoder:           "vocos_24khz.onnx",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tts.Close() })
	return tts
}

func newRecognizer(t *testing.T, e *enginetest.Engine) *sherpa.OfflineRecognizer {
	t.Helper()
	rec, err := sherpa.NewOfflineRecognizer(e, sherpa.RecognizerOptions{
		Model:  sherpa.WhisperModel{Encoder: "whisper/encoder.onnx", Decoder: "whisper/decoder.onnx"},
		Tokens: "whisper/tokens.txt",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func newTagger(t *testing.T, e *enginetest.Engine, topK int) *sherpa.AudioTagger {
	t.Helper()
	tagger, err := sherpa.NewAudioTagger(e, sherpa.TaggerOptions{
		Model:  sherpa.ZipformerTaggerModel{Model: "tagging/model.onnx"},
		Labels: "tagging/labels.csv",
		TopK:   topK,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tagger.Close() })
	return tagger
}

func newTestServer(t *testing.T, cfg *Config, opts ...ServerOption) *Server {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func uploadRequest(t *testing.T, target, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	s := newTestServer(t, nil,
		WithSynthesizer(newZipvoice(t, e)),
		WithTagger(newTagger(t, e, 5)),
		WithVersion("1.2.3"))

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := serve(s, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body struct {
			Status   string            `json:"status"`
			Version  string            `json:"version"`
			Services map[string]string `json:"services"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "1.2.3", body.Version)
		assert.Equal(t, map[string]string{"tts": "zipvoice", "tagging": "zipformer"}, body.Services)
	}
}

func TestSynthesizeReturnsWAV(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	s := newTestServer(t, nil, WithSynthesizer(newVits(t, e)))

	rec := serve(s, jsonRequest(t, "/api/v1/tts", map[string]any{"text": "hello", "sid": 0}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "audio/wav", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "22050", rec.Header().Get(HeaderSampleRate))
	assert.Equal(t, "0.500", rec.Header().Get(HeaderAudioDuration))
	assert.Equal(t, "MISS", rec.Header().Get(HeaderCache))

	audio, err := audiofile.Decode(bytes.NewReader(rec.Body.Bytes()), audiofile.FormatWAV)
	require.NoError(t, err)
	assert.Equal(t, 22050, audio.SampleRate)
	assert.Len(t, audio.Samples, 11025)

	calls := e.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "hello", calls[0].Text)
	assert.InDelta(t, 1.0, calls[0].Speed, 0)
}

func TestSynthesizeCache(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	s := newTestServer(t, nil, WithSynthesizer(newVits(t, e)), WithMetrics(m))

	first := serve(s, jsonRequest(t, "/api/v1/tts", map[string]any{"text": "hello"}))
	require.Equal(t, http.StatusOK, first.Code)
	second := serve(s, jsonRequest(t, "/api/v1/tts", map[string]any{"text": "hello"}))
	require.Equal(t, http.StatusOK, second.Code)
	other := serve(s, jsonRequest(t, "/api/v1/tts", map[string]any{"text": "hello", "speed": 2}))
	require.Equal(t, http.StatusOK, other.Code)

	assert.Equal(t, "HIT", second.Header().Get(HeaderCache))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, "MISS", other.Header().Get(HeaderCache))
	assert.Len(t, e.Calls(), 2)

	metricsRec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, metricsRec.Code)
	body := metricsRec.Body.String()
	assert.Contains(t, body, `sherpa_http_cache_total{result="hit"} 1`)
	assert.Contains(t, body, `sherpa_http_cache_total{result="miss"} 2`)
	assert.Contains(t, body, `sherpa_http_requests_total{code="200",method="POST",route="/api/v1/tts"} 3`)
}

func TestSynthesizeCacheDisabled(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	cfg := DefaultConfig()
	cfg.CacheTTL = 0
	s := newTestServer(t, cfg, WithSynthesizer(newVits(t, e)))

	for range 2 {
		rec := serve(s, jsonRequest(t, "/api/v1/tts", map[string]any{"text": "hello"}))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get(HeaderCache))
	}
	assert.Len(t, e.Calls(), 2)
}

func TestSynthesizeZipvoice(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	e.SetSampleRate(24000)
	s := newTestServer(t, nil, WithSynthesizer(newZipvoice(t, e)))

	rec := serve(s, jsonRequest(t, "/api/v1/tts", map[string]any{
		"text":         "good morning",
		"prompt_text":  "this is the prompt",
		"prompt_audio": wavFile(t, 16000, 16000),
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "24000", rec.Header().Get(HeaderSampleRate))

	calls := e.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, enginetest.Call{
		Text:             "good morning",
		PromptText:       "this is the prompt",
		PromptSamples:    16000,
		PromptSampleRate: 16000,
		Speed:            1,
		NumSteps:         4,
		StringsLive:      true,
	}, calls[0])

	audio, err := audiofile.Decode(bytes.NewReader(rec.Body.Bytes()), audiofile.FormatWAV)
	require.NoError(t, err)
	assert.Len(t, audio.Samples, 28800)
}

func TestSynthesizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		fault enginetest.Fault
		body  map[string]any
		code  int
	}{
		{"missing prompt", enginetest.FaultNone, map[string]any{"text": "hi"}, http.StatusBadRequest},
		{"empty text", enginetest.FaultNone, map[string]any{
			"text": "", "prompt_text": "p", "prompt_audio": wavFile(t, 1600, 16000),
		}, http.StatusBadRequest},
		{"bad prompt audio", enginetest.FaultNone, map[string]any{
			"text": "hi", "prompt_text": "p", "prompt_audio": []byte("not a wav file"),
		}, http.StatusBadRequest},
		{"null result", enginetest.FaultNullResult, nil, http.StatusBadGateway},
		{"negative count", enginetest.FaultNegativeCount, nil, http.StatusBadGateway},
		{"null buffer", enginetest.FaultNullBuffer, nil, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := enginetest.New()
			s := newTestServer(t, nil, WithSynthesizer(newZipvoice(t, e)))
			e.SetFault(tt.fault)

			body := tt.body
			if body == nil {
				body = map[string]any{"text": "hi", "prompt_text": "p", "prompt_audio": wavFile(t, 1600, 16000)}
			}
			rec := serve(s, jsonRequest(t, "/api/v1/tts", body))
			require.Equal(t, tt.code, rec.Code, rec.Body.String())

			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
			assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), resp.CorrelationID)
			assert.Equal(t, e.Creates(enginetest.KindGeneratedAudio), e.Destroys(enginetest.KindGeneratedAudio))
		})
	}
}

func TestSynthesizeInvalidJSON(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, WithSynthesizer(newVits(t, enginetest.New())))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tts", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := serve(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceDisabled(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	reqs := []*http.Request{
		jsonRequest(t, "/api/v1/tts", map[string]any{"text": "hi"}),
		uploadRequest(t, "/api/v1/transcribe", "clip.wav", wavFile(t, 1600, 16000), nil),
		uploadRequest(t, "/api/v1/tag", "clip.wav", wavFile(t, 1600, 16000), nil),
	}
	for _, req := range reqs {
		rec := serve(s, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, req.URL.Path)
	}
}

func TestClosedModelIsUnavailable(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	tts := newVits(t, e)
	s := newTestServer(t, nil, WithSynthesizer(tts))
	require.NoError(t, tts.Close())

	rec := serve(s, jsonRequest(t, "/api/v1/tts", map[string]any{"text": "hi"}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1, e.Destroys(enginetest.KindOfflineTts))
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	s := newTestServer(t, nil, WithTranscriber(newRecognizer(t, e)))

	rec := serve(s, uploadRequest(t, "/api/v1/transcribe", "clip.wav", wavFile(t, 16000, 16000), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp transcribeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "the quick brown fox", resp.Text)
	assert.Equal(t, []float32{0, 0.32, 0.64, 0.96}, resp.Timestamps)
	assert.Equal(t, "<|en|>", resp.Lang)
	assert.Equal(t, "whisper", resp.Backend)
	assert.InDelta(t, 1.0, resp.DurationSeconds, 1e-9)
	assert.Equal(t, []int{16000}, e.Accepted())
	assert.Equal(t, e.Creates(enginetest.KindOfflineStream), e.Destroys(enginetest.KindOfflineStream))
}

func TestTranscribeUploadErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, WithTranscriber(newRecognizer(t, enginetest.New())))

	tests := []struct {
		name     string
		filename string
		data     []byte
		code     int
	}{
		{"missing file", "", nil, http.StatusBadRequest},
		{"unsupported format", "clip.mp3", []byte("ID3"), http.StatusUnsupportedMediaType},
		{"corrupt wav", "clip.wav", []byte("RIFF....WAVE"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(s, uploadRequest(t, "/api/v1/transcribe", tt.filename, tt.data, nil))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestTagTopFive(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	pub := &fakePublisher{}
	s := newTestServer(t, nil, WithTagger(newTagger(t, e, 3)), WithPublisher(pub))

	rec := serve(s, uploadRequest(t, "/api/v1/tag", "clip.wav", wavFile(t, 16000, 16000),
		map[string]string{"top_k": "5"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp tagResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.TopK)
	assert.Equal(t, "zipformer", resp.Backend)
	assert.Equal(t, []string{"event-a", "event-b", "event-c", "event-d", "event-e"}, sherpa.Names(resp.Events))
	require.NotNil(t, resp.Published)
	assert.True(t, *resp.Published)

	require.Len(t, pub.sources, 1)
	assert.Equal(t, "clip.wav", pub.sources[0])
	assert.Equal(t, resp.Events, pub.events[0])
	assert.Equal(t, e.Creates(enginetest.KindTaggingResults), e.Destroys(enginetest.KindTaggingResults))
}

func TestTagDefaultTopK(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, WithTagger(newTagger(t, enginetest.New(), 3)))

	rec := serve(s, uploadRequest(t, "/api/v1/tag", "clip.wav", wavFile(t, 1600, 16000), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tagResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 3)
	assert.Nil(t, resp.Published)
}

func TestTranscribeFLACWithOversizedHeader(t *testing.T) {
	t.Parallel()

	// STREAMINFO: 16 kHz mono 16-bit claiming 2^36-1 samples, no frames.
	flac := []byte("fLaC\x80\x00\x00\x22" +
		"\x10\x00\x10\x00\x00\x00\x00\x00\x00\x00" +
		"\x03\xe8\x00\xff\xff\xff\xff\xff" +
		"\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	require.Len(t, flac, 42)

	e := enginetest.New()
	s := newTestServer(t, nil, WithTranscriber(newRecognizer(t, e)))

	rec := serve(s, uploadRequest(t, "/api/v1/transcribe", "clip.flac", flac, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Empty(t, e.Accepted())
}

func TestTagInvalidTopK(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	s := newTestServer(t, nil, WithTagger(newTagger(t, e, 3)))

	for _, v := range []string{"0", "-2", "five", "1025", "4294967299"} {
		rec := serve(s, uploadRequest(t, "/api/v1/tag", "clip.wav", wavFile(t, 1600, 16000),
			map[string]string{"top_k": v}))
		assert.Equal(t, http.StatusBadRequest, rec.Code, v)
	}
	assert.Zero(t, e.Creates(enginetest.KindOfflineStream))
}

func TestTagPublishFailureKeepsResult(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{err: assert.AnError}
	s := newTestServer(t, nil, WithTagger(newTagger(t, enginetest.New(), 2)), WithPublisher(pub))

	rec := serve(s, uploadRequest(t, "/api/v1/tag", "clip.wav", wavFile(t, 1600, 16000), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tagResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Events, 2)
	require.NotNil(t, resp.Published)
	assert.False(t, *resp.Published)
}

func TestTagNullResult(t *testing.T) {
	t.Parallel()

	e := enginetest.New()
	s := newTestServer(t, nil, WithTagger(newTagger(t, e, 5)))
	e.SetFault(enginetest.FaultNullResult)

	rec := serve(s, uploadRequest(t, "/api/v1/tag", "clip.wav", wavFile(t, 1600, 16000), nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, e.Creates(enginetest.KindOfflineStream), e.Destroys(enginetest.KindOfflineStream))
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BodyLimit = "1K"
	s := newTestServer(t, cfg, WithTranscriber(newRecognizer(t, enginetest.New())))

	rec := serve(s, uploadRequest(t, "/api/v1/transcribe", "clip.wav", wavFile(t, 16000, 16000), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMetricsRouteNeedsRegistry(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartShutdown(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	s := newTestServer(t, cfg)

	s.Start()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	s := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReportsListenError(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	cfg := DefaultConfig()
	cfg.Listen = l.Addr().String()
	s := newTestServer(t, cfg)

	err = s.Run(t.Context())
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no listen", func(c *Config) { c.Listen = "" }, true},
		{"bad body limit", func(c *Config) { c.BodyLimit = "lots" }, true},
		{"zero read timeout", func(c *Config) { c.ReadTimeout = 0 }, true},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
				_, err := New(cfg)
				assert.Error(t, err)
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Server.Listen = "0.0.0.0:9000"
	settings.Server.CacheTTL = time.Minute
	settings.Server.MaxUploadSize = "8M"
	settings.TTS.SpeakerID = 3
	settings.TTS.Speed = 1.25
	settings.TTS.NumSteps = 8

	cfg := ConfigFromSettings(settings)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "8M", cfg.BodyLimit)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, SynthesisDefaults{SpeakerID: 3, Speed: 1.25, NumSteps: 8}, cfg.Synthesis)
}

func TestSynthesisKeyDistinguishesFields(t *testing.T) {
	t.Parallel()

	base := synthesisParams{Text: "ab", SpeakerID: 1, Speed: 1, NumSteps: 4}
	variants := []synthesisParams{
		{Text: "a", PromptText: "b", SpeakerID: 1, Speed: 1, NumSteps: 4},
		{Text: "ab", SpeakerID: 2, Speed: 1, NumSteps: 4},
		{Text: "ab", SpeakerID: 1, Speed: 1.5, NumSteps: 4},
		{Text: "ab", SpeakerID: 1, Speed: 1, NumSteps: 8},
		{Text: "ab", SpeakerID: 1, Speed: 1, NumSteps: 4, PromptAudio: []byte{1}},
	}
	key := synthesisKey("vits", &base)
	assert.Equal(t, key, synthesisKey("vits", &base))
	assert.NotEqual(t, key, synthesisKey("kokoro", &base))
	for _, v := range variants {
		assert.NotEqual(t, key, synthesisKey("vits", &v))
	}
}
