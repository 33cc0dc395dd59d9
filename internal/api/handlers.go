package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/sherpa-go/internal/audiofile"
	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
	"github.com/tphakala/sherpa-go/internal/sherpa"
)

const zipvoiceBackend = "zipvoice"

// Response headers describing synthesized audio.
const (
	HeaderSampleRate    = "X-Sample-Rate"
	HeaderAudioDuration = "X-Audio-Duration"
	HeaderCache         = "X-Cache"
)

// synthesizeRequest is the body of POST /api/v1/tts. Zero values fall back
// to the configured defaults. PromptAudio is a base64 encoded WAV file and,
// with PromptText, is required by the zipvoice backend.
type synthesizeRequest struct {
	Text        string  `json:"text"`
	SpeakerID   *int    `json:"sid,omitempty"`
	Speed       float32 `json:"speed,omitempty"`
	NumSteps    int     `json:"num_steps,omitempty"`
	PromptText  string  `json:"prompt_text,omitempty"`
	PromptAudio []byte  `json:"prompt_audio,omitempty"`
}

// synthesisParams is a synthesizeRequest with defaults applied.
type synthesisParams struct {
	Text        string
	SpeakerID   int
	Speed       float32
	NumSteps    int
	PromptText  string
	PromptAudio []byte
}

type transcribeResponse struct {
	Text            string    `json:"text"`
	Timestamps      []float32 `json:"timestamps,omitempty"`
	Lang            string    `json:"lang,omitempty"`
	Emotion         string    `json:"emotion,omitempty"`
	Event           string    `json:"event,omitempty"`
	Backend         string    `json:"backend"`
	DurationSeconds float64   `json:"duration_seconds"`
}

type tagResponse struct {
	Events    []sherpa.AudioEvent `json:"events"`
	Backend   string              `json:"backend"`
	TopK      int                 `json:"top_k"`
	Published *bool               `json:"published,omitempty"`
}

func (s *Server) resolveSynthesis(req *synthesizeRequest) synthesisParams {
	d := s.config.Synthesis
	p := synthesisParams{
		Text:        req.Text,
		SpeakerID:   d.SpeakerID,
		Speed:       req.Speed,
		NumSteps:    req.NumSteps,
		PromptText:  req.PromptText,
		PromptAudio: req.PromptAudio,
	}
	if req.SpeakerID != nil {
		p.SpeakerID = *req.SpeakerID
	}
	if p.Speed == 0 {
		p.Speed = d.Speed
	}
	if p.NumSteps == 0 {
		p.NumSteps = d.NumSteps
	}
	return p
}

// handleSynthesize handles POST /api/v1/tts and responds with a WAV file.
func (s *Server) handleSynthesize(c echo.Context) error {
	if s.synthesizer == nil {
		return s.HandleError(c, ErrServiceDisabled, "speech synthesis is not enabled")
	}

	var req synthesizeRequest
	if err := c.Bind(&req); err != nil {
		return s.HandleError(c, err, "invalid request body")
	}
	params := s.resolveSynthesis(&req)
	backend := s.synthesizer.Backend()
	key := synthesisKey(backend, &params)

	if entry, ok := s.cache.get(key); ok {
		s.recordCache("hit")
		return writeAudio(c, entry, "HIT")
	}
	if s.cache != nil {
		s.recordCache("miss")
	}

	audio, err := s.synthesize(backend, &params)
	if err != nil {
		return s.HandleError(c, err, "speech synthesis failed")
	}
	wav, err := audiofile.WAVBytes(audio.Samples, audio.SampleRate)
	if err != nil {
		return s.HandleError(c, err, "failed to encode audio")
	}

	entry := &cachedAudio{wav: wav, sampleRate: audio.SampleRate, duration: audio.DurationExact()}
	s.cache.set(key, entry)

	s.log.Debug("speech synthesized",
		logger.String("backend", backend),
		logger.Int("chars", len(params.Text)),
		logger.Int("samples", len(audio.Samples)),
		logger.Duration("audio_duration", entry.duration))
	return writeAudio(c, entry, "MISS")
}

func (s *Server) synthesize(backend string, p *synthesisParams) (*sherpa.AudioBuffer, error) {
	if backend != zipvoiceBackend {
		return s.synthesizer.Generate(p.Text, p.SpeakerID, p.Speed)
	}

	if p.PromptText == "" || len(p.PromptAudio) == 0 {
		return nil, errors.Newf("prompt_text and prompt_audio are required by the %s backend", backend).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	prompt, err := audiofile.Decode(bytes.NewReader(p.PromptAudio), audiofile.FormatWAV)
	if err != nil {
		return nil, err
	}
	return s.synthesizer.GenerateWithZipvoice(sherpa.ZipvoiceRequest{
		Text:             p.Text,
		PromptText:       p.PromptText,
		PromptSamples:    prompt.Samples,
		PromptSampleRate: prompt.SampleRate,
		Speed:            p.Speed,
		NumSteps:         p.NumSteps,
	})
}

func writeAudio(c echo.Context, entry *cachedAudio, cacheStatus string) error {
	h := c.Response().Header()
	h.Set(HeaderSampleRate, strconv.Itoa(entry.sampleRate))
	h.Set(HeaderAudioDuration, strconv.FormatFloat(entry.duration.Seconds(), 'f', 3, 64))
	h.Set(HeaderCache, cacheStatus)
	return c.Blob(http.StatusOK, "audio/wav", entry.wav)
}

// handleTranscribe handles POST /api/v1/transcribe with a multipart "file".
func (s *Server) handleTranscribe(c echo.Context) error {
	if s.transcriber == nil {
		return s.HandleError(c, ErrServiceDisabled, "speech recognition is not enabled")
	}

	audio, _, err := readUpload(c)
	if err != nil {
		return s.HandleError(c, err, "invalid audio upload")
	}

	result, err := s.transcriber.Transcribe(audio.SampleRate, audio.Samples)
	if err != nil {
		return s.HandleError(c, err, "transcription failed")
	}

	return c.JSON(http.StatusOK, transcribeResponse{
		Text:            result.Text,
		Timestamps:      result.Timestamps,
		Lang:            result.Lang,
		Emotion:         result.Emotion,
		Event:           result.Event,
		Backend:         s.transcriber.Backend(),
		DurationSeconds: samplesDuration(len(audio.Samples), audio.SampleRate).Seconds(),
	})
}

// handleTag handles POST /api/v1/tag with a multipart "file" and an optional
// "top_k" field.
func (s *Server) handleTag(c echo.Context) error {
	if s.tagger == nil {
		return s.HandleError(c, ErrServiceDisabled, "audio tagging is not enabled")
	}

	topK := s.tagger.TopK()
	if v := c.FormValue("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > sherpa.MaxTopK {
			return s.HandleError(c, errors.Newf("top_k must be an integer between 1 and %d, got %q", sherpa.MaxTopK, v).
				Component("api").
				Category(errors.CategoryValidation).
				Build(), "invalid top_k")
		}
		topK = n
	}

	audio, source, err := readUpload(c)
	if err != nil {
		return s.HandleError(c, err, "invalid audio upload")
	}

	events, err := s.tagger.ComputeTopK(audio.SampleRate, audio.Samples, topK)
	if err != nil {
		return s.HandleError(c, err, "audio tagging failed")
	}
	if events == nil {
		events = []sherpa.AudioEvent{}
	}

	resp := tagResponse{Events: events, Backend: s.tagger.Backend(), TopK: topK}
	if s.publisher != nil {
		published := s.publish(c.Request().Context(), source, events)
		resp.Published = &published
	}
	return c.JSON(http.StatusOK, resp)
}

// publish forwards events and reports whether the broker accepted them. A
// failed publish does not fail the request.
func (s *Server) publish(ctx context.Context, source string, events []sherpa.AudioEvent) bool {
	ctx, cancel := context.WithTimeout(ctx, s.config.PublishTimeout)
	defer cancel()

	if err := s.publisher.PublishTags(ctx, source, events); err != nil {
		s.log.Warn("failed to publish tagging result",
			logger.String("source", source),
			logger.Error(err))
		return false
	}
	return true
}

// readUpload decodes the multipart "file" field.
func readUpload(c echo.Context) (*audiofile.Audio, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, `missing form file "file"`).SetInternal(err)
	}
	format, err := audiofile.FormatFromName(fh.Filename)
	if err != nil {
		return nil, "", err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", errors.New(err).
			Component("api").
			Category(errors.CategoryFileIO).
			Context("operation", "open-upload").
			Build()
	}
	defer func() {
		if err := f.Close(); err != nil {
			GetLogger().Warn("failed to close upload", logger.Error(err))
		}
	}()

	audio, err := audiofile.Decode(f, format)
	if err != nil {
		return nil, "", err
	}
	return audio, fh.Filename, nil
}

func samplesDuration(n, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(sampleRate)
}

func (s *Server) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.HTTP.RecordCache(result)
	}
}
