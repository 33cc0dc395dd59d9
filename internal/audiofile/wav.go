package audiofile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/sherpa-go/internal/errors"
)

const readFrames = 4096

func decodeWAV(r io.ReadSeeker) (*Audio, error) {
	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("input is not a valid WAV audio file")
	}
	if err := checkChannels(int(decoder.NumChans)); err != nil {
		return nil, err
	}

	divisor, err := getAudioDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, err
	}

	channels := int(decoder.NumChans)
	buf := &audio.IntBuffer{
		Data:   make([]int, readFrames*channels),
		Format: &audio.Format{SampleRate: int(decoder.SampleRate), NumChannels: channels},
	}

	var samples []float32
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		samples = downmix(samples, buf.Data[:n], channels, divisor)
	}

	return &Audio{
		Samples:    samples,
		SampleRate: int(decoder.SampleRate),
		Channels:   channels,
		BitDepth:   int(decoder.BitDepth),
	}, nil
}

// seekableBuffer is an in-memory io.WriteSeeker for the WAV encoder, which
// seeks back to patch the header sizes on Close.
type seekableBuffer struct {
	buf []byte
	pos int
}

func (s *seekableBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	n := copy(s.buf[s.pos:], p)
	s.pos += n
	return n, nil
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative position %d", abs)
	}
	s.pos = int(abs)
	return abs, nil
}

// EncodeWAV writes samples as 16-bit mono PCM. Samples outside [-1, 1] are
// clipped.
func EncodeWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return errors.Newf("invalid sample rate %d", sampleRate).
			Component("audiofile").
			Category(errors.CategoryValidation).
			Build()
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(max(-1, min(1, s)) * 32767)
	}

	if err := enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}); err != nil {
		return errors.New(err).
			Component("audiofile").
			Category(errors.CategoryAudio).
			Context("operation", "encode-wav").
			Build()
	}
	return enc.Close()
}

// WAVBytes returns samples encoded as a complete WAV file.
func WAVBytes(samples []float32, sampleRate int) ([]byte, error) {
	var sb seekableBuffer
	if err := EncodeWAV(&sb, samples, sampleRate); err != nil {
		return nil, err
	}
	return sb.buf, nil
}

// WriteWAV saves samples to path, creating parent directories.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			Context("operation", "create-output-dir").
			Build()
	}

	out, err := os.Create(path) //nolint:gosec // output path is chosen by the user
	if err != nil {
		return errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			Context("operation", "create-wav").
			Build()
	}

	if err := EncodeWAV(out, samples, sampleRate); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
