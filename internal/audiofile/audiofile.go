// Package audiofile reads WAV and FLAC files into mono float32 samples and
// writes synthesized audio back out as 16-bit PCM WAV.
package audiofile

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
)

// Audio is decoded audio downmixed to one channel in [-1, 1].
type Audio struct {
	Samples    []float32
	SampleRate int
	// Channels and BitDepth describe the source file.
	Channels int
	BitDepth int
}

// Format is a supported container.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
)

// ErrUnsupportedFormat is returned for extensions other than .wav and .flac.
var ErrUnsupportedFormat = errors.NewStd("unsupported audio format")

// GetLogger returns the audiofile module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("audiofile")
}

// FormatFromName picks the container from a file name extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".flac":
		return FormatFLAC, nil
	default:
		return "", errors.New(ErrUnsupportedFormat).
			Component("audiofile").
			Category(errors.CategoryValidation).
			Context("extension", filepath.Ext(name)).
			Build()
	}
}

// Read decodes the file at path.
func Read(path string) (*Audio, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			Context("operation", "open-audio").
			Build()
	}
	defer func() {
		if err := file.Close(); err != nil {
			GetLogger().Warn("failed to close audio file", logger.Error(err))
		}
	}()

	a, err := Decode(file, format)
	if err != nil {
		return nil, err
	}
	GetLogger().Debug("audio file decoded",
		logger.String("format", string(format)),
		logger.Int("sample_rate", a.SampleRate),
		logger.Int("channels", a.Channels),
		logger.Int("samples", len(a.Samples)))
	return a, nil
}

// Decode reads audio of the given format from r.
func Decode(r io.ReadSeeker, format Format) (*Audio, error) {
	var (
		a   *Audio
		err error
	)
	switch format {
	case FormatWAV:
		a, err = decodeWAV(r)
	case FormatFLAC:
		a, err = decodeFLAC(r)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, errors.New(err).
			Component("audiofile").
			Category(errors.CategoryAudio).
			Context("format", string(format)).
			Build()
	}
	return a, nil
}

// maxChannels bounds the channel count accepted from a file header.
const maxChannels = 8

// maxPrealloc caps the sample capacity reserved from a header length field.
const maxPrealloc = 1 << 20

func checkChannels(channels int) error {
	if channels < 1 || channels > maxChannels {
		return errors.Newf("unsupported number of channels: %d", channels).
			Component("audiofile").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// getAudioDivisor returns the full scale value for integer PCM of bitDepth.
func getAudioDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, errors.Newf("unsupported audio file bit depth: %d", bitDepth).
			Component("audiofile").
			Category(errors.CategoryValidation).
			Build()
	}
}

// downmix averages interleaved frames into one channel.
func downmix(dst []float32, interleaved []int, channels int, divisor float32) []float32 {
	for i := 0; i+channels <= len(interleaved); i += channels {
		var sum float32
		for c := range channels {
			sum += float32(interleaved[i+c])
		}
		dst = append(dst, sum/float32(channels)/divisor)
	}
	return dst
}
