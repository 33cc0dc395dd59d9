package audiofile

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sherpa-go/internal/errors"
)

func sine(n, rate int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
	}
	return s
}

func TestWAVRoundTrip(t *testing.T) {
	t.Parallel()

	in := sine(16000, 16000)
	data, err := WAVBytes(in, 16000)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))

	a, err := Decode(bytes.NewReader(data), FormatWAV)
	require.NoError(t, err)
	assert.Equal(t, 16000, a.SampleRate)
	assert.Equal(t, 1, a.Channels)
	assert.Equal(t, 16, a.BitDepth)
	require.Len(t, a.Samples, len(in))
	for i := range in {
		assert.InDelta(t, in[i], a.Samples[i], 1e-3)
	}
}

func TestEncodeClipsOutOfRangeSamples(t *testing.T) {
	t.Parallel()

	data, err := WAVBytes([]float32{2, -3, 0.25}, 8000)
	require.NoError(t, err)

	a, err := Decode(bytes.NewReader(data), FormatWAV)
	require.NoError(t, err)
	require.Len(t, a.Samples, 3)
	assert.InDelta(t, 1.0, a.Samples[0], 1e-3)
	assert.InDelta(t, -1.0, a.Samples[1], 1e-3)
	assert.InDelta(t, 0.25, a.Samples[2], 1e-3)
}

func TestEncodeRejectsBadRate(t *testing.T) {
	t.Parallel()

	_, err := WAVBytes([]float32{0}, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestDecodeStereoDownmix(t *testing.T) {
	t.Parallel()

	var sb seekableBuffer
	enc := wav.NewEncoder(&sb, 8000, 16, 2, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           []int{1000, 3000, -2000, -4000, 16384, 16384},
		Format:         &audio.Format{SampleRate: 8000, NumChannels: 2},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())

	a, err := Decode(bytes.NewReader(sb.buf), FormatWAV)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Channels)
	require.Len(t, a.Samples, 3)
	assert.InDelta(t, 2000.0/32768, a.Samples[0], 1e-6)
	assert.InDelta(t, -3000.0/32768, a.Samples[1], 1e-6)
	assert.InDelta(t, 0.5, a.Samples[2], 1e-6)
}

func TestDecodeInvalidData(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatWAV, FormatFLAC} {
		_, err := Decode(bytes.NewReader([]byte("definitely not audio")), format)
		require.Error(t, err, format)
		assert.True(t, errors.IsCategory(err, errors.CategoryAudio), format)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	require.NoError(t, WriteWAV(path, sine(2205, 22050), 22050))

	a, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 22050, a.SampleRate)
	assert.Len(t, a.Samples, 2205)
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Read(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestFormatFromName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"speech.wav", FormatWAV, false},
		{"SPEECH.WAV", FormatWAV, false},
		{"clip.wave", FormatWAV, false},
		{"birds.flac", FormatFLAC, false},
		{"song.mp3", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromName(tt.name)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrUnsupportedFormat, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestPCMSample(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -2, pcmSample([]byte{0xfe, 0xff}, 16))
	assert.Equal(t, -1, pcmSample([]byte{0xff, 0xff, 0xff}, 24))
	assert.Equal(t, 8388607, pcmSample([]byte{0xff, 0xff, 0x7f}, 24))
	assert.Equal(t, -8388608, pcmSample([]byte{0x00, 0x00, 0x80}, 24))
	assert.Equal(t, 1, pcmSample([]byte{1, 0, 0, 0}, 32))
}

func TestSeekableBuffer(t *testing.T) {
	t.Parallel()

	var sb seekableBuffer
	_, _ = sb.Write([]byte("hello world"))
	pos, err := sb.Seek(0, 0)
	require.NoError(t, err)
	assert.Zero(t, pos)
	_, _ = sb.Write([]byte("J"))
	_, err = sb.Seek(-5, 2)
	require.NoError(t, err)
	_, _ = sb.Write([]byte("W"))
	assert.Equal(t, "Jello World", string(sb.buf))

	_, err = sb.Seek(-100, 1)
	assert.Error(t, err)
}

// streamInfoFLAC returns a FLAC stream holding only a STREAMINFO block.
func streamInfoFLAC(sampleRate, channels, bitDepth int, totalSamples uint64) []byte {
	fields := []struct {
		bits  int
		value uint64
	}{
		{16, 4096}, {16, 4096}, {24, 0}, {24, 0},
		{20, uint64(sampleRate)}, {3, uint64(channels - 1)}, {5, uint64(bitDepth - 1)},
		{36, totalSamples},
	}
	info := make([]byte, 34)
	pos := 0
	for _, f := range fields {
		for i := f.bits - 1; i >= 0; i-- {
			if f.value>>uint(i)&1 == 1 {
				info[pos/8] |= 0x80 >> uint(pos%8)
			}
			pos++
		}
	}
	out := []byte("fLaC")
	out = append(out, 0x80, 0, 0, byte(len(info)))
	return append(out, info...)
}

func TestDecodeFLACIgnoresHugeSampleCount(t *testing.T) {
	t.Parallel()

	data := streamInfoFLAC(16000, 1, 16, 1<<36-1)
	a, err := Decode(bytes.NewReader(data), FormatFLAC)
	if err != nil {
		assert.True(t, errors.IsCategory(err, errors.CategoryAudio))
		return
	}
	assert.Equal(t, 16000, a.SampleRate)
	assert.Empty(t, a.Samples)
}

func TestFLACCapacity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, flacCapacity(-1))
	assert.Equal(t, 48000, flacCapacity(48000))
	assert.Equal(t, maxPrealloc, flacCapacity(1<<36-1))
}

func TestDecodeWAVRejectsExcessiveChannels(t *testing.T) {
	t.Parallel()

	for _, channels := range []uint16{maxChannels + 1, 65535} {
		data, err := WAVBytes(sine(1600, 16000), 16000)
		require.NoError(t, err)
		binary.LittleEndian.PutUint16(data[22:], channels)

		_, err = Decode(bytes.NewReader(data), FormatWAV)
		require.Error(t, err, channels)
		assert.True(t, errors.IsCategory(err, errors.CategoryAudio))
	}
}

func TestCheckChannels(t *testing.T) {
	t.Parallel()

	assert.NoError(t, checkChannels(1))
	assert.NoError(t, checkChannels(maxChannels))
	assert.Error(t, checkChannels(0))
	assert.Error(t, checkChannels(maxChannels+1))
}
