package audiofile

import (
	"encoding/binary"
	"io"

	"github.com/tphakala/flac"
)

func decodeFLAC(r io.Reader) (*Audio, error) {
	decoder, err := flac.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	divisor, err := getAudioDivisor(decoder.BitsPerSample)
	if err != nil {
		return nil, err
	}
	channels := decoder.NChannels
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	bytesPerSample := decoder.BitsPerSample / 8

	// TotalSamples comes straight from STREAMINFO and may be up to 2^36.
	samples := make([]float32, 0, flacCapacity(decoder.TotalSamples))
	var ints []int
	for {
		frame, err := decoder.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		ints = ints[:0]
		for i := 0; i+bytesPerSample <= len(frame); i += bytesPerSample {
			ints = append(ints, pcmSample(frame[i:], decoder.BitsPerSample))
		}
		samples = downmix(samples, ints, channels, divisor)
	}

	return &Audio{
		Samples:    samples,
		SampleRate: decoder.SampleRate,
		Channels:   channels,
		BitDepth:   decoder.BitsPerSample,
	}, nil
}

func flacCapacity(total int64) int {
	return int(max(0, min(total, maxPrealloc)))
}

// pcmSample reads one signed little endian sample.
func pcmSample(b []byte, bitDepth int) int {
	switch bitDepth {
	case 16:
		return int(int16(binary.LittleEndian.Uint16(b)))
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		return int(v<<8) >> 8
	default:
		return int(int32(binary.LittleEndian.Uint32(b)))
	}
}
