package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

type wavHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

const wavHeaderSize = 44

// pcmFormat is the value of the WAV AudioFormat field for uncompressed
// LINEAR16 samples.
const pcmFormat = 1

// DecodeWAV validates a canonical 44-byte WAV header and returns the raw
// PCM payload. Only 16-bit mono LINEAR16 at SampleRate is accepted,
// which is what the browser recorder and the mic capture both produce.
func DecodeWAV(data []byte) ([]byte, error) {
	if len(data) < wavHeaderSize {
		return nil, errors.New("speech: invalid WAV header length")
	}

	var header wavHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("speech: failed to parse WAV header: %w", err)
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("speech: not a WAV file")
	}
	if header.AudioFormat != pcmFormat {
		return nil, fmt.Errorf("speech: unsupported WAV format %d, want PCM", header.AudioFormat)
	}
	if header.NumChannels != 1 {
		return nil, fmt.Errorf("speech: unsupported channel count %d, want mono", header.NumChannels)
	}
	if header.SampleRate != SampleRate {
		return nil, fmt.Errorf("speech: unsupported sample rate %d, want %d", header.SampleRate, SampleRate)
	}
	if header.BitsPerSample != 16 {
		return nil, fmt.Errorf("speech: unsupported bit depth %d, want 16", header.BitsPerSample)
	}

	pcm := data[wavHeaderSize:]
	if int(header.DataSize) < len(pcm) {
		pcm = pcm[:header.DataSize]
	}
	return pcm, nil
}

// EncodeWAV wraps raw LINEAR16 mono PCM in a canonical WAV header.
func EncodeWAV(pcm []byte) []byte {
	header := wavHeader{
		RiffTag:       [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      uint32(wavHeaderSize - 8 + len(pcm)),
		WaveTag:       [4]byte{'W', 'A', 'V', 'E'},
		FmtTag:        [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   pcmFormat,
		NumChannels:   1,
		SampleRate:    SampleRate,
		ByteRate:      SampleRate * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		DataTag:       [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(pcm)))
	binary.Write(buf, binary.LittleEndian, header)
	buf.Write(pcm)
	return buf.Bytes()
}

// PCMFromFloat32 converts recorder samples in [-1, 1] to LINEAR16
// little-endian bytes, clipping out-of-range values.
func PCMFromFloat32(samples []float32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}
