package negotiate

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"
)

// Speech output format: 16-bit signed little-endian PCM, mono, 24 kHz.
const (
	SpeechSampleRate = 24000
	SpeechChannels   = 1
	bitsPerSample    = 16
)

// AudioBuffer is decoded mono audio with samples in [-1, 1].
type AudioBuffer struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// DecodePCM16 converts little-endian signed 16-bit PCM into samples by
// dividing each value by 32768. A trailing odd byte is ignored.
func DecodePCM16(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[2*i:]))
		samples[i] = float32(v) / 32768
	}
	return samples
}

// Duration is the playback length of the buffer.
func (b *AudioBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	frames := len(b.Samples) / b.Channels
	return time.Duration(frames) * time.Second / time.Duration(b.SampleRate)
}

// PCM16 re-encodes the samples as little-endian signed 16-bit PCM.
func (b *AudioBuffer) PCM16() []byte {
	out := make([]byte, 2*len(b.Samples))
	for i, s := range b.Samples {
		v := math.Round(float64(s) * 32768)
		v = math.Max(math.MinInt16, math.Min(math.MaxInt16, v))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v)))
	}
	return out
}

// WriteWAV writes the buffer as a RIFF/WAVE PCM stream.
func (b *AudioBuffer) WriteWAV(w io.Writer) error {
	pcm := b.PCM16()
	blockAlign := b.Channels * bitsPerSample / 8

	var hdr bytes.Buffer
	hdr.WriteString("RIFF")
	_ = binary.Write(&hdr, binary.LittleEndian, uint32(36+len(pcm)))
	hdr.WriteString("WAVEfmt ")
	_ = binary.Write(&hdr, binary.LittleEndian, uint32(16))
	_ = binary.Write(&hdr, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&hdr, binary.LittleEndian, uint16(b.Channels))
	_ = binary.Write(&hdr, binary.LittleEndian, uint32(b.SampleRate))
	_ = binary.Write(&hdr, binary.LittleEndian, uint32(b.SampleRate*blockAlign))
	_ = binary.Write(&hdr, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&hdr, binary.LittleEndian, uint16(bitsPerSample))
	hdr.WriteString("data")
	_ = binary.Write(&hdr, binary.LittleEndian, uint32(len(pcm)))

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}

// WAV returns the buffer encoded by WriteWAV.
func (b *AudioBuffer) WAV() []byte {
	var buf bytes.Buffer
	_ = b.WriteWAV(&buf)
	return buf.Bytes()
}
