// Package wavdump implements cdrom.AudioSink as an offline WAV file
// writer, the encode-side mirror of
// _examples/JetSetIlly-Gopher2600/hardware/memory/cartridge/supercharger/soundload_pcm.go's
// go-audio/wav decode usage. Useful for capturing a test run's audio
// output for offline inspection without a live audio device.
package wavdump

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	sampleRate   = 44100
	bitDepth     = 16
	channelCount = 2
)

// Dump is a buffering cdrom.AudioSink that writes a standard PCM WAV
// file on Close.
type Dump struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
}

// Create opens fileName for writing and prepares a 44100Hz stereo
// 16-bit PCM WAV encoder, matching the mixer's fixed native rate
// (spec.md §4.7).
func Create(fileName string) (*Dump, error) {
	f, err := os.Create(fileName)
	if err != nil {
		return nil, fmt.Errorf("wavdump: create %s: %w", fileName, err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channelCount, 1)

	return &Dump{
		file:    f,
		encoder: enc,
		buf: &audio.IntBuffer{
			Format: &audio.Format{SampleRate: sampleRate, NumChannels: channelCount},
		},
	}, nil
}

// PushSample implements cdrom.AudioSink.
func (d *Dump) PushSample(left, right int16) {
	d.buf.Data = append(d.buf.Data, int(left), int(right))
	if len(d.buf.Data) >= 4096 {
		d.flush()
	}
}

func (d *Dump) flush() {
	if len(d.buf.Data) == 0 {
		return
	}
	if err := d.encoder.Write(d.buf); err != nil {
		panic(fmt.Sprintf("wavdump: write: %v", err))
	}
	d.buf.Data = d.buf.Data[:0]
}

// Close flushes any buffered samples, finalizes the WAV header, and
// closes the underlying file.
func (d *Dump) Close() error {
	d.flush()
	if err := d.encoder.Close(); err != nil {
		return fmt.Errorf("wavdump: close encoder: %w", err)
	}
	return d.file.Close()
}
