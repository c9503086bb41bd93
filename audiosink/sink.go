// Package audiosink implements cdrom.AudioSink with real-time playback
// through oto, grounded on
// _examples/IntuitionAmiga-IntuitionEngine/audio_backend_oto.go's
// OtoPlayer: an oto.Context feeding an oto.Player whose Read is driven
// by a lock-free ring the emulation thread writes into via PushSample.
package audiosink

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
	ringFrames   = 1 << 14 // 16384 stereo frames, ~370ms at 44100Hz.
)

// Sink is a real-time cdrom.AudioSink. Call PushSample from the emulated
// CD-ROM's own goroutine; Read (invoked by oto on its own audio thread)
// drains the ring it writes into.
type Sink struct {
	ctx    *oto.Context
	player *oto.Player

	mu       sync.Mutex
	ring     []float32 // interleaved L/R.
	writePos int
	readPos  int
	filled   int

	dropped uint64
}

// Open creates a Sink and starts its oto playback stream.
func Open() (*Sink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0, // oto default.
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audiosink: oto.NewContext: %w", err)
	}
	<-ready

	s := &Sink{
		ctx:  ctx,
		ring: make([]float32, ringFrames*channelCount),
	}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

// Close stops playback and releases the oto player.
func (s *Sink) Close() error {
	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
	return nil
}

// PushSample implements cdrom.AudioSink. If the ring is full (the audio
// thread isn't draining fast enough) the sample is dropped and a counter
// incremented, rather than blocking the emulation thread — a backed-up
// drive is worse than a dropped sample.
func (s *Sink) PushSample(left, right int16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filled == ringFrames {
		s.dropped++
		return
	}

	idx := s.writePos * channelCount
	s.ring[idx] = float32(left) / 32768.0
	s.ring[idx+1] = float32(right) / 32768.0
	s.writePos = (s.writePos + 1) % ringFrames
	s.filled++
}

// Read implements io.Reader for oto.Context.NewPlayer: it is called from
// oto's own audio callback thread and must never block.
func (s *Sink) Read(p []byte) (int, error) {
	frames := len(p) / (4 * channelCount) // 4 bytes per float32 sample.
	if frames == 0 {
		return 0, nil
	}

	s.mu.Lock()
	n := frames
	if n > s.filled {
		n = s.filled
	}
	for i := 0; i < n; i++ {
		idx := s.readPos * channelCount
		writeFloat32LE(p[i*8:], s.ring[idx])
		writeFloat32LE(p[i*8+4:], s.ring[idx+1])
		s.readPos = (s.readPos + 1) % ringFrames
	}
	s.filled -= n
	dropped := s.dropped
	s.dropped = 0
	s.mu.Unlock()

	if dropped > 0 {
		log.Printf("audiosink: dropped %d samples (audio thread underrun upstream)", dropped)
	}

	// Starvation: pad the rest of the requested buffer with silence
	// rather than returning a short read, which oto would treat as EOF.
	for i := n * 8; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func writeFloat32LE(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}
