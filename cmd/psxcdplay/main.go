// Command psxcdplay drives a cdrom.Device against a real disc image,
// ticking it at master-clock rate and streaming its CDDA/XA output to a
// live audio device. Its flag/log shape is grounded on
// _examples/zeozeozeo-gopsx/main.go.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/go-psx/psxcd/cdrom"

	"github.com/go-psx/psxcd/audiosink"
	"github.com/go-psx/psxcd/debugview"
	"github.com/go-psx/psxcd/mediaimage"
	"github.com/go-psx/psxcd/wavdump"
)

// tickingInspector wraps a debugview.Inspector with its own Update, so
// -debug can drive the device's Execute loop from ebiten's game loop
// instead of psxcdplay's own time.Sleep loop.
type tickingInspector struct {
	*debugview.Inspector
	device *cdrom.Device
	step   int32
}

func (g *tickingInspector) Update() error {
	g.device.Execute(g.step)
	return nil
}

// teeSink fans PushSample out to a live sink and, when present, an
// offline WAV capture, so -wav can be layered on top of normal playback
// without the device caring how many sinks are listening.
type teeSink struct {
	live *audiosink.Sink
	dump *wavdump.Dump
}

func (t teeSink) PushSample(left, right int16) {
	t.live.PushSample(left, right)
	if t.dump != nil {
		t.dump.PushSample(left, right)
	}
}

type ticker struct{ downcount int32 }

func (t *ticker) Synchronize()         {}
func (t *ticker) SetDowncount(n int32) { t.downcount = n }

type nopDma struct{}

func (nopDma) SetRequest(bool) {}

type irqCounter struct{ count int }

func (c *irqCounter) Request() { c.count++ }

// passthroughXA is a stand-in ADPCM decoder: this repository's scope
// stops at the resampler (spec.md Non-goals), so real XA bitstreams are
// not decoded here, just treated as silence at the right sample count.
type passthroughXA struct{}

func (passthroughXA) DecodeXaSector(payload []byte, stereo bool, lastSamples *[2][2]int16) []int16 {
	return make([]int16, len(payload)/2)
}

func main() {
	imagePath := flag.String("image", "", "path to a raw .bin disc image")
	track := flag.Uint("track", 1, "track number to play")
	doubleSpeed := flag.Bool("double-speed", false, "read at double speed")
	wavPath := flag.String("wav", "", "optional path to also capture audio as a WAV file")
	debug := flag.Bool("debug", false, "open a live register/FIFO inspector window instead of running headless")
	flag.Parse()

	if *imagePath == "" {
		log.Fatal("psxcdplay: -image is required")
	}

	img, err := mediaimage.Open(*imagePath)
	if err != nil {
		log.Fatalf("psxcdplay: %v", err)
	}
	defer img.Close()
	log.Printf("psxcdplay: opened %s (%d sectors, region %s)", *imagePath, img.LBACount(), img.Region())

	sink, err := audiosink.Open()
	if err != nil {
		log.Fatalf("psxcdplay: audio: %v", err)
	}
	defer sink.Close()

	audio := teeSink{live: sink}
	if *wavPath != "" {
		dump, err := wavdump.Create(*wavPath)
		if err != nil {
			log.Fatalf("psxcdplay: wav: %v", err)
		}
		defer dump.Close()
		audio.dump = dump
		log.Printf("psxcdplay: also capturing audio to %s", *wavPath)
	}

	tick := &ticker{}
	irq := &irqCounter{}
	device := cdrom.NewDevice(cdrom.RegionSCEA, tick, nopDma{}, irq, audio, passthroughXA{})
	device.SetMedia(img)

	modeByte := uint8(0)
	if *doubleSpeed {
		modeByte |= 1 << 7
	}
	sendCommand(device, 0x0E, modeByte)      // Setmode
	sendCommand(device, 0x03, byte(*track)) // Play(track)

	log.Printf("psxcdplay: playing track %d, %d IRQs so far", *track, irq.count)

	step := int32(1000)
	if *debug {
		ebiten.SetWindowTitle("psxcdplay")
		game := &tickingInspector{Inspector: debugview.New(device, nil), device: device, step: step}
		if err := ebiten.RunGame(game); err != nil {
			log.Fatalf("psxcdplay: %v", err)
		}
		return
	}

	for {
		device.Execute(step)
		time.Sleep(time.Duration(float64(step)/33868800.0*1e9) * time.Nanosecond)
	}
}

// sendCommand writes opcode (and any parameter bytes) to the command
// register the way a real BIOS driver would: parameters first, then the
// opcode, then enough ticks for the ACK delay to elapse.
func sendCommand(device *cdrom.Device, opcode byte, params ...byte) {
	device.Store(0, 0)
	for _, p := range params {
		device.Store(2, p)
	}
	device.Store(1, opcode)
	device.Execute(60000)
}
