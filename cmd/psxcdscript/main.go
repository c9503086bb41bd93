// Command psxcdscript runs a Lua scenario script (see cdscript) against
// a cdrom.Device, optionally backed by a real disc image. Its flag/log
// shape is grounded on _examples/zeozeozeo-gopsx/main.go.
package main

import (
	"flag"
	"log"

	"github.com/go-psx/psxcd/cdrom"

	"github.com/go-psx/psxcd/cdscript"
	"github.com/go-psx/psxcd/mediaimage"
)

type nopTick struct{}

func (nopTick) Synchronize()         {}
func (nopTick) SetDowncount(int32)   {}

type nopDma struct{}

func (nopDma) SetRequest(bool) {}

type nopIrq struct{}

func (nopIrq) Request() {}

type nopAudio struct{}

func (nopAudio) PushSample(int16, int16) {}

type nopXaDecoder struct{}

func (nopXaDecoder) DecodeXaSector(payload []byte, stereo bool, lastSamples *[2][2]int16) []int16 {
	return make([]int16, len(payload)/2)
}

func main() {
	imagePath := flag.String("image", "", "optional path to a raw .bin disc image")
	flag.Parse()

	scripts := flag.Args()
	if len(scripts) == 0 {
		log.Fatal("psxcdscript: at least one .lua script path is required")
	}

	device := cdrom.NewDevice(cdrom.RegionSCEA, nopTick{}, nopDma{}, nopIrq{}, nopAudio{}, nopXaDecoder{})

	if *imagePath != "" {
		img, err := mediaimage.Open(*imagePath)
		if err != nil {
			log.Fatalf("psxcdscript: %v", err)
		}
		defer img.Close()
		device.SetMedia(img)
	}

	driver := cdscript.New(device)
	defer driver.Close()

	for _, path := range scripts {
		log.Printf("psxcdscript: running %s", path)
		if err := driver.RunFile(path); err != nil {
			log.Fatalf("psxcdscript: %v", err)
		}
		log.Printf("psxcdscript: %s passed", path)
	}
}
