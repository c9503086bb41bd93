package cdrom

import "testing"

func buildXASector(file, channel uint8, realtimeAudio bool, matchesFilter bool) []byte {
	buf := make([]byte, SectorSize)
	buf[sectorSyncSize+3] = 2 // Mode 2.

	submode := uint8(0)
	if realtimeAudio {
		submode = submodeBitRealTime | submodeBitAudio
	}

	sh := sectorSyncSize + sectorHeaderSize
	buf[sh+0] = file
	buf[sh+1] = channel
	buf[sh+2] = submode
	buf[sh+3] = 0 // mono, full sample rate.
	_ = matchesFilter
	return buf
}

// TestXAFilterDrop is boundary scenario 5 (spec.md §8).
func TestXAFilterDrop(t *testing.T) {
	d, _, _, _, audio := newTestDevice()
	d.mode = Mode(modeBitXAEnable | modeBitXAFilter)
	d.filterFile = 4
	d.filterChannel = 7

	d.sectorBuffer = buildXASector(9, 9, true, false)
	d.processDataSector()

	if len(audio.left) != 0 {
		t.Errorf("filtered-out XA sector produced %d audio samples, want 0", len(audio.left))
	}
	if d.pendingAsyncInterrupt != 0 {
		t.Errorf("filtered-out XA sector left a pending async interrupt (0x%02X)", d.pendingAsyncInterrupt)
	}
	if d.interruptFlag != 0 {
		t.Errorf("filtered-out XA sector raised interrupt flag 0x%02X, want 0", d.interruptFlag)
	}
	if len(d.sectorBuffer) != 0 {
		t.Errorf("filtered-out XA sector buffer not cleared, len=%d", len(d.sectorBuffer))
	}

	d.sectorBuffer = buildXASector(9, 9, true, false)
	d.loadDataFIFO()
	if d.dataFIFO.Size() != 0 {
		t.Errorf("filtered-out XA sector's bytes reached the data FIFO (%d bytes)", d.dataFIFO.Size())
	}
}

// TestXAFilterMatchDecodes is the positive counterpart: a matching
// file/channel pair does reach the resampler.
func TestXAFilterMatchDecodes(t *testing.T) {
	d, _, _, _, audio := newTestDevice()
	d.mode = Mode(modeBitXAEnable | modeBitXAFilter)
	d.filterFile = 4
	d.filterChannel = 7

	d.sectorBuffer = buildXASector(4, 7, true, true)
	d.processDataSector()

	if len(audio.left) == 0 {
		t.Error("matching XA sector produced no audio samples")
	}
	if d.interruptFlag != 0 {
		t.Errorf("matching XA-audio sector raised interrupt flag 0x%02X, want 0 (never reaches CPU)", d.interruptFlag)
	}
}

func TestBFRDWithoutRawSectorSkipsHeaderAndSubheader(t *testing.T) {
	d, _, _, _, _ := newTestDevice()
	d.sectorBuffer = make([]byte, SectorSize)
	payloadStart := sectorSyncSize + sectorHeaderSize + sectorSubheaderSize
	d.sectorBuffer[payloadStart] = 0xAB

	d.loadDataFIFO()

	v, ok := d.dataFIFO.Peek(0)
	if !ok || v != 0xAB {
		t.Fatalf("first data FIFO byte = (0x%02X, %v), want (0xAB, true)", v, ok)
	}
	if d.dataFIFO.Size() != dataSectorSize {
		t.Errorf("data FIFO size = %d, want %d", d.dataFIFO.Size(), dataSectorSize)
	}
}

func TestBFRDWithRawSectorIncludesHeader(t *testing.T) {
	d, _, _, _, _ := newTestDevice()
	d.mode = Mode(modeBitReadRawSector)
	d.sectorBuffer = make([]byte, SectorSize)
	d.sectorBuffer[sectorSyncSize] = 0xCD

	d.loadDataFIFO()

	v, ok := d.dataFIFO.Peek(0)
	if !ok || v != 0xCD {
		t.Fatalf("first data FIFO byte = (0x%02X, %v), want (0xCD, true)", v, ok)
	}
	if d.dataFIFO.Size() != SectorSize-sectorSyncSize {
		t.Errorf("data FIFO size = %d, want %d", d.dataFIFO.Size(), SectorSize-sectorSyncSize)
	}
}
