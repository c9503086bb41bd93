package cdrom

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// TestSaveStateRoundTrip is the "round trips" property from spec.md §8:
// serialize-then-restore with no intervening activity yields a state
// equal in every observable field to the original, including FIFO
// contents and the XA ring buffers.
func TestSaveStateRoundTrip(t *testing.T) {
	d, _, _, _, _ := newTestDevice()
	d.SetMedia(newFakeMedia(5000))
	d.media.Seek(MsfFromLBA(1234))

	d.mode = Mode(modeBitXAEnable | modeBitDoubleSpeed)
	d.secondaryStatus.SetMotorOn(true)
	d.secondaryStatus.SetReading(true)
	d.interruptMask = 0x1F
	d.filterFile = 3
	d.filterChannel = 9
	d.muted = true
	d.cdAudioVolumeMatrix = VolumeMatrix{{0x11, 0x22}, {0x33, 0x44}}
	d.params.PushRange([]byte{1, 2, 3})
	d.response.PushRange([]byte{9, 8, 7, 6})
	d.setlocPosition = MsfFromLBA(1234)
	d.setlocPending = true
	d.readOrSeekRemainingTicks = 42
	d.lastSectorHeader = SectorHeader{Minute: 0x01, Second: 0x02, Frame: 0x03, Mode: 2}
	d.xa.ring[0][5] = -1234
	d.xa.ring[1][7] = 5678
	d.xa.p = 11
	d.xa.sixstep = 3
	d.xa.lastSamples[0][1] = 999

	var buf bytes.Buffer
	if err := d.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	restored, _, _, _, _ := newTestDevice()
	openMedia := func(fileName string, lba int32) MediaSource {
		m := newFakeMedia(5000)
		m.pos = lba
		return m
	}
	if err := restored.LoadState(bytes.NewReader(buf.Bytes()), openMedia); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if restored.mode != d.mode {
		t.Errorf("mode = 0x%02X, want 0x%02X", restored.mode, d.mode)
	}
	if restored.secondaryStatus != d.secondaryStatus {
		t.Errorf("secondaryStatus = 0x%02X, want 0x%02X", restored.secondaryStatus, d.secondaryStatus)
	}
	if restored.interruptMask != d.interruptMask {
		t.Errorf("interruptMask = 0x%02X, want 0x%02X", restored.interruptMask, d.interruptMask)
	}
	if restored.filterFile != d.filterFile || restored.filterChannel != d.filterChannel {
		t.Errorf("filter = (%d,%d), want (%d,%d)", restored.filterFile, restored.filterChannel, d.filterFile, d.filterChannel)
	}
	if restored.muted != d.muted {
		t.Error("muted flag not preserved")
	}
	if restored.cdAudioVolumeMatrix != d.cdAudioVolumeMatrix {
		t.Errorf("volume matrix = %v, want %v", restored.cdAudioVolumeMatrix, d.cdAudioVolumeMatrix)
	}
	if restored.params.Size() != 3 {
		t.Errorf("params FIFO size = %d, want 3", restored.params.Size())
	}
	for i, want := range []byte{1, 2, 3} {
		v, _ := restored.params.Peek(i)
		if v != want {
			t.Errorf("params[%d] = %d, want %d", i, v, want)
		}
	}
	if restored.response.Size() != 4 {
		t.Errorf("response FIFO size = %d, want 4", restored.response.Size())
	}
	if !restored.setlocPosition.Equal(d.setlocPosition) {
		t.Errorf("setlocPosition = %s, want %s", restored.setlocPosition, d.setlocPosition)
	}
	if restored.setlocPending != d.setlocPending {
		t.Error("setlocPending not preserved")
	}
	if restored.readOrSeekRemainingTicks != d.readOrSeekRemainingTicks {
		t.Errorf("readOrSeekRemainingTicks = %d, want %d", restored.readOrSeekRemainingTicks, d.readOrSeekRemainingTicks)
	}
	if restored.lastSectorHeader != d.lastSectorHeader {
		t.Errorf("lastSectorHeader = %+v, want %+v", restored.lastSectorHeader, d.lastSectorHeader)
	}
	if restored.xa.ring[0][5] != -1234 || restored.xa.ring[1][7] != 5678 {
		t.Error("XA ring buffer contents not preserved")
	}
	if restored.xa.p != 11 || restored.xa.sixstep != 3 {
		t.Errorf("XA cursor/phase = (%d,%d), want (11,3)", restored.xa.p, restored.xa.sixstep)
	}
	if restored.xa.lastSamples[0][1] != 999 {
		t.Error("XA decoder prediction history not preserved")
	}
	if restored.media == nil || restored.media.PositionOnDisc() != 1234 {
		t.Error("media not reopened at the saved position")
	}
}

// TestSaveStateFieldOrder pins down the exact byte layout spec.md §6
// lists (command, command_state, command_stage, both tick budgets,
// status/secondary/mode bytes, interrupt mask and flag, pending async,
// setloc position, seek position, setloc_pending, read_after_seek,
// play_after_seek, mute and ADPCM mute, filter file/channel, last-sector
// header and subheader bytes, both volume matrices, XA last samples, XA
// ring buffers, XA p and sixstep, the four FIFOs, the sector buffer,
// media filename, and media LBA), independently of LoadState — a
// reordering bug that LoadState happens to read back symmetrically would
// still pass TestSaveStateRoundTrip, but not this test.
func TestSaveStateFieldOrder(t *testing.T) {
	d, _, _, _, _ := newTestDevice()

	d.command = Command(0x01)
	d.commandState = StateWaitForIRQClear
	d.commandStage = 2
	d.commandRemainingTicks = 0x11111111
	d.readOrSeekRemainingTicks = 0x22222222
	d.index = 3
	d.secondaryStatus = SecondaryStatus(0x44)
	d.mode = Mode(0x55)
	d.interruptMask = 0x1F
	d.interruptFlag = 0x02
	d.pendingAsyncInterrupt = 0x66
	d.setlocPosition = Msf{Minute: 0x10, Second: 0x20, Frame: 0x30}
	d.seekPosition = Msf{Minute: 0x40, Second: 0x50, Frame: 0x60}
	d.setlocPending = true
	d.readAfterSeek = true
	d.playAfterSeek = false
	d.muted = true
	d.adpcmMuted = false
	d.filterFile = 0x77
	d.filterChannel = 0x88
	d.lastSectorHeader = SectorHeader{Minute: 0x01, Second: 0x02, Frame: 0x03, Mode: 0x04}
	d.lastSectorSubheader = Subheader{File: 0x05, Channel: 0x06, Submode: SubmodeByte(0x07), CodingInfo: CodingInfo(0x08)}
	d.cdAudioVolumeMatrix = VolumeMatrix{{0x11, 0x22}, {0x33, 0x44}}
	d.nextCdAudioVolumeMatrix = VolumeMatrix{{0x55, 0x66}, {0x77, 0x88}}
	d.xa.lastSamples = [2][2]int16{{100, 200}, {300, 400}}
	d.xa.ring[0][0] = 1000
	d.xa.ring[1][xaRingBufferSize-1] = 2000
	d.xa.p = 0x09
	d.xa.sixstep = 0x0A

	var buf bytes.Buffer
	if err := d.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	b := buf.Bytes()

	// offset, after the 4-byte version header.
	off := 4
	u8 := func(want byte) {
		if b[off] != want {
			t.Errorf("byte %d = 0x%02X, want 0x%02X", off, b[off], want)
		}
		off++
	}
	i32 := func(want int32) {
		if int32(binary.LittleEndian.Uint32(b[off:])) != want {
			t.Errorf("i32 at %d = %d, want %d", off, int32(binary.LittleEndian.Uint32(b[off:])), want)
		}
		off += 4
	}
	i16 := func(want int16) {
		if int16(binary.LittleEndian.Uint16(b[off:])) != want {
			t.Errorf("i16 at %d = %d, want %d", off, int16(binary.LittleEndian.Uint16(b[off:])), want)
		}
		off += 2
	}
	skip := func(n int) { off += n }

	u8(0x01)                      // command
	i32(int32(StateWaitForIRQClear)) // command_state
	i32(2)                         // command_stage
	i32(0x11111111)                // command tick budget
	i32(0x22222222)                // read/seek tick budget
	u8(3)                          // index (status)
	u8(0x44)                       // secondary status
	u8(0x55)                       // mode
	u8(0x1F)                       // interrupt mask
	u8(0x02)                       // interrupt flag
	u8(0x66)                       // pending async interrupt
	u8(0x10)                       // setloc position (M
	u8(0x20)                       //                  S
	u8(0x30)                       //                  F)
	u8(0x40)                       // seek position (M
	u8(0x50)                       //                S
	u8(0x60)                       //                F)
	u8(1) // setloc_pending
	u8(1) // read_after_seek
	u8(0) // play_after_seek
	u8(1) // muted
	u8(0) // adpcm_muted
	u8(0x77) // filter file
	u8(0x88) // filter channel
	u8(0x01) // last sector header M
	u8(0x02) //                    S
	u8(0x03) //                    F
	u8(0x04) //                    mode
	u8(0x05) // last sector subheader file
	u8(0x06) //                        channel
	u8(0x07) //                        submode
	u8(0x08) //                        coding info
	u8(0x11) // cd audio volume matrix [0][0]
	u8(0x22) //                        [0][1]
	u8(0x33) //                        [1][0]
	u8(0x44) //                        [1][1]
	u8(0x55) // next cd audio volume matrix [0][0]
	u8(0x66)
	u8(0x77)
	u8(0x88)
	i16(100) // xa last samples [0][0]
	i16(200) // [0][1]
	i16(300) // [1][0]
	i16(400) // [1][1]
	i16(1000) // xa ring [0][0]
	skip(2 * (xaRingBufferSize - 1)) // rest of channel 0's ring
	skip(2 * (xaRingBufferSize - 1)) // channel 1's ring up to the last slot
	i16(2000)                        // xa ring [1][xaRingBufferSize-1]
	u8(0x09)                         // xa.p
	u8(0x0A)                         // xa.sixstep
	i32(0) // params FIFO length (empty)
	i32(0) // response FIFO length
	i32(0) // async response FIFO length
	i32(0) // data FIFO length
	i32(0) // sector buffer length
	skip(SectorSize) // sector buffer storage
	i32(0) // media filename length (no media attached)
	i32(0) // media LBA

	if off != len(b) {
		t.Errorf("consumed %d bytes, state is %d bytes long", off, len(b))
	}
}

func TestLoadStateMissingMediaEjects(t *testing.T) {
	d, _, _, _, _ := newTestDevice()
	d.SetMedia(newFakeMedia(5000))
	d.setlocPosition = MsfFromLBA(10)

	var buf bytes.Buffer
	if err := d.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	restored, _, _, _, _ := newTestDevice()
	openMedia := func(fileName string, lba int32) MediaSource { return nil }
	if err := restored.LoadState(bytes.NewReader(buf.Bytes()), openMedia); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if restored.media != nil {
		t.Error("LoadState kept a MediaSource despite openMedia returning nil")
	}
	if !restored.secondaryStatus.ShellOpen() {
		t.Error("LoadState with missing media did not set shellOpen")
	}
}
