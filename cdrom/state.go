package cdrom

import (
	"encoding/binary"
	"fmt"
	"io"
)

// C8: save states. Fields are written and read in a fixed order with
// encoding/binary, mirroring the original's DoState rather than a
// reflective/generic encoder — spec.md §6 requires the layout to be
// exact, and a hand-written stream is the only way to guarantee that
// across a refactor of the Device struct.

const stateVersion uint32 = 1

// SaveState writes the device's full state to w, in the order spec.md §6
// lists: command, command_state, command_stage, both tick budgets,
// status/secondary/mode bytes, interrupt mask and flag, pending async,
// setloc position, seek position, setloc_pending, read_after_seek,
// play_after_seek, mute and ADPCM mute, filter file/channel, last-sector
// header and subheader bytes, both volume matrices, XA last samples, XA
// ring buffers, XA p and sixstep, the four FIFOs, the sector buffer,
// media filename, and media LBA — matching the original's DoState field
// order exactly (cdrom.cpp:81-121).
func (d *Device) SaveState(w io.Writer) error {
	bw := &byteWriter{w: w}

	bw.u32(stateVersion)

	bw.u8(uint8(d.command))
	bw.i32(int32(d.commandState))
	bw.i32(int32(d.commandStage))
	bw.i32(d.commandRemainingTicks)
	bw.i32(d.readOrSeekRemainingTicks)

	bw.u8(d.index)
	bw.u8(uint8(d.secondaryStatus))
	bw.u8(uint8(d.mode))
	bw.u8(d.interruptMask)
	bw.u8(d.interruptFlag)

	bw.u8(d.pendingAsyncInterrupt)

	bw.msf(d.setlocPosition)
	bw.msf(d.seekPosition)
	bw.u8(boolToByte(d.setlocPending))
	bw.u8(boolToByte(d.readAfterSeek))
	bw.u8(boolToByte(d.playAfterSeek))

	bw.u8(boolToByte(d.muted))
	bw.u8(boolToByte(d.adpcmMuted))
	bw.u8(d.filterFile)
	bw.u8(d.filterChannel)

	bw.u8(d.lastSectorHeader.Minute)
	bw.u8(d.lastSectorHeader.Second)
	bw.u8(d.lastSectorHeader.Frame)
	bw.u8(d.lastSectorHeader.Mode)
	bw.u8(d.lastSectorSubheader.File)
	bw.u8(d.lastSectorSubheader.Channel)
	bw.u8(uint8(d.lastSectorSubheader.Submode))
	bw.u8(uint8(d.lastSectorSubheader.CodingInfo))

	bw.volumeMatrix(d.cdAudioVolumeMatrix)
	bw.volumeMatrix(d.nextCdAudioVolumeMatrix)

	for ch := 0; ch < 2; ch++ {
		for i := 0; i < 2; i++ {
			bw.i16(d.xa.lastSamples[ch][i])
		}
	}
	for ch := 0; ch < 2; ch++ {
		for i := 0; i < xaRingBufferSize; i++ {
			bw.i16(d.xa.ring[ch][i])
		}
	}
	bw.u8(d.xa.p)
	bw.u8(d.xa.sixstep)

	bw.fifo(d.params)
	bw.fifo(d.response)
	bw.fifo(d.asyncResponse)
	bw.fifo(d.dataFIFO)

	bw.i32(int32(len(d.sectorBuffer)))
	bw.bytes(d.sectorBufferStorage[:])

	fileName := ""
	lba := int32(0)
	if d.media != nil {
		fileName = d.media.FileName()
		lba = d.media.PositionOnDisc()
	}
	bw.str(fileName)
	bw.i32(lba)

	return bw.err
}

// LoadState restores state written by SaveState. openMedia is called
// with the saved filename and LBA when the saved state had an open
// disc; it should return a MediaSource seeked to that position, or
// nil if the image can no longer be found (treated as an eject,
// matching the original's "state load with missing disc" fallback).
func (d *Device) LoadState(r io.Reader, openMedia func(fileName string, lba int32) MediaSource) error {
	br := &byteReader{r: r}

	version := br.u32()
	if version != stateVersion {
		return fmt.Errorf("cdrom: unsupported save state version %d", version)
	}

	d.command = Command(br.u8())
	d.commandState = CommandState(br.i32())
	d.commandStage = int(br.i32())
	d.commandRemainingTicks = br.i32()
	d.readOrSeekRemainingTicks = br.i32()

	d.index = br.u8()
	d.secondaryStatus = SecondaryStatus(br.u8())
	d.mode = Mode(br.u8())
	d.interruptMask = br.u8()
	d.interruptFlag = br.u8()

	d.pendingAsyncInterrupt = br.u8()

	d.setlocPosition = br.msf()
	d.seekPosition = br.msf()
	d.setlocPending = byteToBool(br.u8())
	d.readAfterSeek = byteToBool(br.u8())
	d.playAfterSeek = byteToBool(br.u8())

	d.muted = byteToBool(br.u8())
	d.adpcmMuted = byteToBool(br.u8())
	d.filterFile = br.u8()
	d.filterChannel = br.u8()

	d.lastSectorHeader = SectorHeader{
		Minute: br.u8(), Second: br.u8(), Frame: br.u8(), Mode: br.u8(),
	}
	d.lastSectorSubheader = Subheader{
		File: br.u8(), Channel: br.u8(),
		Submode:    SubmodeByte(br.u8()),
		CodingInfo: CodingInfo(br.u8()),
	}

	d.cdAudioVolumeMatrix = br.volumeMatrix()
	d.nextCdAudioVolumeMatrix = br.volumeMatrix()

	for ch := 0; ch < 2; ch++ {
		for i := 0; i < 2; i++ {
			d.xa.lastSamples[ch][i] = br.i16()
		}
	}
	for ch := 0; ch < 2; ch++ {
		for i := 0; i < xaRingBufferSize; i++ {
			d.xa.ring[ch][i] = br.i16()
		}
	}
	d.xa.p = br.u8()
	d.xa.sixstep = br.u8()

	br.fifo(d.params)
	br.fifo(d.response)
	br.fifo(d.asyncResponse)
	br.fifo(d.dataFIFO)

	sectorBufLen := br.i32()
	br.bytesInto(d.sectorBufferStorage[:])
	if sectorBufLen > 0 {
		d.sectorBuffer = d.sectorBufferStorage[:sectorBufLen]
	} else {
		d.sectorBuffer = d.sectorBufferStorage[:0]
	}

	fileName := br.str()
	lba := br.i32()
	d.media = nil
	if fileName != "" {
		if br.err == nil && openMedia != nil {
			d.media = openMedia(fileName, lba)
		}
		if d.media == nil {
			warnf("save state referenced disc %q, which could not be reopened; continuing with the drive empty", fileName)
			d.secondaryStatus.SetShellOpen(true)
		}
	}

	return br.err
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
func byteToBool(v uint8) bool { return v != 0 }

// byteWriter/byteReader are thin encoding/binary helpers that latch the
// first error encountered and make every subsequent call a no-op, so
// SaveState/LoadState read as a flat, linear field list instead of an
// if-err-!=-nil staircase.

type byteWriter struct {
	w   io.Writer
	err error
}

func (bw *byteWriter) u8(v uint8) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write([]byte{v})
}
func (bw *byteWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, bw.err = bw.w.Write(buf[:])
}
func (bw *byteWriter) i32(v int32) { bw.u32(uint32(v)) }
func (bw *byteWriter) i16(v int16) {
	if bw.err != nil {
		return
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	_, bw.err = bw.w.Write(buf[:])
}
func (bw *byteWriter) bytes(v []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(v)
}
func (bw *byteWriter) str(s string) {
	bw.i32(int32(len(s)))
	bw.bytes([]byte(s))
}
func (bw *byteWriter) msf(m Msf) {
	bw.u8(m.Minute)
	bw.u8(m.Second)
	bw.u8(m.Frame)
}
func (bw *byteWriter) volumeMatrix(v VolumeMatrix) {
	bw.u8(v[0][0])
	bw.u8(v[0][1])
	bw.u8(v[1][0])
	bw.u8(v[1][1])
}
func (bw *byteWriter) fifo(f *fifo) {
	bw.i32(int32(f.Size()))
	tmp := make([]byte, f.Size())
	for i := range tmp {
		tmp[i], _ = f.Peek(i)
	}
	bw.bytes(tmp)
}

type byteReader struct {
	r   io.Reader
	err error
}

func (br *byteReader) u8() uint8 {
	if br.err != nil {
		return 0
	}
	var buf [1]byte
	_, br.err = io.ReadFull(br.r, buf[:])
	return buf[0]
}
func (br *byteReader) u32() uint32 {
	if br.err != nil {
		return 0
	}
	var buf [4]byte
	_, br.err = io.ReadFull(br.r, buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}
func (br *byteReader) i32() int32 { return int32(br.u32()) }
func (br *byteReader) i16() int16 {
	if br.err != nil {
		return 0
	}
	var buf [2]byte
	_, br.err = io.ReadFull(br.r, buf[:])
	return int16(binary.LittleEndian.Uint16(buf[:]))
}
func (br *byteReader) bytesInto(out []byte) {
	if br.err != nil {
		return
	}
	_, br.err = io.ReadFull(br.r, out)
}
func (br *byteReader) str() string {
	n := br.i32()
	if br.err != nil || n < 0 {
		return ""
	}
	buf := make([]byte, n)
	br.bytesInto(buf)
	return string(buf)
}
func (br *byteReader) msf() Msf {
	return Msf{Minute: br.u8(), Second: br.u8(), Frame: br.u8()}
}
func (br *byteReader) volumeMatrix() VolumeMatrix {
	return VolumeMatrix{
		{br.u8(), br.u8()},
		{br.u8(), br.u8()},
	}
}
func (br *byteReader) fifo(f *fifo) {
	n := br.i32()
	f.Clear()
	if br.err != nil || n < 0 {
		return
	}
	tmp := make([]byte, n)
	br.bytesInto(tmp)
	f.PushRange(tmp)
}
