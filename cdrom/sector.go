package cdrom

// C5: the sector pipeline. Classifies each freshly read raw sector as
// data, XA-audio, or CDDA, and routes it to the CPU-visible data path or
// the audio path per spec.md §4.5.

const (
	// SectorSize is the raw size of one CD sector (spec.md §3).
	SectorSize = 2352
	// sectorSyncSize is the length of the 12-byte sync pattern at the
	// front of every sector.
	sectorSyncSize = 12
	// sectorHeaderSize is the 4-byte minute/second/frame/mode header
	// immediately following the sync pattern.
	sectorHeaderSize = 4
	// sectorSubheaderSize is the 8-byte XA subheader (file, channel,
	// submode, coding info, duplicated) following the header on mode 2
	// sectors.
	sectorSubheaderSize = 8
	// dataSectorSize is the Mode 1 / Mode 2 Form 1 payload size the data
	// FIFO is loaded with when read_raw_sector is clear.
	dataSectorSize = 2048
)

// SectorHeader is the 4-byte block at offset 12 of every sector.
type SectorHeader struct {
	Minute, Second, Frame, Mode uint8
}

// Subheader is the 8-byte XA subheader at offset 16 of a Mode 2 sector
// (file/channel/submode/codinginfo, duplicated for redundancy — the
// device keeps only the first copy).
type Subheader struct {
	File       uint8
	Channel    uint8
	Submode    SubmodeByte
	CodingInfo CodingInfo
}

// SubmodeByte bits of interest per spec.md §3: realtime (bit 6), audio
// (bit 2), eof (bit 7), plus form2 (bit 5) used to tell Form 1 from
// Form 2.
type SubmodeByte uint8

const (
	submodeBitAudio    = 1 << 2
	submodeBitForm2    = 1 << 5
	submodeBitRealTime = 1 << 6
	submodeBitEOF      = 1 << 7
)

func (s SubmodeByte) Audio() bool    { return uint8(s)&submodeBitAudio != 0 }
func (s SubmodeByte) Form2() bool    { return uint8(s)&submodeBitForm2 != 0 }
func (s SubmodeByte) RealTime() bool { return uint8(s)&submodeBitRealTime != 0 }
func (s SubmodeByte) EOF() bool      { return uint8(s)&submodeBitEOF != 0 }

// CodingInfo is the XA coding-information byte: stereo-ness and sample
// rate of the embedded ADPCM stream.
type CodingInfo uint8

const (
	codingBitStereo     = 1 << 0
	codingBitSampleRate = 1 << 2
)

func (c CodingInfo) IsStereo() bool         { return uint8(c)&codingBitStereo != 0 }
func (c CodingInfo) IsHalfSampleRate() bool { return uint8(c)&codingBitSampleRate != 0 }

func parseSectorHeader(sector []byte) SectorHeader {
	h := sector[sectorSyncSize : sectorSyncSize+sectorHeaderSize]
	return SectorHeader{Minute: h[0], Second: h[1], Frame: h[2], Mode: h[3]}
}

func parseSubheader(sector []byte) Subheader {
	s := sector[sectorSyncSize+sectorHeaderSize : sectorSyncSize+sectorHeaderSize+sectorSubheaderSize]
	return Subheader{File: s[0], Channel: s[1], Submode: SubmodeByte(s[2]), CodingInfo: CodingInfo(s[3])}
}

// processDataSector implements spec.md §4.5 steps 1-4 for a sector read
// while mode.reading is active (as opposed to CDDA playback, handled by
// processCDDASector in cdda.go). It updates the device's last-sector
// header/subheader, optionally routes the payload to the XA pipeline,
// and otherwise delivers it to the CPU via the async FIFO + INT1.
func (d *Device) processDataSector() {
	d.lastSectorHeader = parseSectorHeader(d.sectorBuffer)
	d.lastSectorSubheader = parseSubheader(d.sectorBuffer)

	passToCPU := true

	if d.mode.XAEnable() && d.lastSectorHeader.Mode == 2 {
		sh := d.lastSectorSubheader
		if sh.Submode.RealTime() && sh.Submode.Audio() {
			if d.mode.XAFilter() && (sh.File != d.filterFile || sh.Channel != d.filterChannel) {
				debugf("skipping XA sector due to filter mismatch (want %d/%d got %d/%d)",
					d.filterFile, d.filterChannel, sh.File, sh.Channel)
			} else {
				d.processXASector()
			}
			// Audio+realtime sectors never reach the CPU.
			d.sectorBuffer = d.sectorBuffer[:0]
			passToCPU = false
		}

		if sh.Submode.EOF() {
			debugf("end of CD-XA file")
		}
	}

	if passToCPU {
		d.asyncResponse.Push(uint8(d.secondaryStatus))
		d.setAsyncInterrupt(intSectorReady)
		d.updateStatusByte()
	}
}

// processXASector decodes the current sector buffer's XA-ADPCM payload
// and feeds it to the resampler, unless muted — matching the original,
// which always decodes (to keep ADPCM prediction history correct across
// sectors) but skips the resample/mix step entirely while muted.
func (d *Device) processXASector() {
	sh := d.lastSectorSubheader
	payload := d.sectorBuffer[sectorSyncSize+sectorHeaderSize+sectorSubheaderSize:]

	samples := d.xaDecoder.DecodeXaSector(payload, sh.CodingInfo.IsStereo(), &d.xa.lastSamples)

	if d.muted || d.adpcmMuted {
		return
	}
	d.xa.feed(samples, sh.CodingInfo.IsStereo(), sh.CodingInfo.IsHalfSampleRate(), d.cdAudioVolumeMatrix, d.audioSink)
}

// processCDDASector mixes the current sector buffer as raw CDDA audio.
func (d *Device) processCDDASectorBuffer() {
	processCDDASector(d.sectorBuffer, d.cdAudioVolumeMatrix, d.muted, d.audioSink)
	if d.mode.ReportAudio() {
		warnf("mode.report_audio is not implemented")
	}
	d.sectorBuffer = d.sectorBuffer[:0]
}

// loadDataFIFO implements the BFRD request-register side effect: copies
// the sector buffer into the data FIFO, skipping the sync pattern and,
// unless read_raw_sector is set, the header+subheader too.
func (d *Device) loadDataFIFO() {
	if len(d.sectorBuffer) == 0 {
		warnf("BFRD requested with an empty sector buffer")
		return
	}

	if d.mode.ReadRawSector() {
		d.dataFIFO.PushRange(d.sectorBuffer[sectorSyncSize:])
	} else {
		d.dataFIFO.PushRange(d.sectorBuffer[sectorSyncSize+sectorHeaderSize+sectorSubheaderSize:][:dataSectorSize])
	}

	d.sectorBuffer = d.sectorBuffer[:0]
}
