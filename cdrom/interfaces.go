// Package cdrom models the CD-ROM controller of a PS1-class console: the
// command/response FSM, the seek/read motion FSM, the XA-ADPCM/CDDA audio
// path, and the bit-exact MMIO registers the host CPU pokes. Everything
// outside the controller itself — the disc image, the DMA engine, the
// interrupt controller, the audio mixer, and the scheduler — is a
// collaborator reached only through the interfaces in this file.
package cdrom

// MediaSource is the disc drive. Implementations own their own file
// handles; the device never concerns itself with how a sector is fetched,
// only that ReadSector returns synchronously.
type MediaSource interface {
	// Seek positions the drive at msf. Returns false if the position is
	// out of range.
	Seek(msf Msf) bool
	// ReadSector reads one raw 2352-byte sector at the drive's current
	// position and advances the position by one sector.
	ReadSector(out []byte) error
	// PositionOnDisc is the drive's current absolute LBA.
	PositionOnDisc() int32
	// PositionInTrack is the drive's LBA relative to the start of the
	// current track.
	PositionInTrack() int32
	// TrackNumber is the 1-based index of the track containing the
	// drive's current position.
	TrackNumber() uint8
	// TrackCount is the number of tracks on the disc.
	TrackCount() uint8
	// TrackStartMSF returns the starting position of the given 1-based
	// track number.
	TrackStartMSF(track uint8) Msf
	// LBACount is the total number of sectors on the disc.
	LBACount() int32
	// FileName is the path the image was opened from, used only for
	// save-state round-tripping.
	FileName() string
}

// DmaBus receives the data-request line level from the controller.
type DmaBus interface {
	SetRequest(asserted bool)
}

// IrqSink receives edge-triggered interrupt requests on a single line.
type IrqSink interface {
	Request()
}

// AudioSink accepts decoded stereo 16-bit PCM samples at the fixed mixer
// rate (44100 Hz).
type AudioSink interface {
	PushSample(left, right int16)
}

// TickSource lets the device synchronize against the external scheduler
// and request a wakeup after a given number of ticks.
type TickSource interface {
	// Synchronize flushes any ticks the scheduler owes the device before
	// it are applied immediately rather than deferred, used at points
	// where the device must observe its own side effects synchronously
	// (e.g. before rearming a delay from inside ExecuteCommand).
	Synchronize()
	// SetDowncount requests a wakeup after at most the given number of
	// ticks.
	SetDowncount(ticks int32)
}

// XaDecoder decodes one sector's worth of CD-XA ADPCM data into signed
// 16-bit PCM. It is treated as a pure function: given the raw XA payload
// and the per-channel decoder history (`lastSamples`, updated in place),
// it returns planar (if stereo) or mono samples. The concrete ADPCM
// decoding algorithm is out of scope for this repository.
type XaDecoder interface {
	DecodeXaSector(payload []byte, stereo bool, lastSamples *[2][2]int16) []int16
}
