package cdrom

// This file implements spec.md §3/§9's bitfield registers as single bytes
// with documented masks and explicit accessors, and the (port, index)
// dispatch table spec.md §9 calls for instead of a layered switch.

// StatusByte is port 0: the always-readable status register. Bits 0-1
// (Index) are the only writable bits; the rest are computed fresh by
// (*Device).updateStatusByte on every state change that could affect
// them, mirroring the original's UpdateStatusRegister.
type StatusByte uint8

const (
	statusBitIndex0  = 1 << 0
	statusBitIndex1  = 1 << 1
	statusBitADPBUSY = 1 << 2
	statusBitPRMEMPTY = 1 << 3
	statusBitPRMWRDY = 1 << 4
	statusBitRSLRRDY = 1 << 5
	statusBitDRQSTS  = 1 << 6
	statusBitBUSYSTS = 1 << 7
)

func (s StatusByte) Index() uint8 { return uint8(s) & 3 }

func setBit(b uint8, mask uint8, v bool) uint8 {
	if v {
		return b | mask
	}
	return b &^ mask
}

// SecondaryStatus is the response byte most commands echo back: error,
// motor_on, seek_error, id_error, shell_open, reading, seeking,
// playing_cdda, bit 0 through 7 respectively. At most one of
// {reading, seeking, playing_cdda} may be set — callers are responsible
// for clearing the other two before setting one.
type SecondaryStatus uint8

const (
	secStatusError     = 1 << 0
	secStatusMotorOn   = 1 << 1
	secStatusSeekError = 1 << 2
	secStatusIDError   = 1 << 3
	secStatusShellOpen = 1 << 4
	secStatusReading   = 1 << 5
	secStatusSeeking   = 1 << 6
	secStatusPlayingCDDA = 1 << 7
)

func (s SecondaryStatus) Error() bool       { return uint8(s)&secStatusError != 0 }
func (s SecondaryStatus) MotorOn() bool     { return uint8(s)&secStatusMotorOn != 0 }
func (s SecondaryStatus) SeekError() bool   { return uint8(s)&secStatusSeekError != 0 }
func (s SecondaryStatus) IDError() bool     { return uint8(s)&secStatusIDError != 0 }
func (s SecondaryStatus) ShellOpen() bool   { return uint8(s)&secStatusShellOpen != 0 }
func (s SecondaryStatus) Reading() bool     { return uint8(s)&secStatusReading != 0 }
func (s SecondaryStatus) Seeking() bool     { return uint8(s)&secStatusSeeking != 0 }
func (s SecondaryStatus) PlayingCDDA() bool { return uint8(s)&secStatusPlayingCDDA != 0 }

func (s *SecondaryStatus) SetError(v bool)     { *s = SecondaryStatus(setBit(uint8(*s), secStatusError, v)) }
func (s *SecondaryStatus) SetMotorOn(v bool)   { *s = SecondaryStatus(setBit(uint8(*s), secStatusMotorOn, v)) }
func (s *SecondaryStatus) SetSeekError(v bool) { *s = SecondaryStatus(setBit(uint8(*s), secStatusSeekError, v)) }
func (s *SecondaryStatus) SetIDError(v bool)   { *s = SecondaryStatus(setBit(uint8(*s), secStatusIDError, v)) }
func (s *SecondaryStatus) SetShellOpen(v bool) { *s = SecondaryStatus(setBit(uint8(*s), secStatusShellOpen, v)) }
func (s *SecondaryStatus) SetReading(v bool)   { *s = SecondaryStatus(setBit(uint8(*s), secStatusReading, v)) }
func (s *SecondaryStatus) SetSeeking(v bool)   { *s = SecondaryStatus(setBit(uint8(*s), secStatusSeeking, v)) }
func (s *SecondaryStatus) SetPlayingCDDA(v bool) {
	*s = SecondaryStatus(setBit(uint8(*s), secStatusPlayingCDDA, v))
}

// IsActive reports whether the drive is currently moving: reading,
// seeking, or playing CDDA.
func (s SecondaryStatus) IsActive() bool {
	return s.Reading() || s.Seeking() || s.PlayingCDDA()
}

// ClearMotion clears reading/seeking/playing_cdda, leaving everything
// else (motor, error bits) untouched.
func (s *SecondaryStatus) ClearMotion() {
	s.SetReading(false)
	s.SetSeeking(false)
	s.SetPlayingCDDA(false)
}

// Mode is the mode register (set by Setmode): cdda, auto_pause,
// report_audio, xa_filter, ignore_bit, read_raw_sector, xa_enable,
// double_speed, bit 0 through 7 respectively.
type Mode uint8

const (
	modeBitCDDA          = 1 << 0
	modeBitAutoPause     = 1 << 1
	modeBitReportAudio   = 1 << 2
	modeBitXAFilter      = 1 << 3
	modeBitIgnore        = 1 << 4
	modeBitReadRawSector = 1 << 5
	modeBitXAEnable      = 1 << 6
	modeBitDoubleSpeed   = 1 << 7
)

func (m Mode) CDDA() bool          { return uint8(m)&modeBitCDDA != 0 }
func (m Mode) AutoPause() bool     { return uint8(m)&modeBitAutoPause != 0 }
func (m Mode) ReportAudio() bool   { return uint8(m)&modeBitReportAudio != 0 }
func (m Mode) XAFilter() bool      { return uint8(m)&modeBitXAFilter != 0 }
func (m Mode) IgnoreBit() bool     { return uint8(m)&modeBitIgnore != 0 }
func (m Mode) ReadRawSector() bool { return uint8(m)&modeBitReadRawSector != 0 }
func (m Mode) XAEnable() bool      { return uint8(m)&modeBitXAEnable != 0 }
func (m Mode) DoubleSpeed() bool   { return uint8(m)&modeBitDoubleSpeed != 0 }

// interruptRegisterMask is the valid range of the 5-bit interrupt
// mask/flag registers; the upper 3 bits always read back as 1.
const interruptRegisterMask uint8 = 0x1f

// Interrupt flag codes (spec.md §3/§4).
const (
	intSectorReady byte = 1 // INT1: async sector-ready
	intComplete    byte = 2 // INT2: async completion
	intACK         byte = 3 // INT3: command ACK / synchronous success
	intError       byte = 5 // INT5: error
)

// VolumeMatrix is a 2x2 table of u8 gains, 0x80 representing unity.
// Index [out][in]: [0][0]=L->L, [0][1]=R->L, [1][0]=L->R, [1][1]=R->R.
type VolumeMatrix [2][2]uint8

// DefaultVolumeMatrix is the reset value: unity on the diagonal, silence
// cross-channel.
func DefaultVolumeMatrix() VolumeMatrix {
	return VolumeMatrix{{0x80, 0x00}, {0x00, 0x80}}
}
