package cdrom

import "fmt"

// Msf is a binary disc position: minute, second, frame, stored here as
// plain decimal values (0-99, 0-59, 0-74). Parameters arrive from the
// host BCD-encoded; callers decode with BCDToDecimal before constructing
// an Msf and encode with DecimalToBCD before pushing one back onto the
// wire — the FSM itself never touches BCD directly.
type Msf struct {
	Minute uint8
	Second uint8
	Frame  uint8
}

const (
	framesPerSecond = 75
	secondsPerMSF   = 60
	lbaPregapFrames = 150
)

func (m Msf) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", m.Minute, m.Second, m.Frame)
}

// ToLBA converts to a 0-based sector index: ((m*60)+s)*75+f-150.
func (m Msf) ToLBA() int32 {
	total := (int32(m.Minute)*secondsPerMSF+int32(m.Second))*framesPerSecond + int32(m.Frame)
	return total - lbaPregapFrames
}

// MsfFromLBA is the inverse of ToLBA.
func MsfFromLBA(lba int32) Msf {
	total := lba + lbaPregapFrames
	m := total / (secondsPerMSF * framesPerSecond)
	rem := total % (secondsPerMSF * framesPerSecond)
	s := rem / framesPerSecond
	f := rem % framesPerSecond
	return Msf{Minute: uint8(m), Second: uint8(s), Frame: uint8(f)}
}

// Equal reports whether two positions are the same.
func (m Msf) Equal(other Msf) bool {
	return m.Minute == other.Minute && m.Second == other.Second && m.Frame == other.Frame
}

// IsValidBCD reports whether b's high and low nibbles are both valid
// decimal digits (0-9).
func IsValidBCD(b uint8) bool {
	return (b&0x0f) <= 9 && (b>>4) <= 9
}

// BCDToDecimal decodes a binary-coded decimal byte (high nibble tens, low
// nibble units) into its decimal value. The result is only meaningful if
// IsValidBCD(b) is true; callers on the guest-input path must check that
// first and raise the canonical "bad parameter" error instead of trusting
// this blindly.
func BCDToDecimal(b uint8) uint8 {
	return (b>>4)*10 + (b & 0x0f)
}

// DecimalToBCD is the inverse of BCDToDecimal for d in [0, 99].
func DecimalToBCD(d uint8) uint8 {
	return ((d / 10) << 4) | (d % 10)
}

// MsfFromBCD decodes three raw BCD parameter bytes into an Msf. ok is
// false if any byte is not valid BCD or the resulting field is out of
// range (m > 99, s >= 60, f >= 75).
func MsfFromBCD(m, s, f uint8) (Msf, bool) {
	if !IsValidBCD(m) || !IsValidBCD(s) || !IsValidBCD(f) {
		return Msf{}, false
	}
	msf := Msf{Minute: BCDToDecimal(m), Second: BCDToDecimal(s), Frame: BCDToDecimal(f)}
	if msf.Second >= secondsPerMSF || msf.Frame >= framesPerSecond {
		return Msf{}, false
	}
	return msf, true
}
