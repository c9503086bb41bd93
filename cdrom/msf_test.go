package cdrom

import "testing"

func TestMsfToLBARoundTrip(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	for lba := int32(-150); lba < 10000; lba += 37 {
		msf := MsfFromLBA(lba)
		assert(msf.ToLBA() == lba)
	}
}

func TestMsfToLBAKnownValues(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	// 00:02:00 is LBA 0, the first addressable data sector (spec.md §3).
	assert(Msf{Minute: 0, Second: 2, Frame: 0}.ToLBA() == 0)
	// 00:00:00 is the pregap, LBA -150.
	assert(Msf{Minute: 0, Second: 0, Frame: 0}.ToLBA() == -150)
}

func TestBCDRoundTrip(t *testing.T) {
	for d := uint8(0); d <= 99; d++ {
		b := DecimalToBCD(d)
		if !IsValidBCD(b) {
			t.Fatalf("DecimalToBCD(%d) = 0x%02X is not valid BCD", d, b)
		}
		if got := BCDToDecimal(b); got != d {
			t.Errorf("BCDToDecimal(DecimalToBCD(%d)) = %d", d, got)
		}
	}
}

func TestIsValidBCDRejectsNonDecimalNibbles(t *testing.T) {
	cases := []struct {
		b  uint8
		ok bool
	}{
		{0x00, true},
		{0x99, true},
		{0x9A, false},
		{0xA9, false},
		{0xFF, false},
	}
	for _, c := range cases {
		if got := IsValidBCD(c.b); got != c.ok {
			t.Errorf("IsValidBCD(0x%02X) = %v, want %v", c.b, got, c.ok)
		}
	}
}

func TestMsfFromBCDRejectsOutOfRange(t *testing.T) {
	if _, ok := MsfFromBCD(0x00, 0x60, 0x00); ok {
		t.Error("MsfFromBCD accepted second=60")
	}
	if _, ok := MsfFromBCD(0x00, 0x00, 0x75); ok {
		t.Error("MsfFromBCD accepted frame=75")
	}
	if _, ok := MsfFromBCD(0x0A, 0x00, 0x00); ok {
		t.Error("MsfFromBCD accepted a non-BCD minute nibble")
	}
	if _, ok := MsfFromBCD(0x12, 0x34, 0x56); !ok {
		t.Error("MsfFromBCD rejected a valid position")
	}
}
