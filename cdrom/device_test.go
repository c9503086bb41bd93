package cdrom

import "testing"

// Fakes for the collaborator interfaces (interfaces.go), shared by every
// test file in this package.

type fakeMedia struct {
	pos      int32
	lbaCount int32
}

func newFakeMedia(lbaCount int32) *fakeMedia {
	return &fakeMedia{lbaCount: lbaCount}
}

func (m *fakeMedia) Seek(msf Msf) bool {
	lba := msf.ToLBA()
	if lba < 0 || lba >= m.lbaCount {
		return false
	}
	m.pos = lba
	return true
}

func (m *fakeMedia) ReadSector(out []byte) error {
	for i := range out {
		out[i] = 0
	}
	msf := MsfFromLBA(m.pos)
	out[sectorSyncSize+0] = DecimalToBCD(msf.Minute)
	out[sectorSyncSize+1] = DecimalToBCD(msf.Second)
	out[sectorSyncSize+2] = DecimalToBCD(msf.Frame)
	out[sectorSyncSize+3] = 1 // Mode 1: plain data, no XA subheader semantics.
	m.pos++
	return nil
}

func (m *fakeMedia) PositionOnDisc() int32    { return m.pos }
func (m *fakeMedia) PositionInTrack() int32   { return m.pos }
func (m *fakeMedia) TrackNumber() uint8       { return 1 }
func (m *fakeMedia) TrackCount() uint8        { return 1 }
func (m *fakeMedia) TrackStartMSF(uint8) Msf  { return MsfFromLBA(0) }
func (m *fakeMedia) LBACount() int32          { return m.lbaCount }
func (m *fakeMedia) FileName() string         { return "fake.bin" }

type fakeTick struct {
	downcount int32
}

func (f *fakeTick) Synchronize()          {}
func (f *fakeTick) SetDowncount(t int32)  { f.downcount = t }

type fakeDma struct{ asserted bool }

func (f *fakeDma) SetRequest(asserted bool) { f.asserted = asserted }

type fakeIrq struct{ count int }

func (f *fakeIrq) Request() { f.count++ }

type fakeAudio struct {
	left, right []int16
}

func (f *fakeAudio) PushSample(left, right int16) {
	f.left = append(f.left, left)
	f.right = append(f.right, right)
}

type fakeXaDecoder struct{}

func (fakeXaDecoder) DecodeXaSector(payload []byte, stereo bool, lastSamples *[2][2]int16) []int16 {
	return make([]int16, len(payload)/2)
}

func newTestDevice() (*Device, *fakeTick, *fakeDma, *fakeIrq, *fakeAudio) {
	tick := &fakeTick{}
	dma := &fakeDma{}
	irq := &fakeIrq{}
	audio := &fakeAudio{}
	d := NewDevice(RegionSCEA, tick, dma, irq, audio, fakeXaDecoder{})
	return d, tick, dma, irq, audio
}

// runCommand writes opcode to the command register, drives Execute until
// the ACK delay elapses, and returns. It does not wait out any further
// staged delays.
func runCommand(d *Device, opcode Command, params ...byte) {
	d.Store(0, 0) // select index 0
	for _, p := range params {
		d.Store(2, p)
	}
	d.Store(1, uint8(opcode))
	d.Execute(ackDelayForCommand(opcode))
}

// ackIRQ simulates the host writing 0x1F to the interrupt-flag register,
// acknowledging whatever is currently latched.
func ackIRQ(d *Device) {
	d.Store(0, 1)
	d.Store(3, 0x1F)
}

// TestColdResetThenGetstat is boundary scenario 1 (spec.md §8).
func TestColdResetThenGetstat(t *testing.T) {
	d, _, _, _, _ := newTestDevice()

	runCommand(d, CmdGetstat)

	v, ok := d.response.Pop()
	if !ok {
		t.Fatal("response FIFO empty after Getstat")
	}
	if v != 0 {
		t.Errorf("Getstat response = 0x%02X, want 0x00 (motor off, no media)", v)
	}
	if d.response.Size() != 0 {
		t.Errorf("response FIFO has %d extra bytes", d.response.Size())
	}
	if d.interruptFlag != intACK {
		t.Errorf("interrupt flag = %d, want %d (INT3)", d.interruptFlag, intACK)
	}
}

// TestGetIDNoDisc is boundary scenario 2.
func TestGetIDNoDisc(t *testing.T) {
	d, _, _, _, _ := newTestDevice()

	runCommand(d, CmdGetID)

	want := []byte{0x11, 0x80}
	for i, w := range want {
		v, ok := d.response.Pop()
		if !ok || v != w {
			t.Fatalf("response[%d] = (0x%02X, %v), want 0x%02X", i, v, ok, w)
		}
	}
	if d.interruptFlag != intError {
		t.Errorf("interrupt flag = %d, want %d (INT5)", d.interruptFlag, intError)
	}
}

// TestGetIDWithMedia covers the with-media GetID path (spec.md §4.3):
// the host should read back the literal 8-byte {0x02,0x00,0x20,0x00,
// 'S','C','E',<region>} response, not a human-readable licensee string,
// and the response FIFO (16 bytes) must never need to evict any of it.
func TestGetIDWithMedia(t *testing.T) {
	d, _, _, _, _ := newTestDevice()
	d.SetMedia(newFakeMedia(1000))

	runCommand(d, CmdGetID)
	ackIRQ(d)
	d.Execute(18000)

	want := []byte{0x02, 0x00, 0x20, 0x00, 'S', 'C', 'E', 'A'}
	for i, w := range want {
		v, ok := d.response.Pop()
		if !ok || v != w {
			t.Fatalf("response[%d] = (0x%02X, %v), want 0x%02X", i, v, ok, w)
		}
	}
	if _, ok := d.response.Pop(); ok {
		t.Error("response FIFO has extra bytes beyond the 8-byte GetID response")
	}
	if d.interruptFlag != intComplete {
		t.Errorf("interrupt flag = %d, want %d (INT2)", d.interruptFlag, intComplete)
	}
}

// TestSetlocReadNFreshDisc is boundary scenario 3.
func TestSetlocReadNFreshDisc(t *testing.T) {
	d, _, _, _, _ := newTestDevice()
	d.SetMedia(newFakeMedia(1000))

	runCommand(d, CmdSetloc, DecimalToBCD(0), DecimalToBCD(2), DecimalToBCD(0))
	if !d.setlocPending {
		t.Fatal("setlocPending not set after Setloc")
	}
	ackIRQ(d)

	runCommand(d, CmdReadN)
	if d.setlocPending {
		t.Fatal("setlocPending still set once motion caught up to a position already there")
	}
	ackIRQ(d)

	d.Execute(d.ticksForRead())

	if d.pendingAsyncInterrupt != 0 {
		t.Fatalf("async interrupt 0x%02X not delivered (flag busy)", d.pendingAsyncInterrupt)
	}
	if d.interruptFlag != intSectorReady {
		t.Fatalf("interrupt flag = %d, want %d (INT1)", d.interruptFlag, intSectorReady)
	}

	h := d.lastSectorHeader
	if h.Minute != DecimalToBCD(0) || h.Second != DecimalToBCD(2) || h.Frame != DecimalToBCD(0) {
		t.Errorf("sector header MSF = %02X:%02X:%02X, want 00:02:00 BCD", h.Minute, h.Second, h.Frame)
	}
}

// TestPauseTickBudget is boundary scenario 4.
func TestPauseTickBudget(t *testing.T) {
	cases := []struct {
		name        string
		active      bool
		doubleSpeed bool
		want        int32
	}{
		{"idle", false, false, 7000},
		{"reading single speed", true, false, 1000000},
		{"reading double speed", true, true, 2000000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, _, _, _, _ := newTestDevice()
			if c.doubleSpeed {
				d.mode = Mode(modeBitDoubleSpeed)
			}
			if c.active {
				d.secondaryStatus.SetReading(true)
			}

			d.commandStage = 0
			d.cmdPause()

			if d.commandRemainingTicks != c.want {
				t.Errorf("commandRemainingTicks = %d, want %d", d.commandRemainingTicks, c.want)
			}
			if d.commandStage != 1 {
				t.Errorf("commandStage = %d, want 1", d.commandStage)
			}
		})
	}
}
