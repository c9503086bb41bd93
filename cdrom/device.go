package cdrom

// C1/C2: register plumbing and the Device struct that ties the command
// FSM (command.go), motion FSM (motion.go), and sector pipeline
// (sector.go, cdda.go, xa.go) together behind the four MMIO ports
// (spec.md §4.1/§4.2).

const (
	paramFIFOCapacity    = 16
	responseFIFOCapacity = 16
	dataFIFOCapacity     = SectorSize
)

// Region selects the GetID response string (spec.md §9).
type Region int

const (
	RegionSCEA Region = iota
	RegionSCEE
	RegionSCEI
)

// Device is the CD-ROM controller. It owns the FIFOs, registers, motion
// state, and XA resampler state, and is driven by Load/Store from the
// bus side and Execute from the scheduler side.
type Device struct {
	region Region
	media  MediaSource

	tickSource TickSource
	dmaBus     DmaBus
	irqSink    IrqSink
	audioSink  AudioSink
	xaDecoder  XaDecoder

	// Register file.
	index           uint8
	secondaryStatus SecondaryStatus
	mode            Mode
	interruptMask   uint8
	interruptFlag   uint8

	filterFile    uint8
	filterChannel uint8

	cdAudioVolumeMatrix     VolumeMatrix
	nextCdAudioVolumeMatrix VolumeMatrix

	muted      bool
	adpcmMuted bool

	// FIFOs.
	params        *fifo
	response      *fifo
	asyncResponse *fifo
	dataFIFO      *fifo

	// Command FSM (command.go).
	commandState          CommandState
	command               Command
	commandStage          int
	commandRemainingTicks int32

	// Motion FSM (motion.go).
	setlocPosition           Msf
	seekPosition             Msf
	setlocPending            bool
	readAfterSeek            bool
	playAfterSeek            bool
	readOrSeekRemainingTicks int32

	// Single-slot async interrupt (spec.md §4.3's async-completion note).
	pendingAsyncInterrupt byte

	lastSectorHeader    SectorHeader
	lastSectorSubheader Subheader

	sectorBuffer        []byte
	sectorBufferStorage [SectorSize]byte

	xa XaState
}

// NewDevice builds a Device with its FIFOs allocated and registers at
// their post-Reset defaults. The caller wires tickSource/dmaBus/irqSink
// /audioSink/xaDecoder before use; media may be attached later via
// SetMedia.
func NewDevice(region Region, tickSource TickSource, dmaBus DmaBus, irqSink IrqSink, audioSink AudioSink, xaDecoder XaDecoder) *Device {
	d := &Device{
		region:     region,
		tickSource: tickSource,
		dmaBus:     dmaBus,
		irqSink:    irqSink,
		audioSink:  audioSink,
		xaDecoder:  xaDecoder,

		params:        newFifo(paramFIFOCapacity),
		response:      newFifo(responseFIFOCapacity),
		asyncResponse: newFifo(responseFIFOCapacity),
		dataFIFO:      newFifo(dataFIFOCapacity),
	}
	d.Reset()
	return d
}

// Reset puts the device in its power-on state: motor off, no media
// activity, default volume matrix, all FIFOs empty.
func (d *Device) Reset() {
	d.secondaryStatus = 0
	d.mode = 0
	d.interruptMask = 0
	d.interruptFlag = 0
	d.pendingAsyncInterrupt = 0
	d.filterFile = 0
	d.filterChannel = 0
	d.muted = false
	d.adpcmMuted = false
	d.cdAudioVolumeMatrix = DefaultVolumeMatrix()
	d.nextCdAudioVolumeMatrix = DefaultVolumeMatrix()

	d.params.Clear()
	d.response.Clear()
	d.asyncResponse.Clear()
	d.dataFIFO.Clear()

	d.commandState = StateIdle
	d.command = 0
	d.commandStage = 0
	d.commandRemainingTicks = 0

	d.setlocPending = false
	d.readAfterSeek = false
	d.playAfterSeek = false
	d.readOrSeekRemainingTicks = 0

	d.sectorBuffer = d.sectorBufferStorage[:0]
	d.xa.reset()

	d.updateStatusByte()
}

// SoftReset implements the Init command's drive-side effects without
// touching the FIFOs or interrupt state that Init itself manages
// explicitly (command.go's cmdInit).
func (d *Device) SoftReset() {
	d.stopReading()
	d.setlocPending = false
	d.mode = 0
	d.xa.reset()
}

// SetMedia attaches or detaches (nil) the disc image.
func (d *Device) SetMedia(media MediaSource) {
	d.stopReading()
	d.media = media
	d.secondaryStatus.SetShellOpen(media == nil)
}

func (d *Device) HasMedia() bool { return d.media != nil }

// updateStatusByte recomputes the derived bits of the port-0 status
// register (FIFO emptiness/readiness) from current FIFO state.
func (d *Device) updateStatusByte() {
	if d.dmaBus != nil {
		d.dmaBus.SetRequest(!d.dataFIFO.IsEmpty())
	}
}

func (d *Device) statusByte() StatusByte {
	var s StatusByte
	s = StatusByte(setBit(uint8(s), statusBitIndex0, d.index&1 != 0))
	s = StatusByte(setBit(uint8(s), statusBitIndex1, d.index&2 != 0))
	s = StatusByte(setBit(uint8(s), statusBitADPBUSY, false))
	s = StatusByte(setBit(uint8(s), statusBitPRMEMPTY, d.params.IsEmpty()))
	s = StatusByte(setBit(uint8(s), statusBitPRMWRDY, !d.params.IsFull()))
	s = StatusByte(setBit(uint8(s), statusBitRSLRRDY, !d.response.IsEmpty()))
	s = StatusByte(setBit(uint8(s), statusBitDRQSTS, !d.dataFIFO.IsEmpty()))
	s = StatusByte(setBit(uint8(s), statusBitBUSYSTS, d.commandState != StateIdle))
	return s
}

// setInterrupt raises the synchronous command-FSM interrupt: sets the
// flag bits, requests an IRQ if unmasked, and — for ACK — advances the
// command FSM out of WaitForIRQClear once the CPU acknowledges it.
func (d *Device) setInterrupt(code byte) {
	if d.interruptFlag&interruptRegisterMask != 0 {
		warnf("interrupt flag overwritten before acknowledgement (0x%02X -> 0x%02X)", d.interruptFlag, code)
	}
	d.interruptFlag = code & interruptRegisterMask
	d.raiseIRQIfNeeded()
}

// setAsyncInterrupt implements the single-slot async buffering rule
// (spec.md §4.3): a newer async completion replaces an older
// undelivered one rather than queueing behind it.
func (d *Device) setAsyncInterrupt(code byte) {
	if d.pendingAsyncInterrupt != 0 {
		debugf("async interrupt 0x%02X superseded by 0x%02X", d.pendingAsyncInterrupt, code)
		d.response.Clear()
		d.response.PushRange(asyncToSync(d.asyncResponse))
	}
	d.pendingAsyncInterrupt = code
	d.deliverAsyncInterruptIfIdle()
}

func (d *Device) cancelAsyncInterrupt() {
	d.pendingAsyncInterrupt = 0
	d.asyncResponse.Clear()
}

// deliverAsyncInterruptIfIdle moves a pending async interrupt onto the
// live interrupt-flag register once it's free, matching the original's
// behavior of holding async completions until the sync side is clear.
func (d *Device) deliverAsyncInterruptIfIdle() {
	if d.pendingAsyncInterrupt == 0 || d.interruptFlag&interruptRegisterMask != 0 {
		return
	}
	d.response.Clear()
	d.response.PushRange(asyncToSync(d.asyncResponse))
	d.interruptFlag = d.pendingAsyncInterrupt & interruptRegisterMask
	d.pendingAsyncInterrupt = 0
	d.raiseIRQIfNeeded()
}

func asyncToSync(async *fifo) []byte {
	out := make([]byte, async.Size())
	async.PopRange(out)
	return out
}

func (d *Device) raiseIRQIfNeeded() {
	if d.interruptFlag&d.interruptMask != 0 && d.irqSink != nil {
		d.irqSink.Request()
	}
}

// Load implements a CPU read of one of the four MMIO ports, dispatched
// by index within the port per spec.md §4.2 / §9's [4][4] table.
func (d *Device) Load(port uint8) uint8 {
	switch port {
	case 0:
		return uint8(d.statusByte())
	case 1:
		v, _ := d.response.Pop()
		d.deliverAsyncInterruptIfIdle()
		return v
	case 2:
		v, _ := d.dataFIFO.Pop()
		return v
	case 3:
		switch d.index {
		case 1, 3:
			return d.interruptFlag | 0xE0
		default:
			return d.interruptMask | 0xE0
		}
	default:
		panicf("Load with invalid port %d", port)
	}
	return 0xFF
}

// Store implements a CPU write to one of the four MMIO ports.
func (d *Device) Store(port uint8, value uint8) {
	switch port {
	case 0:
		d.index = value & 0x03
		return
	case 1:
		switch d.index {
		case 0:
			d.handleCommandWrite(value)
		case 1:
			debugf("sound map data out write 0x%02X ignored", value)
		case 2:
			debugf("sound map coding info write 0x%02X ignored", value)
		case 3:
			d.nextCdAudioVolumeMatrix[1][1] = value
		}
		return
	case 2:
		switch d.index {
		case 0:
			if d.params.Push(value) {
				warnf("parameter FIFO overflowed, oldest byte dropped")
			}
		case 1:
			d.interruptMask = value & interruptRegisterMask
			d.raiseIRQIfNeeded()
		case 2:
			d.nextCdAudioVolumeMatrix[0][0] = value
		case 3:
			d.nextCdAudioVolumeMatrix[1][0] = value
		}
		return
	case 3:
		switch d.index {
		case 0:
			d.handleRequestRegisterWrite(value)
		case 1:
			d.interruptFlag &^= value & interruptRegisterMask
			if d.interruptFlag&interruptRegisterMask == 0 {
				d.deliverAsyncInterruptIfIdle()
				if d.commandState == StateWaitForIRQClear {
					d.commandState = StateWaitForExecute
					d.tickSource.Synchronize()
					d.tickSource.SetDowncount(d.commandRemainingTicks)
				}
			}
			if value&0x40 != 0 {
				d.params.Clear()
			}
		case 2:
			d.nextCdAudioVolumeMatrix[0][1] = value
		case 3:
			if value&0x20 != 0 {
				d.cdAudioVolumeMatrix = d.nextCdAudioVolumeMatrix
			}
		}
		return
	default:
		panicf("Store with invalid port %d", port)
	}
}

func (d *Device) handleCommandWrite(value uint8) {
	if d.commandState != StateIdle {
		warnf("command 0x%02X written while FSM busy (state=%d)", value, d.commandState)
	}
	d.beginCommand(Command(value))
}

// handleRequestRegisterWrite implements the request register: bit5
// (BFRD) loads the data FIFO from the sector buffer, bit6 (SMEN)
// requests sound-map data (not modeled, spec.md Non-goals).
func (d *Device) handleRequestRegisterWrite(value uint8) {
	if value&0x80 == 0 {
		d.dataFIFO.Clear()
		return
	}
	d.loadDataFIFO()
}

// Execute advances the command and motion FSMs by ticks system clocks,
// command FSM first per spec.md §5's stated ordering.
func (d *Device) Execute(ticks int32) {
	if d.commandState != StateIdle {
		d.commandRemainingTicks -= ticks
		if d.commandRemainingTicks <= 0 {
			switch d.commandState {
			case StateWaitForExecute:
				d.executeCommand()
			case StateWaitForIRQClear:
				// Parked until setInterrupt's ACK is acknowledged by the
				// CPU; re-armed by nextCommandStage, so nothing to do
				// here beyond keeping the budget from going further
				// negative.
				d.commandRemainingTicks = 0
			}
		}
	}

	if d.readOrSeekRemainingTicks > 0 {
		d.readOrSeekRemainingTicks -= ticks
		if d.readOrSeekRemainingTicks <= 0 {
			if d.secondaryStatus.Seeking() {
				d.doSeekComplete()
			} else {
				d.doSectorRead()
			}
		}
	}
}

func getIDResponse(region Region) []byte {
	regionChar := byte('A')
	switch region {
	case RegionSCEE:
		regionChar = 'E'
	case RegionSCEI:
		regionChar = 'I'
	}
	return []byte{0x02, 0x00, 0x20, 0x00, 'S', 'C', 'E', regionChar}
}
