package cdrom

// C3: the command FSM. Decodes opcodes written to port (1,0), stages
// multi-phase commands, and gates completion on IRQ acknowledgement
// (spec.md §4.3).

// CommandState is the two-phase command scheduling state, modeled as an
// explicit enum per spec.md §9 rather than the original's pair of plain
// integer fields.
type CommandState int

const (
	StateIdle CommandState = iota
	StateWaitForExecute
	StateWaitForIRQClear
)

// Command is a primary opcode written to port (1,0).
type Command uint8

const (
	CmdGetstat   Command = 0x01
	CmdSetloc    Command = 0x02
	CmdPlay      Command = 0x03
	CmdReadN     Command = 0x06
	CmdStop      Command = 0x08
	CmdPause     Command = 0x09
	CmdInit      Command = 0x0A
	CmdMute      Command = 0x0B
	CmdDemute    Command = 0x0C
	CmdSetfilter Command = 0x0D
	CmdSetmode   Command = 0x0E
	CmdGetlocL   Command = 0x10
	CmdGetlocP   Command = 0x11
	CmdGetTN     Command = 0x13
	CmdGetTD     Command = 0x14
	CmdSeekL     Command = 0x15
	CmdSeekP     Command = 0x16
	CmdTest      Command = 0x19
	CmdGetID     Command = 0x1A
	CmdReadS     Command = 0x1B
)

// ackDelayForCommand returns the tick budget between opcode receipt and
// ExecuteCommand: 60000 for Init, 4000 for everything else.
func ackDelayForCommand(cmd Command) int32 {
	if cmd == CmdInit {
		return 60000
	}
	return 4000
}

// beginCommand is invoked on a write to port (1,0) while the FSM is
// idle. It clears the response FIFO, arms the per-command ACK delay,
// and enters WaitForExecute (or runs immediately if the delay is zero).
func (d *Device) beginCommand(cmd Command) {
	d.response.Clear()
	d.tickSource.Synchronize()

	d.command = cmd
	d.commandStage = 0
	d.commandRemainingTicks = ackDelayForCommand(cmd)

	if d.commandRemainingTicks == 0 {
		d.executeCommand()
		return
	}
	d.commandState = StateWaitForExecute
	d.tickSource.SetDowncount(d.commandRemainingTicks)
	d.updateStatusByte()
}

// nextCommandStage arms a further delay and advances to stage+1. If
// waitForIRQ is true the FSM parks in WaitForIRQClear until the CPU
// acknowledges the interrupt raised by the current stage (normally the
// ACK just sent); otherwise it synchronizes and goes straight back to
// WaitForExecute, matching the original's NextCommandStage.
func (d *Device) nextCommandStage(waitForIRQ bool, delay int32) {
	d.commandState = StateWaitForIRQClear
	d.commandRemainingTicks = delay
	d.commandStage++
	d.updateStatusByte()

	if waitForIRQ {
		return
	}
	d.tickSource.Synchronize()
	d.commandState = StateWaitForExecute
	d.tickSource.SetDowncount(d.commandRemainingTicks)
	d.updateStatusByte()
}

// endCommand clears the parameter FIFO and returns the FSM to Idle.
func (d *Device) endCommand() {
	d.params.Clear()
	d.commandState = StateIdle
	d.command = 0
	d.commandStage = 0
	d.commandRemainingTicks = 0
	d.updateStatusByte()
}

func (d *Device) sendACKAndStat() {
	d.response.Push(uint8(d.secondaryStatus))
	d.setInterrupt(intACK)
}

func (d *Device) sendErrorResponse(reason DeviceError) {
	d.response.Push(uint8(d.secondaryStatus) | 0x01)
	d.response.Push(uint8(reason))
	d.setInterrupt(intError)
}

func (d *Device) sendAsyncErrorResponse(reason DeviceError) {
	d.asyncResponse.Push(uint8(d.secondaryStatus) | 0x01)
	d.asyncResponse.Push(uint8(reason))
	d.setAsyncInterrupt(intError)
}

// executeCommand dispatches on the current opcode and stage. Each
// branch is responsible for calling endCommand() or nextCommandStage()
// before returning.
func (d *Device) executeCommand() {
	switch d.command {
	case CmdGetstat:
		d.sendACKAndStat()
		d.endCommand()

	case CmdTest:
		sub, _ := d.params.Pop()
		d.executeTestCommand(sub)

	case CmdSetloc:
		d.cmdSetloc()

	case CmdPlay:
		d.cmdPlay()

	case CmdReadN, CmdReadS:
		d.cmdRead()

	case CmdStop:
		d.cmdStop()

	case CmdPause:
		d.cmdPause()

	case CmdInit:
		d.cmdInit()

	case CmdMute:
		d.muted = true
		d.sendACKAndStat()
		d.endCommand()

	case CmdDemute:
		d.muted = false
		d.sendACKAndStat()
		d.endCommand()

	case CmdSetfilter:
		file, _ := d.params.Peek(0)
		channel, _ := d.params.Peek(1)
		d.filterFile = file
		d.filterChannel = channel
		d.sendACKAndStat()
		d.endCommand()

	case CmdSetmode:
		m, _ := d.params.Peek(0)
		d.mode = Mode(m)
		d.sendACKAndStat()
		d.endCommand()

	case CmdSeekL, CmdSeekP:
		d.cmdSeek()

	case CmdGetID:
		d.cmdGetID()

	case CmdGetTN:
		d.cmdGetTN()

	case CmdGetTD:
		d.cmdGetTD()

	case CmdGetlocL:
		d.cmdGetlocL()

	case CmdGetlocP:
		d.cmdGetlocP()

	default:
		panicf("unhandled command 0x%02X", uint8(d.command))
	}
}

func (d *Device) executeTestCommand(sub uint8) {
	switch sub {
	case 0x20:
		d.response.PushRange([]byte{0x94, 0x09, 0x19, 0xC0})
		d.setInterrupt(intACK)
		d.endCommand()
	case 0x22:
		d.response.PushRange([]byte("for U/C"))
		d.setInterrupt(intACK)
		d.endCommand()
	default:
		warnf("unhandled Test subcommand 0x%02X", sub)
		d.endCommand()
	}
}

func (d *Device) cmdSetloc() {
	if d.secondaryStatus.IsActive() {
		warnf("Setloc while reading/playing/seeking")
	}

	mByte, _ := d.params.Peek(0)
	sByte, _ := d.params.Peek(1)
	fByte, _ := d.params.Peek(2)

	msf, ok := MsfFromBCD(mByte, sByte, fByte)
	if !ok {
		d.sendErrorResponse(ErrBadParameter)
		d.endCommand()
		return
	}

	d.setlocPosition = msf
	d.setlocPending = true
	d.sendACKAndStat()
	d.endCommand()
}

func (d *Device) cmdPlay() {
	if !d.HasMedia() {
		d.sendErrorResponse(ErrNoDisc)
		d.endCommand()
		return
	}

	track, hasTrack := d.params.Peek(0)
	if hasTrack && track != 0 {
		if track > d.media.TrackCount() {
			track = d.media.TrackNumber()
		}
		d.setlocPosition = d.media.TrackStartMSF(track)
		d.setlocPending = true
	}

	d.beginReading(true)
	d.sendACKAndStat()
	d.endCommand()
}

func (d *Device) cmdRead() {
	if !d.HasMedia() {
		d.sendErrorResponse(ErrNoDisc)
		d.endCommand()
		return
	}
	d.stopReading()
	d.beginReading(false)
	d.sendACKAndStat()
	d.endCommand()
}

func (d *Device) cmdSeek() {
	if !d.HasMedia() {
		d.sendErrorResponse(ErrNoDisc)
		d.endCommand()
		return
	}
	d.stopReading()
	d.beginSeeking()
	d.sendACKAndStat()
	d.endCommand()
}

func (d *Device) cmdPause() {
	if d.commandStage == 0 {
		wasActive := d.secondaryStatus.IsActive()
		d.sendACKAndStat()
		d.stopReading()

		delay := int32(7000)
		if wasActive {
			if d.mode.DoubleSpeed() {
				delay = 2000000
			} else {
				delay = 1000000
			}
		}
		d.nextCommandStage(true, delay)
		return
	}

	d.response.Push(uint8(d.secondaryStatus))
	d.setInterrupt(intComplete)
	d.endCommand()
}

// cmdStop implements the Stop (0x08) command, absent from the original
// source's command table (spec.md §9 open question 2). It mirrors
// Pause's two-phase shape but also drops the motor, since a stopped
// drive spins down rather than merely pausing motion.
func (d *Device) cmdStop() {
	if d.commandStage == 0 {
		motorWasOn := d.secondaryStatus.MotorOn()
		d.sendACKAndStat()
		d.stopReading()

		delay := int32(7000)
		if motorWasOn {
			delay = 1000000
		}
		d.nextCommandStage(true, delay)
		return
	}

	d.secondaryStatus.SetMotorOn(false)
	d.response.Push(uint8(d.secondaryStatus))
	d.setInterrupt(intComplete)
	d.endCommand()
}

func (d *Device) cmdInit() {
	if d.commandStage == 0 {
		d.sendACKAndStat()
		d.stopReading()
		d.nextCommandStage(true, 8000)
		return
	}

	d.mode = 0
	d.secondaryStatus = 0
	d.secondaryStatus.SetMotorOn(true)
	d.response.Push(uint8(d.secondaryStatus))
	d.setInterrupt(intComplete)
	d.endCommand()
}

func (d *Device) cmdGetID() {
	if d.commandStage == 0 {
		if !d.HasMedia() {
			d.response.PushRange([]byte{0x11, 0x80})
			d.setInterrupt(intError)
			d.endCommand()
			return
		}
		d.sendACKAndStat()
		d.nextCommandStage(true, 18000)
		return
	}

	d.response.PushRange(getIDResponse(d.region))
	d.setInterrupt(intComplete)
	d.endCommand()
}

func (d *Device) cmdGetTN() {
	if !d.HasMedia() {
		d.sendErrorResponse(ErrNoDisc)
		d.endCommand()
		return
	}
	d.response.Push(uint8(d.secondaryStatus))
	d.response.Push(DecimalToBCD(d.media.TrackNumber()))
	d.response.Push(DecimalToBCD(d.media.TrackCount()))
	d.setInterrupt(intACK)
	d.endCommand()
}

func (d *Device) cmdGetTD() {
	trackByte, _ := d.params.Peek(0)
	track := BCDToDecimal(trackByte)

	if !d.HasMedia() {
		d.sendErrorResponse(ErrNoDisc)
		d.endCommand()
		return
	}
	if track > d.media.TrackCount() {
		d.sendErrorResponse(ErrBadParameter)
		d.endCommand()
		return
	}

	var pos Msf
	if track == 0 {
		pos = MsfFromLBA(d.media.LBACount())
	} else {
		pos = d.media.TrackStartMSF(track)
	}

	d.response.Push(uint8(d.secondaryStatus))
	d.response.Push(DecimalToBCD(pos.Minute))
	d.response.Push(DecimalToBCD(pos.Second))
	d.setInterrupt(intACK)
	d.endCommand()
}

func (d *Device) cmdGetlocL() {
	h := d.lastSectorHeader
	sh := d.lastSectorSubheader
	d.response.PushRange([]byte{h.Minute, h.Second, h.Frame, h.Mode})
	d.response.PushRange([]byte{sh.File, sh.Channel, uint8(sh.Submode), uint8(sh.CodingInfo)})
	d.setInterrupt(intACK)
	d.endCommand()
}

func (d *Device) cmdGetlocP() {
	h := d.lastSectorHeader
	d.response.PushRange([]byte{
		1, 1, // track, index: sub-Q is not modeled (spec.md §4.3)
		h.Minute, h.Second, h.Frame,
		h.Minute, h.Second, h.Frame,
	})
	d.setInterrupt(intACK)
	d.endCommand()
}
