package cdrom

// C4: the motion FSM. Drives seeking and sector-paced reading on an
// integer tick budget, independent of the command FSM's own state but
// mutually constrained through SecondaryStatus (spec.md §4.4).

// masterClock is the PS1 system clock in Hz, used to derive the
// per-sector read budget.
const masterClock = 33868800

// ticksForRead returns the tick budget for one sector at the current
// speed: MASTER_CLOCK/75 single speed, MASTER_CLOCK/150 double speed.
func (d *Device) ticksForRead() int32 {
	if d.mode.DoubleSpeed() {
		return masterClock / 150
	}
	return masterClock / 75
}

// ticksForSeek returns the tick budget for a seek to setlocPosition from
// the media's current position: 20000 + 100*|ΔLBA| (spec.md §4.4,
// testable property 6).
func (d *Device) ticksForSeek() int32 {
	current := d.media.PositionOnDisc()
	target := d.setlocPosition.ToLBA()
	diff := target - current
	if diff < 0 {
		diff = -diff
	}
	return 20000 + diff*100
}

// beginReading starts sector-paced reading (cdda=false) or CDDA playback
// (cdda=true). If a setloc is pending and the drive isn't already there,
// this defers to a seek and arms the appropriate after-seek flag instead
// of starting motion immediately.
func (d *Device) beginReading(cdda bool) {
	if d.setlocPending {
		if d.media.PositionOnDisc() != d.setlocPosition.ToLBA() {
			d.beginSeeking()
			d.readAfterSeek = !cdda
			d.playAfterSeek = cdda
			return
		}
		d.setlocPending = false
	}

	d.secondaryStatus.SetMotorOn(true)
	d.secondaryStatus.ClearMotion()
	d.secondaryStatus.SetReading(!cdda)
	d.secondaryStatus.SetPlayingCDDA(cdda)

	d.readOrSeekRemainingTicks = d.ticksForRead()
	d.tickSource.SetDowncount(d.readOrSeekRemainingTicks)
}

// beginSeeking starts a seek towards setlocPosition.
func (d *Device) beginSeeking() {
	if !d.setlocPending {
		warnf("seeking without a pending setloc")
	}

	d.seekPosition = d.setlocPosition
	d.setlocPending = false

	d.secondaryStatus.SetMotorOn(true)
	d.secondaryStatus.ClearMotion()
	d.secondaryStatus.SetSeeking(true)

	d.readOrSeekRemainingTicks = d.ticksForSeek()
	d.tickSource.SetDowncount(d.readOrSeekRemainingTicks)
}

// doSeekComplete is called when the seek tick budget runs out. On
// success it transitions to the armed after-seek motion (if any) and
// delivers an async INT2; on failure it delivers an async INT5(0x80).
func (d *Device) doSeekComplete() {
	d.secondaryStatus.SetSeeking(false)

	if d.media != nil && d.media.Seek(d.seekPosition) {
		if d.playAfterSeek || d.readAfterSeek {
			d.beginReading(d.playAfterSeek)
		}
		d.asyncResponse.Push(uint8(d.secondaryStatus))
		d.setAsyncInterrupt(intComplete)
		d.updateStatusByte()
	} else {
		warnf("seek to %s failed", d.seekPosition)
		d.sendAsyncErrorResponse(ErrNoDisc)
	}

	d.setlocPending = false
	d.readAfterSeek = false
	d.playAfterSeek = false
}

// doSectorRead is called when the read tick budget runs out: it reads
// one raw sector into the sector buffer, routes it through the sector
// pipeline, and rearms the read budget. If a setloc arrived while
// reading and now differs from the current position, this transitions
// to a seek instead (spec.md §4.4, and the preserved "Setloc while
// reading" open question — see SPEC_FULL.md §9).
func (d *Device) doSectorRead() {
	if d.pendingAsyncInterrupt != 0 {
		warnf("data interrupt was not delivered")
		d.cancelAsyncInterrupt()
	}

	if d.setlocPending && d.media.PositionOnDisc() != d.setlocPosition.ToLBA() {
		cdda := d.secondaryStatus.PlayingCDDA()
		d.beginSeeking()
		d.readAfterSeek = !cdda
		d.playAfterSeek = cdda
		return
	}

	if len(d.sectorBuffer) != 0 {
		warnf("sector buffer was not empty")
	}

	d.sectorBuffer = d.sectorBufferStorage[:SectorSize]
	if err := d.media.ReadSector(d.sectorBuffer); err != nil {
		warnf("sector read failed: %v", err)
		d.sectorBuffer = d.sectorBufferStorage[:0]
		d.stopReading()
		d.sendAsyncErrorResponse(ErrNoDisc)
		return
	}

	switch {
	case d.secondaryStatus.Reading():
		d.processDataSector()
	case d.secondaryStatus.PlayingCDDA():
		d.processCDDASectorBuffer()
	default:
		panicf("doSectorRead with no reading/playing state active")
	}

	d.readOrSeekRemainingTicks += d.ticksForRead()
	d.tickSource.SetDowncount(d.readOrSeekRemainingTicks)
}

// stopReading zeroes the motion state and drops its tick budget
// immediately (spec.md §5 "Cancellation").
func (d *Device) stopReading() {
	if !d.secondaryStatus.IsActive() {
		return
	}
	d.secondaryStatus.ClearMotion()
	d.readOrSeekRemainingTicks = 0
}
