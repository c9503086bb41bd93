package cdrom

// C6: the XA-ADPCM resampler. Upsamples decoded 37800/18900 Hz mono or
// stereo PCM to the fixed 44100 Hz mixer rate with a six-phase, 7-tap
// zigzag filter over a 32-entry ring buffer per channel.

const xaRingBufferSize = 32

// zigzagTable is the fixed 7x29 FIR coefficient matrix used by the
// resampler, copied verbatim from the original implementation's
// s_zigzag_table so the output is bit-exact.
var zigzagTable = [7][29]int32{
	{0, 0x0, 0x0, 0x0, 0x0, -0x0002, 0x000A, -0x0022, 0x0041, -0x0054,
		0x0034, 0x0009, -0x010A, 0x0400, -0x0A78, 0x234C, 0x6794, -0x1780, 0x0BCD, -0x0623,
		0x0350, -0x016D, 0x006B, 0x000A, -0x0010, 0x0011, -0x0008, 0x0003, -0x0001},
	{0, 0x0, 0x0, -0x0002, 0x0, 0x0003, -0x0013, 0x003C, -0x004B, 0x00A2,
		-0x00E3, 0x0132, -0x0043, -0x0267, 0x0C9D, 0x74BB, -0x11B4, 0x09B8, -0x05BF, 0x0372,
		-0x01A8, 0x00A6, -0x001B, 0x0005, 0x0006, -0x0008, 0x0003, -0x0001, 0x0},
	{0, 0x0, -0x0001, 0x0003, -0x0002, -0x0005, 0x001F, -0x004A, 0x00B3, -0x0192,
		0x02B1, -0x039E, 0x04F8, -0x05A6, 0x7939, -0x05A6, 0x04F8, -0x039E, 0x02B1, -0x0192,
		0x00B3, -0x004A, 0x001F, -0x0005, -0x0002, 0x0003, -0x0001, 0x0, 0x0},
	{0, -0x0001, 0x0003, -0x0008, 0x0006, 0x0005, -0x001B, 0x00A6, -0x01A8, 0x0372,
		-0x05BF, 0x09B8, -0x11B4, 0x74BB, 0x0C9D, -0x0267, -0x0043, 0x0132, -0x00E3, 0x00A2,
		-0x004B, 0x003C, -0x0013, 0x0003, 0x0, -0x0002, 0x0, 0x0, 0x0},
	{-0x0001, 0x0003, -0x0008, 0x0011, -0x0010, 0x000A, 0x006B, -0x016D, 0x0350, -0x0623,
		0x0BCD, -0x1780, 0x6794, 0x234C, -0x0A78, 0x0400, -0x010A, 0x0009, 0x0034, -0x0054,
		0x0041, -0x0022, 0x000A, -0x0001, 0x0, 0x0001, 0x0, 0x0, 0x0},
	{0x0002, -0x0008, 0x0010, -0x0023, 0x002B, 0x001A, -0x00EB, 0x027B, -0x0548, 0x0AFA,
		-0x16FA, 0x53E0, 0x3C07, -0x1249, 0x080E, -0x0347, 0x015B, -0x0044, -0x0017, 0x0046,
		-0x0023, 0x0011, -0x0005, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0},
	{-0x0005, 0x0011, -0x0023, 0x0046, -0x0017, -0x0044, 0x015B, -0x0347, 0x080E, -0x1249,
		0x3C07, 0x53E0, -0x16FA, 0x0AFA, -0x0548, 0x027B, -0x00EB, 0x001A, 0x002B, -0x0023,
		0x0010, -0x0008, 0x0002, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0},
}

// xaBugRightToLeftSlot is the volume-matrix cell the left-channel mix
// erroneously reuses for the right-channel contribution, instead of
// [0][1]. spec.md §4.6/§9 requires this bug be preserved bit-exactly;
// real commercial software's audio depends on it.
const (
	xaBugMatrixOutRow = 1
	xaBugMatrixInCol  = 0
)

// XaState holds the per-device resampler state: one 32-entry ring per
// output channel, the write cursor, and the six-phase counter.
type XaState struct {
	ring    [2][xaRingBufferSize]int16
	p       uint8 // write cursor, mod 32
	sixstep uint8 // phase counter, counts down 6..1

	// lastSamples is the ADPCM decoder's per-channel prediction history,
	// threaded through XaDecoder calls across sectors; the resampler
	// never reads it directly but owns its storage for save-state
	// purposes (spec.md §6).
	lastSamples [2][2]int16
}

func newXaState() XaState {
	return XaState{sixstep: 6}
}

func (x *XaState) reset() {
	*x = newXaState()
}

// zigzagInterpolate computes one output tap for phase j at cursor p.
func zigzagInterpolate(ring *[xaRingBufferSize]int16, table *[29]int32, p uint8) int16 {
	var sum int32
	for i := 0; i < 29; i++ {
		idx := (int(p) - i) & (xaRingBufferSize - 1)
		sum += (int32(ring[idx]) * table[i]) / 0x8000
	}
	return clampS16(sum)
}

// feed pushes one sector's worth of decoded samples through the
// resampler, producing output samples on sink as the six-phase counter
// underflows. samplesIn is interleaved stereo if stereo is true,
// otherwise mono. If halfSampleRate is true each input sample is
// duplicated before being fed to the ring buffer, per spec.md §4.6.
func (x *XaState) feed(samplesIn []int16, stereo, halfSampleRate bool, matrix VolumeMatrix, sink AudioSink) {
	dups := 1
	if halfSampleRate {
		dups = 2
	}

	step := 1
	if stereo {
		step = 2
	}

	for i := 0; i+step-1 < len(samplesIn); i += step {
		left := samplesIn[i]
		right := left
		if stereo {
			right = samplesIn[i+1]
		}

		for d := 0; d < dups; d++ {
			x.ring[0][x.p] = left
			if stereo {
				x.ring[1][x.p] = right
			} else {
				x.ring[1][x.p] = left
			}
			x.p = (x.p + 1) % xaRingBufferSize
			x.sixstep--

			if x.sixstep == 0 {
				x.sixstep = 6
				for j := 0; j < 7; j++ {
					leftInterp := zigzagInterpolate(&x.ring[0], &zigzagTable[j], x.p)
					rightInterp := zigzagInterpolate(&x.ring[1], &zigzagTable[j], x.p)

					leftOut := applyVolume(leftInterp, matrix[0][0]) +
						applyVolume(rightInterp, matrix[xaBugMatrixOutRow][xaBugMatrixInCol])
					rightOut := applyVolume(leftInterp, matrix[1][0]) +
						applyVolume(rightInterp, matrix[1][1])

					sink.PushSample(leftOut, rightOut)
				}
			}
		}
	}
}
