package cdrom

import "encoding/binary"

// C7: the CD-DA path. A CDDA sector's raw payload is 588 interleaved
// 16-bit stereo sample pairs (2352 bytes / 4 bytes per pair) at the
// mixer's native rate — no resampling needed, just a per-sample
// volume-matrix mix.

const cddaSamplesPerSector = int(SectorSize) / 4

// processCDDASector mixes one raw CDDA sector into sink, applying the
// current volume matrix. No-op (but still consumes the buffer) when
// muted.
func processCDDASector(sector []byte, matrix VolumeMatrix, muted bool, sink AudioSink) {
	if muted {
		return
	}
	for i := 0; i < cddaSamplesPerSector; i++ {
		off := i * 4
		left := int16(binary.LittleEndian.Uint16(sector[off:]))
		right := int16(binary.LittleEndian.Uint16(sector[off+2:]))

		outLeft := applyVolume(left, matrix[0][0]) + applyVolume(right, matrix[0][1])
		outRight := applyVolume(left, matrix[1][0]) + applyVolume(right, matrix[1][1])
		sink.PushSample(outLeft, outRight)
	}
}
