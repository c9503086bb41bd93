package cdrom

// clampS16 clamps a wider sum back into the signed 16-bit PCM range.
func clampS16(v int32) int16 {
	if v < -0x8000 {
		return -0x8000
	}
	if v > 0x7fff {
		return 0x7fff
	}
	return int16(v)
}

// applyVolume scales sample by an 8-bit volume byte where 0x80 is unity
// gain (sample*volume>>7), clamping the result. Bytes above 0x80
// amplify; this is shared by the CDDA path (C7) and the XA resampler's
// final mix (C6).
func applyVolume(sample int16, volume uint8) int16 {
	return clampS16((int32(sample) * int32(volume)) >> 7)
}
