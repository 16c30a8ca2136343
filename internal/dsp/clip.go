// Package dsp provides the low-level sample adaptive offset (SAO) routines:
// edge and band classification, distortion deltas, statistics, filter
// application and error metrics. This file contains the clip helper used
// when applying offsets.
package dsp

// ClipPixel clips v to [0, maxVal].
func ClipPixel(v, maxVal int) int {
	if uint(v) <= uint(maxVal) {
		return v
	}
	if v < 0 {
		return 0
	}
	return maxVal
}
