package sao

import (
	"fmt"

	"github.com/deepteams/sao/internal/dsp"
)

// EdgeStats returns, per edge category along class, the sum of orig-rec over
// the interior samples of the block and the number of those samples. The
// error is not scaled by bit depth.
//
// It panics if the block is smaller than 3x3, a buffer is too short or class
// is unknown.
func EdgeStats[P Pixel](orig, rec []P, width, height int, class EdgeClass) (sum, count [NumEdgeCategories]int) {
	must(checkGeometry("original", len(orig), "reconstruction", len(rec), width, height, 3))
	if !class.Valid() {
		panic(fmt.Errorf("%w: %d", ErrEdgeClass, int(class)))
	}
	dsp.SAOEdgeStats(orig, rec, width, height, int(class), &sum, &count)
	return sum, count
}

// BandStats returns, per band, the sum of orig-rec over all samples of the
// block and the number of samples. Samples of rec must not exceed the
// maximum value of bitDepth.
func BandStats[P Pixel](bitDepth int, orig, rec []P, width, height int) (sum, count [NumBands]int) {
	must(checkBlock(bitDepth, len(orig), len(rec), width, height, 0))
	dsp.SAOBandStats(bitDepth, orig, rec, width, height, &sum, &count)
	return sum, count
}

// ApplyEdge writes rec with edge offsets applied to dst. Interior samples get
// offsets[category] added and are clipped to the bit depth range; the border
// ring is copied. dst must not overlap rec.
func ApplyEdge[P Pixel](bitDepth int, rec, dst []P, width, height int, class EdgeClass,
	offsets [NumEdgeCategories]int) {
	must(checkBitDepth(bitDepth))
	must(checkGeometry("reconstruction", len(rec), "destination", len(dst), width, height, 3))
	if !class.Valid() {
		panic(fmt.Errorf("%w: %d", ErrEdgeClass, int(class)))
	}
	dsp.SAOEdgeApply(bitDepth, rec, dst, width, height, int(class), offsets)
}

// ApplyBand writes rec with band offsets applied to dst. dst may be rec.
func ApplyBand[P Pixel](bitDepth int, rec, dst []P, width, height, bandPos int,
	offsets [NumBandOffsets]int) {
	must(checkBitDepth(bitDepth))
	must(checkGeometry("reconstruction", len(rec), "destination", len(dst), width, height, 0))
	must(checkBandPos(bandPos))
	dsp.SAOBandApply(bitDepth, rec, dst, width, height, bandPos, offsets)
}

// SSE returns the sum of squared error between two blocks.
func SSE[P Pixel](a, b []P, width, height int) uint64 {
	must(checkGeometry("first block", len(a), "second block", len(b), width, height, 0))
	return dsp.SSE(a, b, width, height)
}

// PSNR converts a sum of squared error over count samples to decibels,
// relative to the peak value of bitDepth. Identical blocks report 99 dB.
func PSNR(sse uint64, count, bitDepth int) float64 {
	return dsp.PSNRFromSSE(sse, count, bitDepth)
}
