package sao

import "github.com/deepteams/sao/internal/dsp"

// EdgeDistortion returns the change in sum of squared error caused by adding
// offsets[category] to every interior sample of rec, where the category comes
// from comparing the sample with its two neighbours along class.
//
// The outer one-sample ring of the block is never classified. For bit depths
// above 8 the error is scaled to 8-bit magnitude with rounding before the
// offset is applied, so offsets are expressed in 8-bit units. Samples whose
// category carries a zero offset do not contribute.
//
// It panics if the arguments fail CheckEdge.
func EdgeDistortion[P Pixel](bitDepth int, orig, rec []P, width, height int, class EdgeClass,
	offsets [NumEdgeCategories]int) int {
	must(CheckEdge(bitDepth, len(orig), len(rec), width, height, class))

	switch o := any(orig).(type) {
	case []uint8:
		return dsp.SAOEdgeDDistortion8(bitDepth, o, any(rec).([]uint8), width, height, int(class), offsets)
	case []uint16:
		return dsp.SAOEdgeDDistortion16(bitDepth, o, any(rec).([]uint16), width, height, int(class), offsets)
	}
	return dsp.SAOEdgeDDistortionGeneric(bitDepth, orig, rec, width, height, int(class), offsets)
}

// BandDistortion returns the change in sum of squared error caused by adding
// offsets[i] to every sample of rec that falls in band bandPos+i, a band being
// the five most significant bits of the sample. Samples outside the four
// bands are left alone and do not contribute.
//
// Unlike EdgeDistortion the error is not rescaled: offsets are in units of
// the sample bit depth. An empty block returns 0.
//
// It panics if the arguments fail CheckBand.
func BandDistortion[P Pixel](bitDepth int, orig, rec []P, width, height, bandPos int,
	offsets [NumBandOffsets]int) int {
	must(CheckBand(bitDepth, len(orig), len(rec), width, height, bandPos))

	switch o := any(orig).(type) {
	case []uint8:
		return dsp.SAOBandDDistortion8(bitDepth, o, any(rec).([]uint8), width, height, bandPos, offsets)
	case []uint16:
		return dsp.SAOBandDDistortion16(bitDepth, o, any(rec).([]uint16), width, height, bandPos, offsets)
	}
	return dsp.SAOBandDDistortionGeneric(bitDepth, orig, rec, width, height, bandPos, offsets)
}

// EdgeDistortionAll evaluates the same offset table for every edge class.
// The result is indexed by EdgeClass.
func EdgeDistortionAll[P Pixel](bitDepth int, orig, rec []P, width, height int,
	offsets [NumEdgeCategories]int) [NumEdgeClasses]int {
	var out [NumEdgeClasses]int
	for c := range out {
		out[c] = EdgeDistortion(bitDepth, orig, rec, width, height, EdgeClass(c), offsets)
	}
	return out
}
