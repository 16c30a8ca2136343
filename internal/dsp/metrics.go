package dsp

import "math"

// Error metrics used to report the effect of an applied offset table.

// perfectPSNR is reported when two blocks are identical.
const perfectPSNR = 99.0

// SSE computes the sum of squared errors between two row-major blocks of the
// same geometry.
func SSE[P Pixel](pix, ref []P, width, height int) uint64 {
	var sse uint64
	for y := 0; y < height; y++ {
		row := pix[y*width : (y+1)*width]
		refRow := ref[y*width : (y+1)*width]
		for x, p := range row {
			d := int(p) - int(refRow[x])
			sse += uint64(d * d)
		}
	}
	return sse
}

// PSNRFromSSE computes the PSNR from the sum of squared errors over count
// samples of the given bit depth.
func PSNRFromSSE(sse uint64, count, bitDepth int) float64 {
	if sse == 0 || count == 0 {
		return perfectPSNR
	}
	peak := float64(int(1)<<bitDepth - 1)
	mse := float64(sse) / float64(count)
	return 10.0 * math.Log10(peak*peak/mse)
}
