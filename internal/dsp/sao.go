package dsp

// Sample adaptive offset (SAO) kernels: edge/band classification, distortion
// deltas, statistics and filter application. The arithmetic matches the
// generic strategies of the kvazaar HEVC encoder bit for bit.

// Pixel is the sample type accepted by the SAO kernels. 8-bit content uses
// uint8, 9 to 16 bit content uses uint16.
type Pixel interface {
	~uint8 | ~uint16
}

const (
	NumSAOEdgeClasses    = 4  // horizontal, vertical, 135 and 45 degree diagonals
	NumSAOEdgeCategories = 5  // edge categories 0..4, category 0 is "no edge"
	NumSAOBandOffsets    = 4  // consecutive bands carrying an offset
	NumSAOBands          = 32 // bands derived from the 5 MSBs of a sample
)

// Vector2D is a neighbour displacement relative to the classified sample.
type Vector2D struct {
	X, Y int
}

// saoEdgeOffsets holds the "before" (a) and "after" (b) neighbour of each
// edge class.
var saoEdgeOffsets = [NumSAOEdgeClasses][2]Vector2D{
	{{-1, 0}, {1, 0}},  // horizontal
	{{0, -1}, {0, 1}},  // vertical
	{{-1, -1}, {1, 1}}, // 135 degrees
	{{1, -1}, {-1, 1}}, // 45 degrees
}

// saoEOIdxToCategory maps 2 + sign(c-a) + sign(c-b) to the edge category.
var saoEOIdxToCategory = [5]int{1, 2, 0, 3, 4}

// SAOEdgeNeighbors returns the two neighbour displacements of an edge class.
func SAOEdgeNeighbors(eoClass int) (a, b Vector2D) {
	return saoEdgeOffsets[eoClass][0], saoEdgeOffsets[eoClass][1]
}

// sign3 returns -1, 0 or 1 for negative, zero and positive v.
func sign3(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// SAOEdgeCategory classifies the centre sample c against its neighbours a
// and b. The result only depends on the signs of c-a and c-b.
func SAOEdgeCategory(a, b, c int) int {
	return saoEOIdxToCategory[2+sign3(c-a)+sign3(c-b)]
}

// saoEdgeBitOffset returns the rounding term added before scaling an error to
// 8-bit magnitude.
func saoEdgeBitOffset(bitDepth int) int {
	if bitDepth != 8 {
		return 1 << (bitDepth - 9)
	}
	return 0
}

// SAOEdgeDDistortionGeneric is the reference edge offset distortion delta.
// Only interior samples are classified; the one-sample border is skipped
// because its neighbours fall outside the block.
func SAOEdgeDDistortionGeneric[P Pixel](bitDepth int, orig, rec []P, width, height, eoClass int,
	offsets [NumSAOEdgeCategories]int) int {
	aOfs := saoEdgeOffsets[eoClass][0]
	bOfs := saoEdgeOffsets[eoClass][1]
	bitOffset := saoEdgeBitOffset(bitDepth)
	shift := uint(bitDepth - 8)

	sum := 0
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			cPos := y*width + x
			aPos := (y+aOfs.Y)*width + x + aOfs.X
			bPos := (y+bOfs.Y)*width + x + bOfs.X

			c := int(rec[cPos])
			cat := SAOEdgeCategory(int(rec[aPos]), int(rec[bPos]), c)
			offset := offsets[cat]

			if offset != 0 {
				diff := (int(orig[cPos]) - c + bitOffset) >> shift
				delta := diff - offset
				sum += delta*delta - diff*diff
			}
		}
	}
	return sum
}

// SAOBandDDistortionGeneric is the reference band offset distortion delta.
// The error term is not rescaled by bit depth; only the band index is.
func SAOBandDDistortionGeneric[P Pixel](bitDepth int, orig, rec []P, width, height, bandPos int,
	offsets [NumSAOBandOffsets]int) int {
	shift := uint(bitDepth - 5)

	sum := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pos := y*width + x
			r := int(rec[pos])

			band := r>>shift - bandPos
			offset := 0
			if band >= 0 && band <= 3 {
				offset = offsets[band]
			}
			// The offset is added to the reconstruction, so it is subtracted
			// from the error.
			diff := int(orig[pos]) - r
			delta := diff - offset

			// Zero the terms of pixels without offset: -1 keeps, 0 clears.
			mask := 0
			if offset != 0 {
				mask = -1
			}
			diff &= mask
			delta &= mask

			sum += delta*delta - diff*diff
		}
	}
	return sum
}

// SAOEdgeStats accumulates, per edge category, the sum of original minus
// reconstructed samples and the number of classified samples.
func SAOEdgeStats[P Pixel](orig, rec []P, width, height, eoClass int,
	sum, count *[NumSAOEdgeCategories]int) {
	aOfs := saoEdgeOffsets[eoClass][0]
	bOfs := saoEdgeOffsets[eoClass][1]

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			cPos := y*width + x
			c := int(rec[cPos])
			a := int(rec[(y+aOfs.Y)*width+x+aOfs.X])
			b := int(rec[(y+bOfs.Y)*width+x+bOfs.X])

			cat := SAOEdgeCategory(a, b, c)
			sum[cat] += int(orig[cPos]) - c
			count[cat]++
		}
	}
}

// SAOBandStats accumulates, per band, the sum of original minus reconstructed
// samples and the number of samples.
func SAOBandStats[P Pixel](bitDepth int, orig, rec []P, width, height int,
	sum, count *[NumSAOBands]int) {
	shift := uint(bitDepth - 5)
	n := width * height
	for i := 0; i < n; i++ {
		r := int(rec[i])
		band := r >> shift
		sum[band] += int(orig[i]) - r
		count[band]++
	}
}

// SAOEdgeApply writes the edge-offset filtered block to dst. Border samples
// are copied unchanged. dst must not alias rec.
func SAOEdgeApply[P Pixel](bitDepth int, rec, dst []P, width, height, eoClass int,
	offsets [NumSAOEdgeCategories]int) {
	aOfs := saoEdgeOffsets[eoClass][0]
	bOfs := saoEdgeOffsets[eoClass][1]
	maxVal := 1<<bitDepth - 1

	copy(dst[:width*height], rec[:width*height])
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			cPos := y*width + x
			c := int(rec[cPos])
			a := int(rec[(y+aOfs.Y)*width+x+aOfs.X])
			b := int(rec[(y+bOfs.Y)*width+x+bOfs.X])

			cat := SAOEdgeCategory(a, b, c)
			dst[cPos] = P(ClipPixel(c+offsets[cat], maxVal))
		}
	}
}

// SAOBandApply writes the band-offset filtered block to dst. dst may alias rec.
func SAOBandApply[P Pixel](bitDepth int, rec, dst []P, width, height, bandPos int,
	offsets [NumSAOBandOffsets]int) {
	shift := uint(bitDepth - 5)
	maxVal := 1<<bitDepth - 1
	n := width * height
	for i := 0; i < n; i++ {
		r := int(rec[i])
		band := r>>shift - bandPos
		if band >= 0 && band < NumSAOBandOffsets {
			r = ClipPixel(r+offsets[band], maxVal)
		}
		dst[i] = P(r)
	}
}
