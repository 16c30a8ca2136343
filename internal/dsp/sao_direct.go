package dsp

// Row-sliced SAO distortion kernels. They produce the same sums as the
// Generic references and are installed by Init.

// saoEdgeDDistortionDirect folds the category mapping into the offset table
// so the inner loop indexes offsets directly by sign sum, and walks rows
// through sub-slices so the compiler can drop most bounds checks.
func saoEdgeDDistortionDirect[P Pixel](bitDepth int, orig, rec []P, width, height, eoClass int,
	offsets [NumSAOEdgeCategories]int) int {
	var byIdx [5]int
	nonZero := false
	for i, cat := range saoEOIdxToCategory {
		byIdx[i] = offsets[cat]
		nonZero = nonZero || byIdx[i] != 0
	}
	if !nonZero || width < 3 || height < 3 {
		return 0
	}

	aOfs := saoEdgeOffsets[eoClass][0]
	bOfs := saoEdgeOffsets[eoClass][1]
	bitOffset := saoEdgeBitOffset(bitDepth)
	shift := uint(bitDepth - 8)

	sum := 0
	for y := 1; y < height-1; y++ {
		cRow := rec[y*width : (y+1)*width]
		oRow := orig[y*width : (y+1)*width]
		aRow := rec[(y+aOfs.Y)*width : (y+aOfs.Y+1)*width]
		bRow := rec[(y+bOfs.Y)*width : (y+bOfs.Y+1)*width]
		for x := 1; x < width-1; x++ {
			c := int(cRow[x])
			idx := 2 + sign3(c-int(aRow[x+aOfs.X])) + sign3(c-int(bRow[x+bOfs.X]))
			offset := byIdx[idx]
			if offset == 0 {
				continue
			}
			diff := (int(oRow[x]) - c + bitOffset) >> shift
			delta := diff - offset
			sum += delta*delta - diff*diff
		}
	}
	return sum
}

// saoBandDDistortionDirect replaces the per-sample band derivation with a
// sample range test: band-bandPos is in [0,3] exactly when the sample lies in
// [bandPos<<shift, (bandPos+4)<<shift).
func saoBandDDistortionDirect[P Pixel](bitDepth int, orig, rec []P, width, height, bandPos int,
	offsets [NumSAOBandOffsets]int) int {
	if offsets == [NumSAOBandOffsets]int{} {
		return 0
	}
	shift := uint(bitDepth - 5)
	lo := bandPos << shift
	hi := (bandPos + NumSAOBandOffsets) << shift

	n := width * height
	if n <= 0 {
		return 0
	}
	orig = orig[:n]
	rec = rec[:n]

	sum := 0
	for i, rv := range rec {
		r := int(rv)
		if r < lo || r >= hi {
			continue
		}
		offset := offsets[(r-lo)>>shift]
		if offset == 0 {
			continue
		}
		diff := int(orig[i]) - r
		delta := diff - offset
		sum += delta*delta - diff*diff
	}
	return sum
}
