package sao

import (
	"errors"
	"math/rand"
	"testing"
)

func fill[P Pixel](n int, v P) []P {
	b := make([]P, n)
	for i := range b {
		b[i] = v
	}
	return b
}

func randBlock(rng *rand.Rand, n, bitDepth int) []uint16 {
	b := make([]uint16, n)
	for i := range b {
		b[i] = uint16(rng.Intn(1 << bitDepth))
	}
	return b
}

func TestEdgeCategoryOf(t *testing.T) {
	tests := []struct {
		a, b, c int
		want    int
	}{
		{10, 10, 5, CategoryLocalMin},
		{5, 5, 10, CategoryLocalMax},
		{5, 10, 5, CategoryConcaveEdge},
		{10, 5, 10, CategoryConvexEdge},
		{7, 7, 7, CategoryNone},
		{1, 9, 5, CategoryNone},
	}
	for _, tt := range tests {
		if got := EdgeCategoryOf(tt.a, tt.b, tt.c); got != tt.want {
			t.Errorf("EdgeCategoryOf(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.c, got, tt.want)
		}
	}
}

func TestEdgeClass(t *testing.T) {
	names := []string{"horizontal", "vertical", "135", "45"}
	for c := EdgeClass(0); c < NumEdgeClasses; c++ {
		if !c.Valid() {
			t.Errorf("%d: not valid", c)
		}
		if got := c.String(); got != names[c] {
			t.Errorf("%d: String() = %q, want %q", c, got, names[c])
		}
	}
	if EdgeClass(4).Valid() || EdgeClass(-1).Valid() {
		t.Error("out of range class reported valid")
	}
	if got := EdgeClass(7).String(); got != "EdgeClass(7)" {
		t.Errorf("String() = %q", got)
	}
	a, b := EdgeDiagonal45.Neighbors()
	if a != [2]int{1, -1} || b != [2]int{-1, 1} {
		t.Errorf("45 degree neighbours = %v %v", a, b)
	}
}

func TestEdgeDistortionFlatBlock(t *testing.T) {
	rec := fill[uint8](16, 100)
	orig := fill[uint8](16, 108)
	if got := EdgeDistortion(8, orig, rec, 4, 4, EdgeHorizontal, [NumEdgeCategories]int{0, 8, 0, 0, 0}); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestBandDistortionScenario(t *testing.T) {
	rec := fill[uint8](4, 32)
	orig := fill[uint8](4, 40)
	if got := BandDistortion(8, orig, rec, 2, 2, 4, [NumBandOffsets]int{8, 0, 0, 0}); got != -256 {
		t.Errorf("got %d, want -256", got)
	}
}

// pixel16 checks that named sample types go through the reference path.
type pixel16 uint16

func TestDistortionSampleTypesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const w, h = 24, 17
	for iter := 0; iter < 200; iter++ {
		o16 := randBlock(rng, w*h, 8)
		r16 := randBlock(rng, w*h, 8)
		o8, r8 := make([]uint8, w*h), make([]uint8, w*h)
		on, rn := make([]pixel16, w*h), make([]pixel16, w*h)
		for i := range o16 {
			o8[i], r8[i] = uint8(o16[i]), uint8(r16[i])
			on[i], rn[i] = pixel16(o16[i]), pixel16(r16[i])
		}
		var eo [NumEdgeCategories]int
		for i := range eo {
			eo[i] = rng.Intn(15) - 7
		}
		class := EdgeClass(rng.Intn(NumEdgeClasses))
		e8 := EdgeDistortion(8, o8, r8, w, h, class, eo)
		if e16 := EdgeDistortion(8, o16, r16, w, h, class, eo); e16 != e8 {
			t.Fatalf("edge: uint16 %d, uint8 %d", e16, e8)
		}
		if en := EdgeDistortion(8, on, rn, w, h, class, eo); en != e8 {
			t.Fatalf("edge: named type %d, uint8 %d", en, e8)
		}

		bo := [NumBandOffsets]int{rng.Intn(15) - 7, rng.Intn(15) - 7, rng.Intn(15) - 7, rng.Intn(15) - 7}
		bandPos := rng.Intn(NumBands)
		b8 := BandDistortion(8, o8, r8, w, h, bandPos, bo)
		if b16 := BandDistortion(8, o16, r16, w, h, bandPos, bo); b16 != b8 {
			t.Fatalf("band: uint16 %d, uint8 %d", b16, b8)
		}
		if bn := BandDistortion(8, on, rn, w, h, bandPos, bo); bn != b8 {
			t.Fatalf("band: named type %d, uint8 %d", bn, b8)
		}
	}
}

func TestZeroOffsetsAllBitDepths(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for bitDepth := MinBitDepth; bitDepth <= MaxBitDepth; bitDepth++ {
		orig := randBlock(rng, 64, bitDepth)
		rec := randBlock(rng, 64, bitDepth)
		for c := EdgeClass(0); c < NumEdgeClasses; c++ {
			if got := EdgeDistortion(bitDepth, orig, rec, 8, 8, c, [NumEdgeCategories]int{}); got != 0 {
				t.Errorf("bitDepth %d class %v: edge %d", bitDepth, c, got)
			}
		}
		if got := BandDistortion(bitDepth, orig, rec, 8, 8, rng.Intn(NumBands), [NumBandOffsets]int{}); got != 0 {
			t.Errorf("bitDepth %d: band %d", bitDepth, got)
		}
	}
}

func TestEdgeDistortionAll(t *testing.T) {
	// A vertical ridge: a maximum horizontally, flat vertically.
	rec := []uint8{
		10, 20, 10,
		10, 20, 10,
		10, 20, 10,
	}
	orig := fill[uint8](9, 25)
	got := EdgeDistortionAll(8, orig, rec, 3, 3, [NumEdgeCategories]int{0, 0, 0, 0, 3})
	// Horizontal and both diagonals see a maximum: diff 5, delta 2.
	want := [NumEdgeClasses]int{4 - 25, 0, 4 - 25, 4 - 25}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCheckEdge(t *testing.T) {
	tests := []struct {
		name                 string
		bitDepth, oLen, rLen int
		width, height        int
		class                EdgeClass
		want                 error
	}{
		{"ok", 8, 9, 9, 3, 3, EdgeVertical, nil},
		{"ok_16bit", 16, 12, 12, 4, 3, EdgeDiagonal45, nil},
		{"bitdepth_low", 7, 9, 9, 3, 3, EdgeVertical, ErrBitDepth},
		{"bitdepth_high", 17, 9, 9, 3, 3, EdgeVertical, ErrBitDepth},
		{"narrow", 8, 9, 9, 2, 4, EdgeVertical, ErrGeometry},
		{"short_orig", 8, 8, 9, 3, 3, EdgeVertical, ErrBufferSize},
		{"short_rec", 8, 9, 8, 3, 3, EdgeVertical, ErrBufferSize},
		{"class", 8, 9, 9, 3, 3, EdgeClass(4), ErrEdgeClass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEdge(tt.bitDepth, tt.oLen, tt.rLen, tt.width, tt.height, tt.class)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckBand(t *testing.T) {
	if err := CheckBand(8, 0, 0, 0, 0, 0); err != nil {
		t.Errorf("empty block: %v", err)
	}
	if err := CheckBand(10, 4, 4, 2, 2, 31); err != nil {
		t.Errorf("last band: %v", err)
	}
	if err := CheckBand(8, 4, 4, 2, 2, 32); !errors.Is(err, ErrBandPosition) {
		t.Errorf("band 32: got %v", err)
	}
	if err := CheckBand(8, 4, 4, 2, 2, -1); !errors.Is(err, ErrBandPosition) {
		t.Errorf("band -1: got %v", err)
	}
	if err := CheckBand(8, 4, 4, -1, 2, 0); !errors.Is(err, ErrGeometry) {
		t.Errorf("negative width: got %v", err)
	}
}

func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Errorf("recovered %v, want panic with %v", r, want)
		}
	}()
	fn()
}

func TestPreconditionPanics(t *testing.T) {
	b := make([]uint8, 9)
	eo := [NumEdgeCategories]int{0, 1, 0, 0, -1}
	bo := [NumBandOffsets]int{1, 0, 0, 0}

	expectPanic(t, ErrEdgeClass, func() { EdgeDistortion(8, b, b, 3, 3, EdgeClass(9), eo) })
	expectPanic(t, ErrGeometry, func() { EdgeDistortion(8, b, b, 9, 1, EdgeHorizontal, eo) })
	expectPanic(t, ErrBufferSize, func() { EdgeDistortion(8, b, b[:8], 3, 3, EdgeHorizontal, eo) })
	expectPanic(t, ErrBitDepth, func() { BandDistortion(4, b, b, 3, 3, 0, bo) })
	expectPanic(t, ErrBandPosition, func() { BandDistortion(8, b, b, 3, 3, 40, bo) })
	expectPanic(t, ErrBufferSize, func() { ApplyBand(8, b, b[:4], 3, 3, 0, bo) })
	expectPanic(t, ErrEdgeClass, func() { ApplyEdge(8, b, make([]uint8, 9), 3, 3, EdgeClass(-1), eo) })
	expectPanic(t, ErrEdgeClass, func() { EdgeStats(b, b, 3, 3, EdgeClass(5)) })
}

func TestStatsPredictDistortion(t *testing.T) {
	// At 8 bit, delta = sum over samples of (d-o)^2 - d^2 = count*o^2 - 2*o*sum.
	rng := rand.New(rand.NewSource(17))
	const w, h = 20, 14
	for iter := 0; iter < 100; iter++ {
		orig8, rec8 := make([]uint8, w*h), make([]uint8, w*h)
		for i := range orig8 {
			orig8[i] = uint8(rng.Intn(256))
			rec8[i] = uint8(100 + rng.Intn(4))
		}
		class := EdgeClass(rng.Intn(NumEdgeClasses))
		sum, count := EdgeStats(orig8, rec8, w, h, class)
		var eo [NumEdgeCategories]int
		want := 0
		for cat := range eo {
			eo[cat] = rng.Intn(15) - 7
			want += count[cat]*eo[cat]*eo[cat] - 2*eo[cat]*sum[cat]
		}
		if got := EdgeDistortion(8, orig8, rec8, w, h, class, eo); got != want {
			t.Fatalf("edge iter %d: got %d, want %d", iter, got, want)
		}

		bsum, bcount := BandStats(8, orig8, rec8, w, h)
		var bo [NumBandOffsets]int
		bandPos := 11 + rng.Intn(2)
		want = 0
		for i := range bo {
			bo[i] = rng.Intn(15) - 7
			s, n := bsum[bandPos+i], bcount[bandPos+i]
			want += n*bo[i]*bo[i] - 2*bo[i]*s
		}
		if got := BandDistortion(8, orig8, rec8, w, h, bandPos, bo); got != want {
			t.Fatalf("band iter %d: got %d, want %d", iter, got, want)
		}
	}
}

func TestApplyMatchesDistortion(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	const w, h = 9, 9
	for iter := 0; iter < 100; iter++ {
		orig, rec := make([]uint8, w*h), make([]uint8, w*h)
		for i := range rec {
			orig[i] = uint8(rng.Intn(256))
			rec[i] = uint8(20 + rng.Intn(216))
		}
		before := SSE(orig, rec, w, h)
		dst := make([]uint8, w*h)

		eo := [NumEdgeCategories]int{0, rng.Intn(8), rng.Intn(8), -rng.Intn(8), -rng.Intn(8)}
		class := EdgeClass(iter % NumEdgeClasses)
		ApplyEdge(8, rec, dst, w, h, class, eo)
		if got, want := int(SSE(orig, dst, w, h))-int(before), EdgeDistortion(8, orig, rec, w, h, class, eo); got != want {
			t.Fatalf("edge: applied %d, predicted %d", got, want)
		}

		bo := [NumBandOffsets]int{rng.Intn(15) - 7, rng.Intn(15) - 7, rng.Intn(15) - 7, rng.Intn(15) - 7}
		bandPos := 3 + rng.Intn(24)
		ApplyBand(8, rec, dst, w, h, bandPos, bo)
		if got, want := int(SSE(orig, dst, w, h))-int(before), BandDistortion(8, orig, rec, w, h, bandPos, bo); got != want {
			t.Fatalf("band: applied %d, predicted %d", got, want)
		}
	}
}

func TestApplyBandInPlace(t *testing.T) {
	rec := []uint16{0, 31, 32, 63, 64, 1023}
	ApplyBand(10, rec, rec, 6, 1, 0, [NumBandOffsets]int{-3, 4, 9, 9})
	want := []uint16{0, 28, 36, 67, 73, 1023}
	for i := range want {
		if rec[i] != want[i] {
			t.Fatalf("got %v, want %v", rec, want)
		}
	}
}

func TestPSNR(t *testing.T) {
	if got := PSNR(0, 10, 8); got != 99 {
		t.Errorf("identical: %v", got)
	}
	a := []uint8{0, 0, 0, 0}
	b := []uint8{1, 1, 1, 1}
	sse := SSE(a, b, 2, 2)
	if sse != 4 {
		t.Fatalf("SSE = %d, want 4", sse)
	}
	if got := PSNR(sse, 4, 8); got < 48.1 || got > 48.2 {
		t.Errorf("PSNR = %.3f, want ~48.13", got)
	}
}
