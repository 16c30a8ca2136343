package sao

import (
	"errors"
	"fmt"

	"github.com/deepteams/sao/internal/dsp"
)

// Pixel is the sample type: uint8 for 8-bit content, uint16 above.
type Pixel = dsp.Pixel

// Table sizes and the supported bit depth range.
const (
	NumEdgeClasses    = dsp.NumSAOEdgeClasses
	NumEdgeCategories = dsp.NumSAOEdgeCategories
	NumBandOffsets    = dsp.NumSAOBandOffsets
	NumBands          = dsp.NumSAOBands

	MinBitDepth = 8
	MaxBitDepth = 16
)

// EdgeClass selects the direction along which edge offset compares a sample
// with its two neighbours.
type EdgeClass int

const (
	EdgeHorizontal  EdgeClass = iota // left and right neighbours
	EdgeVertical                     // above and below
	EdgeDiagonal135                  // above-left and below-right
	EdgeDiagonal45                   // above-right and below-left
)

func (c EdgeClass) String() string {
	switch c {
	case EdgeHorizontal:
		return "horizontal"
	case EdgeVertical:
		return "vertical"
	case EdgeDiagonal135:
		return "135"
	case EdgeDiagonal45:
		return "45"
	}
	return fmt.Sprintf("EdgeClass(%d)", int(c))
}

// Valid reports whether c is one of the four edge classes.
func (c EdgeClass) Valid() bool {
	return c >= EdgeHorizontal && c <= EdgeDiagonal45
}

// Neighbors returns the displacement (dx, dy) of the "before" and "after"
// neighbour of the edge class.
func (c EdgeClass) Neighbors() (a, b [2]int) {
	va, vb := dsp.SAOEdgeNeighbors(int(c))
	return [2]int{va.X, va.Y}, [2]int{vb.X, vb.Y}
}

// Edge categories. Offset tables are indexed by category.
const (
	CategoryNone        = 0 // monotonic or flat
	CategoryLocalMin    = 1 // smaller than both neighbours
	CategoryConcaveEdge = 2 // smaller than one neighbour, equal to the other
	CategoryConvexEdge  = 3 // larger than one neighbour, equal to the other
	CategoryLocalMax    = 4 // larger than both neighbours
)

// Errors describing violated preconditions.
var (
	ErrBitDepth     = errors.New("sao: unsupported bit depth")
	ErrGeometry     = errors.New("sao: invalid block geometry")
	ErrBufferSize   = errors.New("sao: buffer smaller than block")
	ErrEdgeClass    = errors.New("sao: invalid edge class")
	ErrBandPosition = errors.New("sao: band position out of range")
)

// EdgeCategoryOf classifies the centre sample c against its neighbours a
// and b:
//
//	c < a and c < b        -> CategoryLocalMin
//	c <= a, c <= b, one == -> CategoryConcaveEdge
//	c >= a, c >= b, one == -> CategoryConvexEdge
//	c > a and c > b        -> CategoryLocalMax
//	otherwise              -> CategoryNone
func EdgeCategoryOf(a, b, c int) int {
	return dsp.SAOEdgeCategory(a, b, c)
}

func checkBitDepth(bitDepth int) error {
	if bitDepth < MinBitDepth || bitDepth > MaxBitDepth {
		return fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	return nil
}

// checkGeometry validates the block size against the two buffer lengths.
func checkGeometry(aName string, aLen int, bName string, bLen int, width, height, minSide int) error {
	if width < minSide || height < minSide {
		return fmt.Errorf("%w: %dx%d, need at least %dx%d", ErrGeometry, width, height, minSide, minSide)
	}
	n := width * height
	if aLen < n {
		return fmt.Errorf("%w: %s has %d samples, block needs %d", ErrBufferSize, aName, aLen, n)
	}
	if bLen < n {
		return fmt.Errorf("%w: %s has %d samples, block needs %d", ErrBufferSize, bName, bLen, n)
	}
	return nil
}

func checkBlock(bitDepth, origLen, recLen, width, height, minSide int) error {
	if err := checkBitDepth(bitDepth); err != nil {
		return err
	}
	return checkGeometry("original", origLen, "reconstruction", recLen, width, height, minSide)
}

// CheckEdge validates the arguments of an edge offset call.
// origLen and recLen are the lengths of the two sample buffers.
func CheckEdge(bitDepth, origLen, recLen, width, height int, class EdgeClass) error {
	if err := checkBlock(bitDepth, origLen, recLen, width, height, 3); err != nil {
		return err
	}
	if !class.Valid() {
		return fmt.Errorf("%w: %d", ErrEdgeClass, int(class))
	}
	return nil
}

// CheckBand validates the arguments of a band offset call.
func CheckBand(bitDepth, origLen, recLen, width, height, bandPos int) error {
	if err := checkBlock(bitDepth, origLen, recLen, width, height, 0); err != nil {
		return err
	}
	return checkBandPos(bandPos)
}

func checkBandPos(bandPos int) error {
	if bandPos < 0 || bandPos >= NumBands {
		return fmt.Errorf("%w: %d", ErrBandPosition, bandPos)
	}
	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
