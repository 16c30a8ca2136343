// Package plane loads and stores single-channel sample planes used as the
// original and reconstructed pictures of SAO analysis. Planes come from raw
// luma files, optionally zstd-compressed, or from any decodable image.
package plane

import (
	"errors"
	"fmt"

	"github.com/deepteams/sao/internal/pool"
)

var (
	ErrFormat      = errors.New("plane: unsupported format")
	ErrSize        = errors.New("plane: invalid dimensions")
	ErrShortData   = errors.New("plane: not enough sample data")
	ErrSampleRange = errors.New("plane: sample exceeds bit depth")
	ErrBitDepth    = errors.New("plane: unsupported bit depth")
	ErrRect        = errors.New("plane: rectangle outside plane")
)

// Plane is a row-major plane of samples with a stride equal to its width.
type Plane struct {
	Width, Height int
	BitDepth      int
	Pix           []uint16
}

// New returns a plane backed by a pooled buffer. Its samples are undefined.
// Call Release when the plane is no longer used.
func New(width, height, bitDepth int) (*Plane, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, width, height)
	}
	if bitDepth < 8 || bitDepth > 16 {
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	return &Plane{
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
		Pix:      pool.GetUint16(width * height),
	}, nil
}

// Release returns the sample buffer to the pool. The plane must not be used
// afterwards.
func (p *Plane) Release() {
	if p.Pix != nil {
		pool.PutUint16(p.Pix)
		p.Pix = nil
	}
}

// MaxValue returns the largest sample value of the plane's bit depth.
func (p *Plane) MaxValue() int {
	return 1<<p.BitDepth - 1
}

func (p *Plane) checkRect(x, y, w, h int) error {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > p.Width || y+h > p.Height {
		return fmt.Errorf("%w: %d,%d %dx%d in %dx%d", ErrRect, x, y, w, h, p.Width, p.Height)
	}
	return nil
}

// Crop copies the w x h rectangle at (x, y) into a new contiguous block.
func (p *Plane) Crop(x, y, w, h int) ([]uint16, error) {
	if err := p.checkRect(x, y, w, h); err != nil {
		return nil, err
	}
	block := make([]uint16, w*h)
	for row := 0; row < h; row++ {
		src := p.Pix[(y+row)*p.Width+x:]
		copy(block[row*w:(row+1)*w], src[:w])
	}
	return block, nil
}

// Paste writes a contiguous w x h block back at (x, y).
func (p *Plane) Paste(x, y, w, h int, block []uint16) error {
	if err := p.checkRect(x, y, w, h); err != nil {
		return err
	}
	if len(block) < w*h {
		return fmt.Errorf("%w: block has %d samples, need %d", ErrShortData, len(block), w*h)
	}
	for row := 0; row < h; row++ {
		copy(p.Pix[(y+row)*p.Width+x:(y+row)*p.Width+x+w], block[row*w:(row+1)*w])
	}
	return nil
}

// Bytes narrows an 8-bit block to bytes.
func Bytes(block []uint16) []byte {
	out := make([]byte, len(block))
	for i, v := range block {
		out[i] = byte(v)
	}
	return out
}

// Widen is the inverse of Bytes.
func Widen(block []byte) []uint16 {
	out := make([]uint16, len(block))
	for i, v := range block {
		out[i] = uint16(v)
	}
	return out
}

// validate reports the first sample above the bit depth maximum.
func (p *Plane) validate() error {
	maxVal := uint16(p.MaxValue())
	for i, v := range p.Pix {
		if v > maxVal {
			return fmt.Errorf("%w: %d at (%d,%d), max %d", ErrSampleRange, v, i%p.Width, i/p.Width, maxVal)
		}
	}
	return nil
}
