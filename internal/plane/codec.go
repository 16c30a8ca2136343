package plane

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/deepteams/sao/internal/pool"
)

// Options describes raw input, which carries no header.
type Options struct {
	Width, Height int
	BitDepth      int // 8 to 16; image input is rescaled to it
}

// IsRaw reports whether name refers to headerless luma samples.
func IsRaw(name string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(name, ".zst"))) {
	case ".yuv", ".raw", ".y":
		return true
	}
	return false
}

// Decode reads a plane from r. The format is chosen from name: a ".zst"
// suffix wraps the stream in a zstd decoder, ".yuv", ".raw" and ".y" are raw
// luma (the first Width*Height samples, little-endian above 8 bit) and
// anything else goes through image.Decode.
func Decode(r io.Reader, name string, opts Options) (*Plane, error) {
	if strings.HasSuffix(name, ".zst") {
		dec, err := zstd.NewReader(r,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			return nil, fmt.Errorf("plane: zstd: %w", err)
		}
		defer dec.Close()
		return Decode(dec, strings.TrimSuffix(name, ".zst"), opts)
	}
	if opts.BitDepth < 8 || opts.BitDepth > 16 {
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, opts.BitDepth)
	}
	if IsRaw(name) {
		return decodeRaw(r, opts)
	}
	img, _, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("plane: decoding %s: %w", name, err)
	}
	return FromImage(img, opts.BitDepth)
}

func bytesPerSample(bitDepth int) int {
	if bitDepth > 8 {
		return 2
	}
	return 1
}

func decodeRaw(r io.Reader, opts Options) (*Plane, error) {
	p, err := New(opts.Width, opts.Height, opts.BitDepth)
	if err != nil {
		return nil, err
	}
	bps := bytesPerSample(opts.BitDepth)
	buf := pool.Get(len(p.Pix) * bps)
	defer pool.Put(buf)

	if n, err := io.ReadFull(r, buf); err != nil {
		p.Release()
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, fmt.Errorf("%w: read %d bytes, need %d", ErrShortData, n, len(buf))
		}
		return nil, err
	}
	if bps == 1 {
		for i, b := range buf {
			p.Pix[i] = uint16(b)
		}
	} else {
		for i := range p.Pix {
			p.Pix[i] = binary.LittleEndian.Uint16(buf[2*i:])
		}
	}
	if err := p.validate(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// FromImage extracts the luma of img at the given bit depth. Gray, Gray16
// and YCbCr images are read directly, other models are converted with the
// BT.601 weights of color.Gray16Model.
func FromImage(img image.Image, bitDepth int) (*Plane, error) {
	b := img.Bounds()
	p, err := New(b.Dx(), b.Dy(), bitDepth)
	if err != nil {
		return nil, err
	}
	w := p.Width
	switch m := img.(type) {
	case *image.Gray:
		for y := 0; y < p.Height; y++ {
			off := m.PixOffset(b.Min.X, b.Min.Y+y)
			for x, v := range m.Pix[off : off+w] {
				p.Pix[y*w+x] = rescale(int(v), 8, bitDepth)
			}
		}
	case *image.YCbCr:
		for y := 0; y < p.Height; y++ {
			off := m.YOffset(b.Min.X, b.Min.Y+y)
			for x, v := range m.Y[off : off+w] {
				p.Pix[y*w+x] = rescale(int(v), 8, bitDepth)
			}
		}
	case *image.Gray16:
		for y := 0; y < p.Height; y++ {
			off := m.PixOffset(b.Min.X, b.Min.Y+y)
			row := m.Pix[off : off+2*w]
			for x := 0; x < w; x++ {
				v := int(row[2*x])<<8 | int(row[2*x+1])
				p.Pix[y*w+x] = rescale(v, 16, bitDepth)
			}
		}
	default:
		for y := 0; y < p.Height; y++ {
			for x := 0; x < w; x++ {
				g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				p.Pix[y*w+x] = rescale(int(g.Y), 16, bitDepth)
			}
		}
	}
	return p, nil
}

// rescale converts v from one bit depth to another. Dropped bits are
// truncated, as the image/color models do.
func rescale(v, from, to int) uint16 {
	if to >= from {
		return uint16(v << (to - from))
	}
	return uint16(v >> (from - to))
}

// Encode writes p to w in the format named by name: raw luma for ".yuv",
// ".raw" and ".y", PNG, TIFF or BMP by extension, each optionally wrapped in
// zstd with a ".zst" suffix. BMP output is 8-bit.
func Encode(w io.Writer, p *Plane, name string) error {
	if strings.HasSuffix(name, ".zst") {
		enc, err := zstd.NewWriter(w,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		)
		if err != nil {
			return fmt.Errorf("plane: zstd: %w", err)
		}
		if err := Encode(enc, p, strings.TrimSuffix(name, ".zst")); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	}
	if IsRaw(name) {
		return encodeRaw(w, p)
	}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".png":
		return png.Encode(w, p.image(p.BitDepth > 8))
	case ".tif", ".tiff":
		return tiff.Encode(w, p.image(p.BitDepth > 8), &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		return bmp.Encode(w, p.image(false))
	default:
		return fmt.Errorf("%w: %q", ErrFormat, ext)
	}
}

func encodeRaw(w io.Writer, p *Plane) error {
	bps := bytesPerSample(p.BitDepth)
	buf := pool.Get(len(p.Pix) * bps)
	defer pool.Put(buf)
	if bps == 1 {
		for i, v := range p.Pix {
			buf[i] = byte(v)
		}
	} else {
		for i, v := range p.Pix {
			binary.LittleEndian.PutUint16(buf[2*i:], v)
		}
	}
	_, err := w.Write(buf)
	return err
}

// image returns p as a Gray16 image scaled to 16 bit, or as an 8-bit Gray
// image when wide is false.
func (p *Plane) image(wide bool) image.Image {
	r := image.Rect(0, 0, p.Width, p.Height)
	if !wide {
		g := image.NewGray(r)
		for i, v := range p.Pix {
			g.Pix[i] = uint8(rescale(int(v), p.BitDepth, 8))
		}
		return g
	}
	g := image.NewGray16(r)
	for i, v := range p.Pix {
		s := rescale(int(v), p.BitDepth, 16)
		g.Pix[2*i] = uint8(s >> 8)
		g.Pix[2*i+1] = uint8(s)
	}
	return g
}
