// Command saodist reports SAO distortion deltas between an original and a
// reconstructed picture.
//
// Usage:
//
//	saodist edge  [options]   Edge offset distortion delta
//	saodist band  [options]   Band offset distortion delta
//	saodist stats [options]   Per-category and per-band error sums
//	saodist apply [options]   Apply offsets and report SSE/PSNR
//
// Pictures are raw luma (.yuv, .raw, .y, needing -size), PNG, JPEG, GIF,
// BMP, TIFF or WebP, each optionally zstd-compressed with a .zst suffix.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/deepteams/sao"
	"github.com/deepteams/sao/internal/plane"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "saodist: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return fmt.Errorf("missing command")
	}
	switch args[0] {
	case "edge":
		return runEdge(args[1:], stdout, stderr)
	case "band":
		return runBand(args[1:], stdout, stderr)
	case "stats":
		return runStats(args[1:], stdout, stderr)
	case "apply":
		return runApply(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  saodist edge  -orig <file> -rec <file> -offsets a,b,c,d,e [-class h|v|135|45|all]
  saodist band  -orig <file> -rec <file> -offsets a,b,c,d -band N
  saodist stats -orig <file> -rec <file> [-class ...]
  saodist apply -rec <file> -o <file> -mode edge|band [-orig <file>] ...

Common options: -bitdepth N, -size WxH (raw input), -rect x,y,w,h.

Run "saodist <command> -h" for command-specific options.
`)
}

// input holds the flags shared by every subcommand.
type input struct {
	orig, rec string
	bitDepth  int
	size      string
	rect      string
}

func (in *input) register(fs *flag.FlagSet) {
	fs.StringVar(&in.orig, "orig", "", "original picture")
	fs.StringVar(&in.rec, "rec", "", "reconstructed picture")
	fs.IntVar(&in.bitDepth, "bitdepth", 8, "sample bit depth 8-16")
	fs.StringVar(&in.size, "size", "", "raw picture size WxH")
	fs.StringVar(&in.rect, "rect", "", "block x,y,w,h (default: whole picture)")
}

// block is a rectangle cut from both pictures.
type block struct {
	bitDepth      int
	width, height int
	orig, rec     []uint16
}

func loadPlane(path string, opts plane.Options) (*plane.Plane, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return plane.Decode(f, path, opts)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func (in *input) options() (plane.Options, error) {
	opts := plane.Options{BitDepth: in.bitDepth}
	if in.size != "" {
		w, h, err := parseSize(in.size)
		if err != nil {
			return opts, err
		}
		opts.Width, opts.Height = w, h
	}
	return opts, nil
}

// load reads the pictures named by the flags and cuts the block. When
// needOrig is false and -orig is empty, the original is left nil.
func (in *input) load(needOrig bool) (*plane.Plane, *block, error) {
	if in.rec == "" {
		return nil, nil, fmt.Errorf("missing -rec")
	}
	if needOrig && in.orig == "" {
		return nil, nil, fmt.Errorf("missing -orig")
	}
	opts, err := in.options()
	if err != nil {
		return nil, nil, err
	}
	rec, err := loadPlane(in.rec, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", in.rec, err)
	}

	x, y, w, h := 0, 0, rec.Width, rec.Height
	if in.rect != "" {
		if x, y, w, h, err = parseRect(in.rect); err != nil {
			rec.Release()
			return nil, nil, err
		}
	}
	b := &block{bitDepth: in.bitDepth, width: w, height: h}
	if b.rec, err = rec.Crop(x, y, w, h); err != nil {
		rec.Release()
		return nil, nil, err
	}
	if in.orig == "" {
		return rec, b, nil
	}

	orig, err := loadPlane(in.orig, opts)
	if err != nil {
		rec.Release()
		return nil, nil, fmt.Errorf("reading %s: %w", in.orig, err)
	}
	defer orig.Release()
	if orig.Width != rec.Width || orig.Height != rec.Height {
		rec.Release()
		return nil, nil, fmt.Errorf("picture sizes differ: %dx%d and %dx%d",
			orig.Width, orig.Height, rec.Width, rec.Height)
	}
	if b.orig, err = orig.Crop(x, y, w, h); err != nil {
		rec.Release()
		return nil, nil, err
	}
	return rec, b, nil
}

// --- edge ---

func runEdge(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("edge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in input
	in.register(fs)
	classFlag := fs.String("class", "all", "edge class: h, v, 135, 45, 0-3 or all")
	offsetsFlag := fs.String("offsets", "", "five offsets, one per edge category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	classes, err := parseClasses(*classFlag)
	if err != nil {
		return fmt.Errorf("edge: %w", err)
	}
	offsets, err := parseEdgeOffsets(*offsetsFlag)
	if err != nil {
		return fmt.Errorf("edge: %w", err)
	}
	rec, b, err := in.load(true)
	if err != nil {
		return fmt.Errorf("edge: %w", err)
	}
	defer rec.Release()
	if err := sao.CheckEdge(b.bitDepth, len(b.orig), len(b.rec), b.width, b.height, classes[0]); err != nil {
		return fmt.Errorf("edge: %w", err)
	}

	var deltas []int
	if b.bitDepth == 8 {
		deltas = edgeDeltas(8, plane.Bytes(b.orig), plane.Bytes(b.rec), b.width, b.height, classes, offsets)
	} else {
		deltas = edgeDeltas(b.bitDepth, b.orig, b.rec, b.width, b.height, classes, offsets)
	}
	for i, c := range classes {
		fmt.Fprintf(stdout, "class %s: delta %d\n", c, deltas[i])
	}
	return nil
}

// edgeDeltas evaluates one offset table for several classes in parallel.
func edgeDeltas[P sao.Pixel](bitDepth int, orig, rec []P, w, h int, classes []sao.EdgeClass,
	offsets [sao.NumEdgeCategories]int) []int {
	deltas := make([]int, len(classes))
	var wg sync.WaitGroup
	for i, c := range classes {
		wg.Add(1)
		go func(i int, c sao.EdgeClass) {
			defer wg.Done()
			deltas[i] = sao.EdgeDistortion(bitDepth, orig, rec, w, h, c, offsets)
		}(i, c)
	}
	wg.Wait()
	return deltas
}

// --- band ---

func runBand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("band", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in input
	in.register(fs)
	bandPos := fs.Int("band", 0, "first band carrying an offset, 0-31")
	offsetsFlag := fs.String("offsets", "", "four offsets for bands band..band+3")
	if err := fs.Parse(args); err != nil {
		return err
	}

	offsets, err := parseBandOffsets(*offsetsFlag)
	if err != nil {
		return fmt.Errorf("band: %w", err)
	}
	rec, b, err := in.load(true)
	if err != nil {
		return fmt.Errorf("band: %w", err)
	}
	defer rec.Release()
	if err := sao.CheckBand(b.bitDepth, len(b.orig), len(b.rec), b.width, b.height, *bandPos); err != nil {
		return fmt.Errorf("band: %w", err)
	}

	var delta int
	if b.bitDepth == 8 {
		delta = sao.BandDistortion(8, plane.Bytes(b.orig), plane.Bytes(b.rec), b.width, b.height, *bandPos, offsets)
	} else {
		delta = sao.BandDistortion(b.bitDepth, b.orig, b.rec, b.width, b.height, *bandPos, offsets)
	}
	fmt.Fprintf(stdout, "band %d: delta %d\n", *bandPos, delta)
	return nil
}

// --- stats ---

func runStats(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in input
	in.register(fs)
	classFlag := fs.String("class", "all", "edge class: h, v, 135, 45, 0-3 or all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	classes, err := parseClasses(*classFlag)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	rec, b, err := in.load(true)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer rec.Release()
	if err := sao.CheckEdge(b.bitDepth, len(b.orig), len(b.rec), b.width, b.height, classes[0]); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	for _, c := range classes {
		sum, count := sao.EdgeStats(b.orig, b.rec, b.width, b.height, c)
		fmt.Fprintf(stdout, "edge %s:\n", c)
		for cat := range sum {
			fmt.Fprintf(stdout, "  category %d: sum %d count %d\n", cat, sum[cat], count[cat])
		}
	}
	sum, count := sao.BandStats(b.bitDepth, b.orig, b.rec, b.width, b.height)
	fmt.Fprintf(stdout, "bands:\n")
	for band := range sum {
		if count[band] == 0 {
			continue
		}
		fmt.Fprintf(stdout, "  band %d: sum %d count %d\n", band, sum[band], count[band])
	}
	return nil
}

// --- apply ---

func runApply(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in input
	in.register(fs)
	mode := fs.String("mode", "edge", "offset type: edge or band")
	classFlag := fs.String("class", "h", "edge class: h, v, 135, 45 or 0-3")
	bandPos := fs.Int("band", 0, "first band carrying an offset, 0-31")
	offsetsFlag := fs.String("offsets", "", "offset table (5 for edge, 4 for band)")
	output := fs.String("o", "", "output picture (format from extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("apply: missing -o")
	}

	rec, b, err := in.load(false)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	defer rec.Release()
	dst := make([]uint16, len(b.rec))

	switch *mode {
	case "edge":
		classes, err := parseClasses(*classFlag)
		if err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		if len(classes) != 1 {
			return fmt.Errorf("apply: -class must name a single class")
		}
		offsets, err := parseEdgeOffsets(*offsetsFlag)
		if err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		if err := sao.CheckEdge(b.bitDepth, len(b.rec), len(dst), b.width, b.height, classes[0]); err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		sao.ApplyEdge(b.bitDepth, b.rec, dst, b.width, b.height, classes[0], offsets)
	case "band":
		offsets, err := parseBandOffsets(*offsetsFlag)
		if err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		if err := sao.CheckBand(b.bitDepth, len(b.rec), len(dst), b.width, b.height, *bandPos); err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		sao.ApplyBand(b.bitDepth, b.rec, dst, b.width, b.height, *bandPos, offsets)
	default:
		return fmt.Errorf("apply: unknown mode %q (use edge/band)", *mode)
	}

	x, y := 0, 0
	if in.rect != "" {
		x, y, _, _, _ = parseRect(in.rect)
	}
	if err := rec.Paste(x, y, b.width, b.height, dst); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	if err := writePlane(*output, rec); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	fmt.Fprintf(stderr, "Filtered %s → %s\n", in.rec, *output)

	if b.orig != nil {
		n := b.width * b.height
		before := sao.SSE(b.orig, b.rec, b.width, b.height)
		after := sao.SSE(b.orig, dst, b.width, b.height)
		fmt.Fprintf(stdout, "sse %d -> %d (%+d)\n", before, after, int64(after)-int64(before))
		fmt.Fprintf(stdout, "psnr %.2f -> %.2f dB\n",
			sao.PSNR(before, n, b.bitDepth), sao.PSNR(after, n, b.bitDepth))
	}
	return nil
}

func writePlane(path string, p *plane.Plane) error {
	if path == "-" {
		return plane.Encode(os.Stdout, p, "stdout.raw")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plane.Encode(f, p, path); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- flag parsing ---

func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q (want WxH)", s)
	}
	if w, err = strconv.Atoi(ws); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if h, err = strconv.Atoi(hs); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return w, h, nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma-separated values, got %d", s, n, len(parts))
	}
	vals := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func parseRect(s string) (x, y, w, h int, err error) {
	v, err := parseInts(s, 4)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid rect: %w", err)
	}
	return v[0], v[1], v[2], v[3], nil
}

func parseEdgeOffsets(s string) ([sao.NumEdgeCategories]int, error) {
	var o [sao.NumEdgeCategories]int
	v, err := parseInts(s, len(o))
	if err != nil {
		return o, fmt.Errorf("invalid offsets: %w", err)
	}
	copy(o[:], v)
	return o, nil
}

func parseBandOffsets(s string) ([sao.NumBandOffsets]int, error) {
	var o [sao.NumBandOffsets]int
	v, err := parseInts(s, len(o))
	if err != nil {
		return o, fmt.Errorf("invalid offsets: %w", err)
	}
	copy(o[:], v)
	return o, nil
}

func parseClasses(s string) ([]sao.EdgeClass, error) {
	switch strings.ToLower(s) {
	case "all":
		return []sao.EdgeClass{sao.EdgeHorizontal, sao.EdgeVertical, sao.EdgeDiagonal135, sao.EdgeDiagonal45}, nil
	case "h", "horizontal", "0":
		return []sao.EdgeClass{sao.EdgeHorizontal}, nil
	case "v", "vertical", "1":
		return []sao.EdgeClass{sao.EdgeVertical}, nil
	case "135", "2":
		return []sao.EdgeClass{sao.EdgeDiagonal135}, nil
	case "45", "3":
		return []sao.EdgeClass{sao.EdgeDiagonal45}, nil
	default:
		return nil, fmt.Errorf("unknown class %q (use h/v/135/45/all)", s)
	}
}
