// Package sao computes the distortion change produced by the HEVC sample
// adaptive offset (SAO) in-loop filter, for the two classification schemes an
// encoder evaluates during its rate-distortion search: edge offset (EO) and
// band offset (BO).
//
// The package does not choose offsets or write bitstream syntax. Given an
// original block, its reconstruction and a candidate offset table, it reports
// how much the sum of squared error would change if the offsets were applied.
// A negative result means the offsets reduce distortion.
//
// Basic usage:
//
//	delta := sao.EdgeDistortion(8, orig, rec, 64, 64, sao.EdgeHorizontal, [5]int{0, 2, 1, -1, -2})
//	delta = sao.BandDistortion(8, orig, rec, 64, 64, 12, [4]int{3, 1, 0, -2})
//
// Samples are uint8 for 8-bit content and uint16 for 9 to 16 bit content.
// Blocks are row-major with a stride equal to their width. All functions are
// pure and safe for concurrent use; input buffers are never modified or
// retained.
//
// Inputs that break a documented precondition (bit depth outside 8..16,
// buffers shorter than width*height, an edge block narrower than 3 samples,
// an unknown edge class or a band position outside 0..31) make the functions
// panic with one of the Err values, instead of returning a wrong delta. Use
// CheckEdge and CheckBand to validate untrusted input first.
package sao
