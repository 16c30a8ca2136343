package dsp

// SAO kernel variables for dispatch.
// These are set by Init() and can be overridden by platform-specific
// implementations. The Generic functions are the reference they must match.
var (
	// 8-bit samples.
	SAOEdgeDDistortion8 func(bitDepth int, orig, rec []uint8, width, height, eoClass int,
		offsets [NumSAOEdgeCategories]int) int
	SAOBandDDistortion8 func(bitDepth int, orig, rec []uint8, width, height, bandPos int,
		offsets [NumSAOBandOffsets]int) int

	// 9 to 16 bit samples.
	SAOEdgeDDistortion16 func(bitDepth int, orig, rec []uint16, width, height, eoClass int,
		offsets [NumSAOEdgeCategories]int) int
	SAOBandDDistortion16 func(bitDepth int, orig, rec []uint16, width, height, bandPos int,
		offsets [NumSAOBandOffsets]int) int
)

// Init initialises all function pointers to their default implementations.
// It runs from the package init and may be called again to restore the
// defaults after an override.
func Init() {
	SAOEdgeDDistortion8 = saoEdgeDDistortionDirect[uint8]
	SAOBandDDistortion8 = saoBandDDistortionDirect[uint8]
	SAOEdgeDDistortion16 = saoEdgeDDistortionDirect[uint16]
	SAOBandDDistortion16 = saoBandDDistortionDirect[uint16]
}

func init() {
	Init()
}
