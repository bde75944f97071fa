package compress

// ZstdDecompressor reads Zstandard compressed files.
//
// The pure Go decoder from klauspost/compress is used by default. Building with the
// "gozstd" tag and cgo enabled switches to the libzstd binding from valyala/gozstd.
type ZstdDecompressor struct{}

var _ Decompressor = (*ZstdDecompressor)(nil)

// NewZstdDecompressor creates a Zstandard decompressor.
func NewZstdDecompressor() ZstdDecompressor {
	return ZstdDecompressor{}
}
