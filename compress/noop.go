package compress

// NoOpDecompressor handles comp_method=0: the block payload is already the
// decompressed record/key-block bytes.
type NoOpDecompressor struct{}

var _ Decompressor = NoOpDecompressor{}

// Decompress returns data unchanged. It shares the input's backing array;
// callers that need an owned copy must clone it themselves.
func (NoOpDecompressor) Decompress(data []byte, _ int) ([]byte, error) {
	return data, nil
}
