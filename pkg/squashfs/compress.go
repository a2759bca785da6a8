package squashfs

import (
	"bytes"
	"io"

	kzlib "github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/bgrewell/dts-kit/pkg/dtserr"
)

// Compressor ids, superblock byte 20.
const (
	compressorGzip = 1
	compressorLZMA = 2
	compressorLZO  = 3
	compressorXZ   = 4
	compressorLZ4  = 5
	compressorZSTD = 6
)

// decompressor inflates a single compressed block (metadata or data).
// maxSize bounds the decompressed output: 8192 for metadata blocks, the
// volume's block_size for data and fragment blocks.
type decompressor func(compressed []byte, maxSize int) ([]byte, error)

// newDecompressor returns the decoder for the compressor named in the
// superblock. gzip here means the zlib-wrapped deflate stream SquashFS
// actually writes under that id, matching klauspost/compress/zlib's
// stdlib-compatible reader.
func newDecompressor(id uint16) (decompressor, error) {
	switch id {
	case compressorGzip:
		return decodeZlib, nil
	case compressorLZMA:
		return decodeLZMA, nil
	case compressorXZ:
		return decodeXZ, nil
	case compressorLZ4:
		return decodeLZ4, nil
	case compressorZSTD:
		return decodeZSTD, nil
	case compressorLZO:
		// No lzo decoder is available anywhere in the retrieved
		// corpus (see DESIGN.md); declared but not implemented.
		return nil, dtserr.UnsupportedCompressor(id)
	default:
		return nil, dtserr.UnsupportedCompressor(id)
	}
}

func decodeZlib(compressed []byte, _ int) ([]byte, error) {
	zr, err := kzlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func decodeLZMA(compressed []byte, _ int) ([]byte, error) {
	lr, err := lzma.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(lr)
}

func decodeXZ(compressed []byte, _ int) ([]byte, error) {
	xr, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(xr)
}

func decodeZSTD(compressed []byte, _ int) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// decodeLZ4 decompresses a raw (unframed) LZ4 block, the form SquashFS
// stores data and metadata blocks in. lz4.UncompressBlock needs a
// destination sized to fit the decompressed output; maxSize is the
// volume's declared upper bound (block_size for data, 8192 for
// metadata), grown if that bound turns out to be too small.
func decodeLZ4(compressed []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = metadataBlockSize
	}
	dst := make([]byte, maxSize)
	for {
		n, err := lz4.UncompressBlock(compressed, dst)
		if err == nil {
			return dst[:n], nil
		}
		if len(dst) > 64<<20 {
			return nil, err
		}
		dst = make([]byte, len(dst)*2)
	}
}
