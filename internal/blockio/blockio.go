// Package blockio provides block-compressed stream framing for snapshot
// serialization. Payloads are chunked into fixed-size blocks, each preceded by
// an 8-byte little-endian header:
//
//	[UncompressedSize uint32][CompressedSize uint32][Data...]
//
// CompressedSize == 0 marks a block stored raw, which also covers blocks the
// codec could not shrink.
package blockio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block codec.
type Compression uint8

const (
	// None stores blocks raw.
	None Compression = 0
	// LZ4 uses LZ4 block compression (fast, good for hot data).
	LZ4 Compression = 1
	// Zstd uses zstd block compression (better ratio, good for cold data).
	Zstd Compression = 2
)

// String returns the codec name.
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Valid reports whether c names a known codec.
func (c Compression) Valid() bool {
	return c <= Zstd
}

const (
	blockHeaderSize  = 8
	defaultBlockSize = 256 * 1024
)

// Zstd encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Writer chunks written data into compressed blocks on an underlying writer.
type Writer struct {
	w           io.Writer
	compression Compression
	blockSize   int
	buffer      *bytes.Buffer
	written     int64
}

// NewWriter creates a block writer. blockSize <= 0 selects the default.
func NewWriter(w io.Writer, compression Compression, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	return &Writer{
		w:           w,
		compression: compression,
		blockSize:   blockSize,
		buffer:      bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

// Write buffers p, flushing full blocks as needed.
func (bw *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		space := bw.blockSize - bw.buffer.Len()
		if space <= 0 {
			if err := bw.flushBlock(); err != nil {
				return total, err
			}
			space = bw.blockSize
		}

		toWrite := len(p)
		if toWrite > space {
			toWrite = space
		}

		n, err := bw.buffer.Write(p[:toWrite])
		if err != nil {
			return total, err
		}
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush writes any remaining buffered data as a final block.
func (bw *Writer) Flush() error {
	return bw.flushBlock()
}

// BytesWritten returns the total framed bytes emitted so far.
func (bw *Writer) BytesWritten() int64 {
	return bw.written
}

func (bw *Writer) flushBlock() error {
	if bw.buffer.Len() == 0 {
		return nil
	}

	framed, err := frameBlock(bw.buffer.Bytes(), bw.compression)
	if err != nil {
		return err
	}

	n, err := bw.w.Write(framed)
	if err != nil {
		return err
	}
	bw.written += int64(n)
	bw.buffer.Reset()
	return nil
}

// frameBlock compresses data and prepends the block header. Blocks the codec
// cannot shrink below 90% are stored raw.
func frameBlock(data []byte, compression Compression) ([]byte, error) {
	var compressed []byte
	var err error

	switch compression {
	case LZ4:
		compressed, err = compressLZ4(data)
	case Zstd:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	case None:
		// Stored raw below.
	default:
		return nil, fmt.Errorf("blockio: unknown compression %d", compression)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0) // 0 = raw
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

// Reader decodes a stream of blocks produced by Writer, exposing the
// decompressed payload as an io.Reader.
type Reader struct {
	r           io.Reader
	compression Compression
	block       []byte
	off         int
}

// NewReader creates a block reader for a stream framed with the given codec.
func NewReader(r io.Reader, compression Compression) *Reader {
	return &Reader{
		r:           r,
		compression: compression,
	}
}

// Read fills p from the decompressed stream.
func (br *Reader) Read(p []byte) (int, error) {
	for br.off >= len(br.block) {
		if err := br.readBlock(); err != nil {
			return 0, err
		}
	}
	n := copy(p, br.block[br.off:])
	br.off += n
	return n, nil
}

func (br *Reader) readBlock() error {
	var header [blockHeaderSize]byte
	if _, err := io.ReadFull(br.r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("blockio: truncated block header: %w", err)
		}
		return err
	}

	uncompressedSize := binary.LittleEndian.Uint32(header[0:])
	compressedSize := binary.LittleEndian.Uint32(header[4:])

	if compressedSize == 0 {
		block := make([]byte, uncompressedSize)
		if _, err := io.ReadFull(br.r, block); err != nil {
			return fmt.Errorf("blockio: truncated raw block: %w", err)
		}
		br.block = block
		br.off = 0
		return nil
	}

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(br.r, compressed); err != nil {
		return fmt.Errorf("blockio: truncated compressed block: %w", err)
	}

	result := make([]byte, uncompressedSize)
	switch br.compression {
	case LZ4:
		n, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return fmt.Errorf("blockio: lz4 block: %w", err)
		}
		if uint32(n) != uncompressedSize {
			return errors.New("blockio: decompressed size mismatch")
		}
	case Zstd:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressed, result[:0])
		putZstdDecoder(dec)
		if err != nil {
			return fmt.Errorf("blockio: zstd block: %w", err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return errors.New("blockio: decompressed size mismatch")
		}
		result = decoded
	default:
		return fmt.Errorf("blockio: compressed block under codec %q", br.compression)
	}

	br.block = result
	br.off = 0
	return nil
}
