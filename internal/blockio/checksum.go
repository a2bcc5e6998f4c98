package blockio

import (
	"hash"
	"hash/crc32"
	"io"
)

// Snapshot integrity uses CRC32 (IEEE) over the framed byte stream.

// ChecksumWriter wraps an io.Writer and computes a running CRC32 checksum of
// everything written through it, along with the byte count.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
	n    int64
}

// NewChecksumWriter creates a new checksumming writer.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{
		w:    w,
		hash: crc32.NewIEEE(),
	}
}

// Write writes p to the underlying writer and updates the checksum.
func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if n > 0 {
		_, _ = cw.hash.Write(p[:n])
		cw.n += int64(n)
	}
	return n, err
}

// Sum32 returns the checksum of all bytes written so far.
func (cw *ChecksumWriter) Sum32() uint32 {
	return cw.hash.Sum32()
}

// BytesWritten returns the number of bytes written so far.
func (cw *ChecksumWriter) BytesWritten() int64 {
	return cw.n
}

// ChecksumReader wraps an io.Reader and computes a running CRC32 checksum of
// everything read through it, along with the byte count.
type ChecksumReader struct {
	r    io.Reader
	hash hash.Hash32
	n    int64
}

// NewChecksumReader creates a new checksumming reader.
func NewChecksumReader(r io.Reader) *ChecksumReader {
	return &ChecksumReader{
		r:    r,
		hash: crc32.NewIEEE(),
	}
}

// Read reads from the underlying reader and updates the checksum.
func (cr *ChecksumReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		_, _ = cr.hash.Write(p[:n])
		cr.n += int64(n)
	}
	return n, err
}

// Sum32 returns the checksum of all bytes read so far.
func (cr *ChecksumReader) Sum32() uint32 {
	return cr.hash.Sum32()
}

// BytesRead returns the number of bytes read so far.
func (cr *ChecksumReader) BytesRead() int64 {
	return cr.n
}
