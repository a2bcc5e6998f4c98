package erisieve

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chemkit/erisieve/basis"
	"github.com/chemkit/erisieve/internal/blockio"
	"github.com/chemkit/erisieve/internal/pairset"
	"github.com/chemkit/erisieve/internal/symmat"
)

// Snapshot layout, all little endian:
//
//	header (uncompressed):
//	  magic         uint32   "ERSV"
//	  version       uint32
//	  flags         uint8    bit 0: exchange tables present
//	  compression   uint8
//	  padding       [2]byte
//	  nshells       uint32
//	  nfunctions    uint32
//	  threshold     float64
//	  maxValue      float64
//	shell shape (uncompressed): nshells * uint32 function counts
//	tables (block compressed, see internal/blockio):
//	  shell pair values       nshells^2 float64
//	  function pair values    nfunctions^2 float64
//	  exchange values         nshells^2 float64   (CSAM only)
//	  function square roots   nfunctions float64  (CSAM only)
//	trailer (uncompressed): crc32 (IEEE) uint32 over everything above
//
// Derived pair lists, reverse maps and adjacency lists are not stored; they
// are rebuilt from the tables and the stored threshold on load.

const (
	// SnapshotMagic identifies sieve snapshot streams (ASCII: "ERSV").
	SnapshotMagic = 0x45525356
	// SnapshotVersion is the current snapshot format version (v1.0.0).
	SnapshotVersion = 0x00010000

	snapshotFlagCSAM = 1 << 0
)

var (
	// ErrInvalidSnapshotMagic is returned when a stream does not start with
	// the snapshot magic number.
	ErrInvalidSnapshotMagic = errors.New("erisieve: invalid snapshot magic number")

	// ErrUnsupportedSnapshotVersion is returned for snapshot versions this
	// package cannot decode.
	ErrUnsupportedSnapshotVersion = errors.New("erisieve: unsupported snapshot version")

	// ErrInvalidSnapshotCompression is returned for unknown compression tags.
	ErrInvalidSnapshotCompression = errors.New("erisieve: unknown snapshot compression")

	// ErrSnapshotChecksum is returned when the stored checksum does not match
	// the stream contents.
	ErrSnapshotChecksum = errors.New("erisieve: snapshot checksum mismatch")
)

// ErrBasisMismatch is a named error type returned when a snapshot was taken
// over a differently shaped basis set than the one supplied on load.
type ErrBasisMismatch struct {
	Field    string // Field names the mismatching dimension
	Snapshot int    // Snapshot is the value stored in the snapshot
	Basis    int    // Basis is the value of the supplied basis set
}

// Error returns the error message for a basis shape mismatch.
func (e *ErrBasisMismatch) Error() string {
	return fmt.Sprintf("erisieve: snapshot basis mismatch: %s: snapshot %d, basis %d", e.Field, e.Snapshot, e.Basis)
}

// SnapshotCompression selects the codec for snapshot table blocks.
type SnapshotCompression uint8

const (
	// SnapshotCompressionNone stores table blocks raw.
	SnapshotCompressionNone SnapshotCompression = iota
	// SnapshotCompressionLZ4 compresses table blocks with LZ4.
	SnapshotCompressionLZ4
	// SnapshotCompressionZstd compresses table blocks with zstd.
	SnapshotCompressionZstd
)

// String returns the codec name.
func (c SnapshotCompression) String() string {
	return blockio.Compression(c).String()
}

type snapshotHeader struct {
	Magic       uint32
	Version     uint32
	Flags       uint8
	Compression uint8
	_           [2]byte
	NShells     uint32
	NFunctions  uint32
	Threshold   float64
	MaxValue    float64
}

// WriteSnapshot serializes the magnitude tables, threshold and basis shape
// to w using the configured snapshot compression.
func (sv *Sieve) WriteSnapshot(w io.Writer) error {
	start := time.Now()
	n, err := sv.writeSnapshot(w)
	elapsed := time.Since(start)

	sv.opts.Metrics.RecordSnapshotWrite(n, elapsed, err)
	sv.opts.Logger.LogSnapshotWrite(n, elapsed, err)

	return err
}

func (sv *Sieve) writeSnapshot(w io.Writer) (int64, error) {
	bc := blockio.Compression(sv.opts.SnapshotCompression)
	if !bc.Valid() {
		return 0, ErrInvalidSnapshotCompression
	}

	cw := blockio.NewChecksumWriter(w)

	var flags uint8
	if sv.opts.CSAM {
		flags |= snapshotFlagCSAM
	}

	hdr := snapshotHeader{
		Magic:       SnapshotMagic,
		Version:     SnapshotVersion,
		Flags:       flags,
		Compression: uint8(bc),
		NShells:     uint32(sv.nshell),
		NFunctions:  uint32(sv.nbf),
		Threshold:   sv.threshold,
		MaxValue:    sv.maxValue,
	}
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return cw.BytesWritten(), fmt.Errorf("erisieve: snapshot header: %w", err)
	}

	counts := make([]uint32, sv.nshell)
	for i, nf := range sv.shellNF {
		counts[i] = uint32(nf)
	}
	if err := binary.Write(cw, binary.LittleEndian, counts); err != nil {
		return cw.BytesWritten(), fmt.Errorf("erisieve: snapshot shell shape: %w", err)
	}

	bw := blockio.NewWriter(cw, bc, 0)
	if err := writeFloat64s(bw, sv.shellValues.Data()); err != nil {
		return cw.BytesWritten(), fmt.Errorf("erisieve: snapshot shell pair values: %w", err)
	}
	if err := writeFloat64s(bw, sv.funcValues.Data()); err != nil {
		return cw.BytesWritten(), fmt.Errorf("erisieve: snapshot function pair values: %w", err)
	}
	if sv.opts.CSAM {
		if err := writeFloat64s(bw, sv.exchValues.Data()); err != nil {
			return cw.BytesWritten(), fmt.Errorf("erisieve: snapshot exchange values: %w", err)
		}
		if err := writeFloat64s(bw, sv.funcSqrt); err != nil {
			return cw.BytesWritten(), fmt.Errorf("erisieve: snapshot function square roots: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.BytesWritten(), fmt.Errorf("erisieve: snapshot tables: %w", err)
	}

	// Trailer bypasses the checksum writer: it covers everything above it.
	if err := binary.Write(w, binary.LittleEndian, cw.Sum32()); err != nil {
		return cw.BytesWritten(), fmt.Errorf("erisieve: snapshot trailer: %w", err)
	}

	return cw.BytesWritten() + 4, nil
}

// ReadSnapshot restores a sieve from a snapshot written by WriteSnapshot.
// The basis set must have the same shape (shell count, function count,
// per-shell function counts) as the one the snapshot was taken over.
//
// The restored sieve carries no integral engine: queries and threshold
// changes work, but the tables cannot be recomputed. Threshold and CSAM
// come from the snapshot, so those options are ignored; logger, metrics
// and snapshot compression options apply as usual.
func ReadSnapshot(r io.Reader, bs *basis.Set, optFns ...func(o *Options)) (*Sieve, error) {
	opts := normalizeOptions(optFns)

	start := time.Now()
	sv, n, err := readSnapshot(r, bs, opts)
	elapsed := time.Since(start)

	opts.Metrics.RecordSnapshotRead(n, elapsed, err)
	opts.Logger.LogSnapshotRead(n, elapsed, err)

	if err != nil {
		return nil, err
	}

	return sv, nil
}

func readSnapshot(r io.Reader, bs *basis.Set, opts Options) (*Sieve, int64, error) {
	if bs == nil {
		return nil, 0, ErrNilBasis
	}
	if opts.QQR {
		return nil, 0, ErrQQRUnsupported
	}
	if !pairset.Fits(bs.NFunctions()) {
		return nil, 0, &ErrBasisTooLarge{NFunctions: bs.NFunctions()}
	}

	cr := blockio.NewChecksumReader(r)

	var hdr snapshotHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, cr.BytesRead(), fmt.Errorf("erisieve: snapshot header: %w", err)
	}

	if hdr.Magic != SnapshotMagic {
		return nil, cr.BytesRead(), ErrInvalidSnapshotMagic
	}
	if hdr.Version != SnapshotVersion {
		return nil, cr.BytesRead(), fmt.Errorf("%w: %#08x", ErrUnsupportedSnapshotVersion, hdr.Version)
	}

	bc := blockio.Compression(hdr.Compression)
	if !bc.Valid() {
		return nil, cr.BytesRead(), ErrInvalidSnapshotCompression
	}

	if int(hdr.NShells) != bs.NShells() {
		return nil, cr.BytesRead(), &ErrBasisMismatch{Field: "shells", Snapshot: int(hdr.NShells), Basis: bs.NShells()}
	}
	if int(hdr.NFunctions) != bs.NFunctions() {
		return nil, cr.BytesRead(), &ErrBasisMismatch{Field: "functions", Snapshot: int(hdr.NFunctions), Basis: bs.NFunctions()}
	}

	counts := make([]uint32, hdr.NShells)
	if err := binary.Read(cr, binary.LittleEndian, counts); err != nil {
		return nil, cr.BytesRead(), fmt.Errorf("erisieve: snapshot shell shape: %w", err)
	}
	for i, c := range counts {
		if int(c) != bs.Shell(i).NFunctions() {
			return nil, cr.BytesRead(), &ErrBasisMismatch{
				Field:    fmt.Sprintf("shell %d functions", i),
				Snapshot: int(c),
				Basis:    bs.Shell(i).NFunctions(),
			}
		}
	}

	if math.IsNaN(hdr.Threshold) || hdr.Threshold < 0 {
		return nil, cr.BytesRead(), &ErrInvalidThreshold{Threshold: hdr.Threshold}
	}
	if math.IsNaN(hdr.MaxValue) || hdr.MaxValue <= 0 {
		return nil, cr.BytesRead(), ErrDegenerateBasis
	}

	sv := &Sieve{
		bs:       bs,
		opts:     opts,
		nshell:   int(hdr.NShells),
		nbf:      int(hdr.NFunctions),
		maxValue: hdr.MaxValue,
	}
	sv.opts.CSAM = hdr.Flags&snapshotFlagCSAM != 0

	sv.shellNF = make([]int, sv.nshell)
	sv.shellOff = make([]int, sv.nshell)
	for i := 0; i < sv.nshell; i++ {
		sv.shellNF[i] = bs.Shell(i).NFunctions()
		sv.shellOff[i] = bs.FunctionOffset(i)
	}

	br := blockio.NewReader(cr, bc)

	shellData := make([]float64, sv.nshell*sv.nshell)
	if err := readFloat64s(br, shellData); err != nil {
		return nil, cr.BytesRead(), fmt.Errorf("erisieve: snapshot shell pair values: %w", err)
	}
	funcData := make([]float64, sv.nbf*sv.nbf)
	if err := readFloat64s(br, funcData); err != nil {
		return nil, cr.BytesRead(), fmt.Errorf("erisieve: snapshot function pair values: %w", err)
	}

	var err error
	if sv.shellValues, err = symmat.FromData(sv.nshell, shellData); err != nil {
		return nil, cr.BytesRead(), err
	}
	if sv.funcValues, err = symmat.FromData(sv.nbf, funcData); err != nil {
		return nil, cr.BytesRead(), err
	}

	if sv.opts.CSAM {
		exchData := make([]float64, sv.nshell*sv.nshell)
		if err := readFloat64s(br, exchData); err != nil {
			return nil, cr.BytesRead(), fmt.Errorf("erisieve: snapshot exchange values: %w", err)
		}
		if sv.exchValues, err = symmat.FromData(sv.nshell, exchData); err != nil {
			return nil, cr.BytesRead(), err
		}

		sv.funcSqrt = make([]float64, sv.nbf)
		if err := readFloat64s(br, sv.funcSqrt); err != nil {
			return nil, cr.BytesRead(), fmt.Errorf("erisieve: snapshot function square roots: %w", err)
		}
	}

	// Trailer bypasses the checksum reader: it covers everything above it.
	var want uint32
	if err := binary.Read(r, binary.LittleEndian, &want); err != nil {
		return nil, cr.BytesRead(), fmt.Errorf("erisieve: snapshot trailer: %w", err)
	}
	if want != cr.Sum32() {
		return nil, cr.BytesRead() + 4, ErrSnapshotChecksum
	}

	sv.applyThreshold(hdr.Threshold)

	return sv, cr.BytesRead() + 4, nil
}

// SaveSnapshotFile writes a snapshot to a temporary file in the target
// directory and atomically renames it over path.
func (sv *Sieve) SaveSnapshotFile(path string) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return fmt.Errorf("erisieve: snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := sv.WriteSnapshot(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("erisieve: flush snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("erisieve: sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("erisieve: close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("erisieve: rename snapshot: %w", err)
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""

	return nil
}

// LoadSnapshotFile restores a sieve from a snapshot file written by
// SaveSnapshotFile.
func LoadSnapshotFile(path string, bs *basis.Set, optFns ...func(o *Options)) (*Sieve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("erisieve: open snapshot: %w", err)
	}
	defer f.Close()

	return ReadSnapshot(bufio.NewReader(f), bs, optFns...)
}

const floatChunk = 8192 // float64 values per I/O chunk

func writeFloat64s(w io.Writer, data []float64) error {
	scratch := make([]byte, floatChunk*8)
	for len(data) > 0 {
		n := min(len(data), floatChunk)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint64(scratch[i*8:], math.Float64bits(data[i]))
		}
		if _, err := w.Write(scratch[:n*8]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func readFloat64s(r io.Reader, data []float64) error {
	scratch := make([]byte, floatChunk*8)
	for len(data) > 0 {
		n := min(len(data), floatChunk)
		if _, err := io.ReadFull(r, scratch[:n*8]); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			data[i] = math.Float64frombits(binary.LittleEndian.Uint64(scratch[i*8:]))
		}
		data = data[n:]
	}
	return nil
}
