// Package grf reads Ragnarok Online GRF archives (version 0x200) and serves
// their entries through io/fs.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/Faultbox/midgard-gl/pkg/encoding"
)

const (
	grfMagic   = "Master of Magic"
	headerSize = 46
	version200 = 0x200

	entryFile      = 0x01
	entryEncrypted = 0x02 | 0x04
)

// Archive errors.
var (
	ErrInvalidMagic = errors.New("invalid GRF magic")
	ErrVersion      = errors.New("unsupported GRF version")
	ErrEncrypted    = errors.New("encrypted GRF entry")
	ErrTruncated    = errors.New("truncated GRF data")
)

// Header contains GRF file header information.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry is one file of the archive.
type Entry struct {
	Name             string
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Archive is an opened GRF archive. Reads go through io.ReaderAt and are safe
// for concurrent use.
type Archive struct {
	r       io.ReaderAt
	closer  io.Closer
	header  Header
	entries map[string]*Entry
}

var (
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
)

// Open opens a GRF archive file.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	a, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.closer = f
	return a, nil
}

// NewReader reads the archive header and file table from r.
func NewReader(r io.ReaderAt) (*Archive, error) {
	a := &Archive{r: r, entries: make(map[string]*Entry)}
	if err := a.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readFileTable(); err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}
	return a, nil
}

// Close closes the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *Archive) readHeader() error {
	buf := make([]byte, headerSize)
	if _, err := a.r.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != version200 {
		return fmt.Errorf("%w: 0x%x", ErrVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	off := int64(a.header.TableOffset) + headerSize
	var sizes [8]byte
	if _, err := a.r.ReadAt(sizes[:], off); err != nil {
		return fmt.Errorf("%w: table sizes: %v", ErrTruncated, err)
	}
	compressedSize := binary.LittleEndian.Uint32(sizes[0:])
	uncompressedSize := binary.LittleEndian.Uint32(sizes[4:])

	compressed := make([]byte, compressedSize)
	if _, err := a.r.ReadAt(compressed, off+8); err != nil {
		return fmt.Errorf("%w: table: %v", ErrTruncated, err)
	}
	table, err := inflate(compressed, uncompressedSize)
	if err != nil {
		return fmt.Errorf("table: %w", err)
	}

	fileCount := a.header.FileCount - a.header.Seed - 7
	pos := 0
	for i := uint32(0); i < fileCount; i++ {
		end := bytes.IndexByte(table[pos:], 0)
		if end < 0 || pos+end+1+17 > len(table) {
			return fmt.Errorf("%w: entry %d", ErrTruncated, i)
		}
		raw := table[pos : pos+end]
		pos += end + 1

		rec := table[pos : pos+17]
		pos += 17
		e := &Entry{
			Name:             encoding.SlashPath(encoding.DecodeEUCKR(raw)),
			CompressedSize:   binary.LittleEndian.Uint32(rec[0:]),
			AlignedSize:      binary.LittleEndian.Uint32(rec[4:]),
			UncompressedSize: binary.LittleEndian.Uint32(rec[8:]),
			Flags:            rec[12],
			Offset:           binary.LittleEndian.Uint32(rec[13:]),
		}
		if e.Flags&entryFile != 0 {
			a.entries[encoding.NormalizePath(e.Name)] = e
		}
	}
	return nil
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of files.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Contains checks if a file exists.
func (a *Archive) Contains(name string) bool {
	_, ok := a.entries[encoding.NormalizePath(name)]
	return ok
}

// Entry returns the table entry of a file.
func (a *Archive) Entry(name string) (*Entry, bool) {
	e, ok := a.entries[encoding.NormalizePath(name)]
	return e, ok
}

// ReadFile implements fs.ReadFileFS.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e, ok := a.entries[encoding.NormalizePath(name)]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	data, err := a.read(e)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return data, nil
}

func (a *Archive) read(e *Entry) ([]byte, error) {
	if e.Flags&entryEncrypted != 0 {
		return nil, ErrEncrypted
	}
	buf := make([]byte, e.CompressedSize)
	if _, err := a.r.ReadAt(buf, int64(e.Offset)+headerSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if e.CompressedSize == e.UncompressedSize {
		return buf, nil
	}
	return inflate(buf, e.UncompressedSize)
}

func inflate(data []byte, size uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrTruncated, err)
	}
	return out, nil
}
