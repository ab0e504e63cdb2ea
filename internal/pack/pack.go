package pack

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/binio"
	"github.com/specialistvlad/assetpipe/internal/compress"
)

// Magic identifies a package file.
const Magic = "EAP1"

// Extension is the conventional package file extension.
const Extension = ".eap"

// SideLoader is the loader name reserved for side stream entries.
const SideLoader = "$side"

const compressedBit = uint64(1) << 63

// Entry is one asset record of a package.
type Entry struct {
	Name     string
	Loader   string
	Format   asset.Format
	Compress bool
	Data     []byte
	// CompressedSize is the on-disk payload size of a compressed entry. It is
	// only set by readers.
	CompressedSize uint64
}

// WriteOptions control package writing.
type WriteOptions struct {
	// DisableCompression stores every payload raw, whatever the entries ask.
	DisableCompression bool
}

// SideEntryName names the entry carrying stream of the asset named owner.
func SideEntryName(owner, stream string) string {
	return owner + "@" + stream
}

// SideStreamName returns the stream name of the side entry named entryName
// when it belongs to the asset named owner. Both owner and stream names may
// contain "@", so a side entry can only be attributed once its owner is known.
func SideStreamName(owner, entryName string) (string, bool) {
	return strings.CutPrefix(entryName, owner+"@")
}

// LoaderTable returns the sorted, deduplicated loader names of entries.
func LoaderTable(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Loader)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Write encodes entries, in order, as a package.
func Write(w io.Writer, entries []Entry, opts WriteOptions) error {
	loaders := LoaderTable(entries)

	bw := binio.NewWriter(w)
	bw.Raw([]byte(Magic))
	bw.U32(uint32(len(entries)))
	bw.U32(uint32(len(loaders)))
	for _, name := range loaders {
		bw.String(name)
	}

	for _, e := range entries {
		index, _ := slices.BinarySearch(loaders, e.Loader)
		bw.String(e.Name)
		bw.U32(uint32(index))
		bw.U32(e.Format.NameHash)
		bw.U32(e.Format.Version)

		size := uint64(len(e.Data))
		if !e.Compress || opts.DisableCompression {
			bw.U64(size)
			bw.Raw(e.Data)
			continue
		}
		stream, err := compress.Compress(e.Data)
		if err != nil {
			return fmt.Errorf("compressing %s: %w", e.Name, err)
		}
		bw.U64(size | compressedBit)
		bw.U64(uint64(len(stream)))
		bw.Raw(stream)
	}

	if err := bw.Err(); err != nil {
		return fmt.Errorf("writing package: %w", err)
	}
	return nil
}

// Reader decodes a package one entry at a time.
type Reader struct {
	r         *binio.Reader
	loaders   []string
	count     uint32
	remaining uint32
}

// NewReader checks the package header and reads the loader table. When r
// reports its unread length, as bytes.Reader does, length prefixes beyond it
// are rejected before anything is allocated.
func NewReader(r io.Reader) (*Reader, error) {
	br := binio.NewReader(r)
	if sized, ok := r.(interface{ Len() int }); ok {
		// No raw payload or name can be longer than the unread input.
		br.SetLimit(uint64(sized.Len()))
	}
	magic := make([]byte, len(Magic))
	br.Raw(magic)
	if br.Err() != nil || string(magic) != Magic {
		return nil, fmt.Errorf("%w: got %q", asset.ErrPackageCorruptMagic, magic)
	}

	count := br.U32()
	loaders := br.StringList()
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("reading package header: %w", err)
	}
	return &Reader{r: br, loaders: loaders, count: count, remaining: count}, nil
}

// Loaders returns the package's loader table.
func (r *Reader) Loaders() []string { return r.loaders }

// Len returns the number of entries the package declares.
func (r *Reader) Len() int { return int(r.count) }

// Next decodes the next entry, decompressing it if needed. It returns io.EOF
// after the last entry.
func (r *Reader) Next() (*Entry, error) {
	if r.remaining == 0 {
		return nil, io.EOF
	}
	r.remaining--

	e := &Entry{}
	br := r.r
	e.Name = br.String()
	index := br.U32()
	e.Format.NameHash = br.U32()
	e.Format.Version = br.U32()
	size := br.U64()
	if err := br.Err(); err != nil {
		return nil, r.fail(e, err)
	}
	if int(index) >= len(r.loaders) {
		return nil, r.fail(e, fmt.Errorf("loader index %d out of range [0,%d)", index, len(r.loaders)))
	}
	e.Loader = r.loaders[index]

	if size&compressedBit == 0 {
		e.Data = br.Blob(size)
		if err := br.Err(); err != nil {
			return nil, r.fail(e, err)
		}
		return e, nil
	}

	e.Compress = true
	data, compressedSize, err := compress.ReadSection(br.Underlying(), size&^compressedBit)
	if err != nil {
		return nil, r.fail(e, err)
	}
	e.Data, e.CompressedSize = data, compressedSize
	return e, nil
}

// fail stops the reader; a package is only readable front to back.
func (r *Reader) fail(e *Entry, err error) error {
	r.remaining = 0
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("reading package entry %q: %w", e.Name, err)
}

// Read decodes a whole package.
func Read(r io.Reader) ([]Entry, []string, error) {
	pr, err := NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]Entry, 0, min(pr.Len(), 4096))
	for {
		e, err := pr.Next()
		if errors.Is(err, io.EOF) {
			return entries, pr.Loaders(), nil
		}
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, *e)
	}
}
