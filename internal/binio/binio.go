// Package binio provides fixed-width, little-endian reads and writes of
// primitive values and length-prefixed strings and blobs. Every on-disk format
// in assetpipe (cache entries and packages) is built on these primitives.
//
// Both Writer and Reader carry a sticky error: once an operation fails, every
// following call is a no-op and Err reports the first failure. Callers encode
// a whole record and check the error once.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxLength bounds any single length-prefixed value a Reader accepts.
const MaxLength = 1 << 31

// ErrTooLarge is reported when a length prefix exceeds the reader's limit.
var ErrTooLarge = errors.New("length prefix exceeds limit")

// Writer encodes primitives to an underlying io.Writer.
type Writer struct {
	w   io.Writer
	n   int64
	err error
	buf [8]byte
}

// NewWriter returns a Writer that encodes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 { return w.n }

// Raw writes p without a length prefix.
func (w *Writer) Raw(p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	w.err = err
}

func (w *Writer) U8(v uint8) {
	w.buf[0] = v
	w.Raw(w.buf[:1])
}

func (w *Writer) U32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.Raw(w.buf[:4])
}

func (w *Writer) U64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.Raw(w.buf[:8])
}

func (w *Writer) I64(v int64) { w.U64(uint64(v)) }

// Bytes writes a u64 length prefix followed by p.
func (w *Writer) Bytes(p []byte) {
	w.U64(uint64(len(p)))
	w.Raw(p)
}

// String writes a u32 length prefix followed by the bytes of s.
func (w *Writer) String(s string) {
	w.U32(uint32(len(s)))
	w.Raw([]byte(s))
}

// StringList writes a u32 count followed by each string.
func (w *Writer) StringList(list []string) {
	w.U32(uint32(len(list)))
	for _, s := range list {
		w.String(s)
	}
}

// Reader decodes primitives from an underlying io.Reader.
type Reader struct {
	r     io.Reader
	limit uint64
	err   error
	buf   [8]byte
}

// NewReader returns a Reader over r that refuses length prefixes above
// MaxLength.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, limit: MaxLength}
}

// SetLimit changes the largest length prefix the reader accepts.
func (r *Reader) SetLimit(limit uint64) { r.limit = limit }

// Err returns the first error encountered, if any. A truncated input is
// reported as io.ErrUnexpectedEOF.
func (r *Reader) Err() error { return r.err }

// Underlying returns the wrapped io.Reader, for callers that stream a section
// of the input through another decoder.
func (r *Reader) Underlying() io.Reader { return r.r }

// Fail records err as the reader's error unless one is already set.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Raw fills p completely from the input.
func (r *Reader) Raw(p []byte) {
	if r.err != nil || len(p) == 0 {
		return
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
	}
}

func (r *Reader) U8() uint8 {
	r.Raw(r.buf[:1])
	if r.err != nil {
		return 0
	}
	return r.buf[0]
}

func (r *Reader) U32() uint32 {
	r.Raw(r.buf[:4])
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[:4])
}

func (r *Reader) U64() uint64 {
	r.Raw(r.buf[:8])
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.buf[:8])
}

func (r *Reader) I64() int64 { return int64(r.U64()) }

// Bytes reads a u64 length prefix and that many bytes.
func (r *Reader) Bytes() []byte {
	n := r.U64()
	return r.blob(n)
}

// String reads a u32 length prefix and that many bytes as a string.
func (r *Reader) String() string {
	n := r.U32()
	return string(r.blob(uint64(n)))
}

// StringList reads a u32 count followed by that many strings.
func (r *Reader) StringList() []string {
	count := r.U32()
	if r.err != nil || count == 0 {
		return nil
	}
	if uint64(count) > r.limit {
		r.Fail(fmt.Errorf("string list of %d entries: %w", count, ErrTooLarge))
		return nil
	}
	list := make([]string, 0, min(count, 1024))
	for i := uint32(0); i < count && r.err == nil; i++ {
		list = append(list, r.String())
	}
	if r.err != nil {
		return nil
	}
	return list
}

// Blob reads exactly n bytes, honoring the length limit.
func (r *Reader) Blob(n uint64) []byte { return r.blob(n) }

func (r *Reader) blob(n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if n > r.limit {
		r.Fail(fmt.Errorf("value of %d bytes: %w", n, ErrTooLarge))
		return nil
	}
	// The buffer grows with the bytes actually read, so a corrupt length
	// prefix over a short input costs no more than the input itself.
	p, err := io.ReadAll(io.LimitReader(r.r, int64(n)))
	if err != nil {
		r.Fail(err)
		return nil
	}
	if uint64(len(p)) != n {
		r.Fail(io.ErrUnexpectedEOF)
		return nil
	}
	return p
}
