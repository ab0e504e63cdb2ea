package arena

import "unsafe"

// Str addresses a string owned by a Strings pool.
type Str struct {
	chunk  uint32
	offset uint32
	length uint32
}

// Strings is a bump allocator for string bytes. Strings handed out by Get
// alias pool memory and remain valid until Reset.
type Strings struct {
	chunks    [][]byte
	chunkSize int
	bytes     int
}

// NewStrings creates a string pool with the given chunk size in bytes.
func NewStrings(chunkSize int) *Strings {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	return &Strings{chunkSize: chunkSize}
}

// Intern copies s into the pool.
func (p *Strings) Intern(s string) Str {
	if len(s) == 0 {
		return Str{}
	}
	last := len(p.chunks) - 1
	if last < 0 || cap(p.chunks[last])-len(p.chunks[last]) < len(s) {
		// Oversized strings get a dedicated chunk.
		p.chunks = append(p.chunks, make([]byte, 0, max(p.chunkSize, len(s))))
		last++
	}
	offset := len(p.chunks[last])
	p.chunks[last] = append(p.chunks[last], s...)
	p.bytes += len(s)
	return Str{chunk: uint32(last), offset: uint32(offset), length: uint32(len(s))}
}

// Get returns the string behind ref without copying.
func (p *Strings) Get(ref Str) string {
	if ref.length == 0 {
		return ""
	}
	b := p.chunks[ref.chunk][ref.offset : ref.offset+ref.length]
	return unsafe.String(&b[0], len(b))
}

// Bytes reports how many string bytes the pool holds.
func (p *Strings) Bytes() int { return p.bytes }

// Reset releases every string at once.
func (p *Strings) Reset() {
	p.chunks = nil
	p.bytes = 0
}
