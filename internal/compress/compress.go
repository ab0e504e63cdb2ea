// Package compress implements the compressed section used by package files:
// a u64 compressed-size prefix followed by a raw DEFLATE stream. Data is fed
// through the codec in fixed ChunkSize windows so working memory stays
// bounded regardless of payload size.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/specialistvlad/assetpipe/internal/binio"
)

// ChunkSize is the window, in bytes, fed to the encoder and read back from the
// decoder at a time.
const ChunkSize = 256

// initialCap bounds the output buffer allocated before any data is inflated.
const initialCap = 64 << 10

// Level is the DEFLATE level used for package sections.
const Level = flate.BestCompression

// ErrSizeMismatch is returned when a section inflates to a different length
// than the caller expected.
var ErrSizeMismatch = errors.New("decompressed size mismatch")

// Compress deflates data and returns the raw stream without a size prefix.
func Compress(data []byte) ([]byte, error) {
	var out bytes.Buffer
	fw, err := flate.NewWriter(&out, Level)
	if err != nil {
		return nil, fmt.Errorf("creating deflate writer: %w", err)
	}
	for offset := 0; offset < len(data); offset += ChunkSize {
		end := min(offset+ChunkSize, len(data))
		if _, err := fw.Write(data[offset:end]); err != nil {
			return nil, fmt.Errorf("deflating chunk at %d: %w", offset, err)
		}
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("finishing deflate stream: %w", err)
	}
	return out.Bytes(), nil
}

// Decompress inflates a raw stream that must expand to exactly rawSize bytes.
func Decompress(stream []byte, rawSize uint64) ([]byte, error) {
	return inflate(bytes.NewReader(stream), rawSize)
}

// WriteSection writes data as a compressed section: u64 compressed size, then
// the DEFLATE stream.
func WriteSection(w io.Writer, data []byte) error {
	stream, err := Compress(data)
	if err != nil {
		return err
	}
	bw := binio.NewWriter(w)
	bw.U64(uint64(len(stream)))
	bw.Raw(stream)
	return bw.Err()
}

// ReadSection reads a compressed section written by WriteSection and returns
// the rawSize bytes it inflates to. It also returns the compressed size read
// from the prefix. On return r is positioned just past the section.
func ReadSection(r io.Reader, rawSize uint64) ([]byte, uint64, error) {
	br := binio.NewReader(r)
	compressedSize := br.U64()
	if err := br.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading compressed section size: %w", err)
	}
	section := io.LimitReader(r, int64(compressedSize))
	data, err := inflate(section, rawSize)
	if err != nil {
		return nil, compressedSize, err
	}
	// The decoder may stop before consuming trailing padding of the section.
	if _, err := io.Copy(io.Discard, section); err != nil {
		return nil, compressedSize, fmt.Errorf("skipping section tail: %w", err)
	}
	return data, compressedSize, nil
}

func inflate(r io.Reader, rawSize uint64) ([]byte, error) {
	if rawSize > binio.MaxLength {
		return nil, fmt.Errorf("section of %d bytes: %w", rawSize, binio.ErrTooLarge)
	}
	fr := flate.NewReader(r)
	defer fr.Close()

	// The output grows window by window instead of trusting rawSize up front.
	out := make([]byte, 0, min(rawSize, initialCap))
	var window [ChunkSize]byte
	for offset := uint64(0); offset < rawSize; offset += ChunkSize {
		want := min(ChunkSize, rawSize-offset)
		if _, err := io.ReadFull(fr, window[:want]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("stream ended at %d of %d bytes: %w", offset, rawSize, ErrSizeMismatch)
			}
			return nil, fmt.Errorf("inflating chunk at %d: %w", offset, err)
		}
		out = append(out, window[:want]...)
	}

	var extra [1]byte
	n, err := fr.Read(extra[:])
	if n > 0 {
		return nil, fmt.Errorf("stream longer than %d bytes: %w", rawSize, ErrSizeMismatch)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("finishing inflate: %w", err)
	}
	return out, nil
}
