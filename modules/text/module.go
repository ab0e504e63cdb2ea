// Package text generates and loads UTF-8 text assets such as shader sources.
package text

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/modules/raw"
)

const Name = "Text"

var Format = asset.NewFormat(Name, 1)

var Extensions = []string{"txt", "md", "wgsl", "glsl", "hlsl", "csv"}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Document is a loaded text asset.
type Document struct {
	Text string
}

// Lines splits the document on "\n". A trailing newline does not produce an
// empty last line.
func (d *Document) Lines() []string {
	if d.Text == "" {
		return nil
	}
	s := d.Text
	if s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return strings.Split(s, "\n")
}

// Normalize converts CRLF and lone CR line endings to LF and strips a UTF-8
// byte order mark.
func Normalize(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
}

// Generate reads the source file, rejects invalid UTF-8 and writes the
// normalized text.
func Generate(c *plugin.Context) error {
	src := c.SourceFile()
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read source file '%s': %w", src, err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("source file '%s' is not valid UTF-8", src)
	}
	c.Output().Write(Normalize(data))
	raw.ApplyCommonAttributes(c)
	return nil
}

// Load returns the payload as a Document.
func Load(_ context.Context, in plugin.Input) (plugin.Instance, error) {
	return &Document{Text: string(in.Data)}, nil
}

// Register registers the generator, the loader and the extension bindings.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator(Name, Format, plugin.GeneratorFunc(Generate))
	r.RegisterLoader(Name, Format, plugin.LoaderFunc(Load))
	for _, ext := range Extensions {
		r.BindAssetExtension(ext, Name, Name)
	}
}
