package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// CandidateNames are the manifest file names Find looks for, in priority order.
var CandidateNames = []string{"assets.hcl", "assets.json", "assets.yaml", "assets.yml"}

// ErrNoManifest is returned by Find when a directory holds no manifest.
var ErrNoManifest = errors.New("no manifest found")

// Reserved entry attributes interpreted by the pipeline itself.
const (
	KeyName      = "name"
	KeyRegex     = "regex"
	KeyLoader    = "loader"
	KeyGenerator = "generator"
	KeyAssets    = "assets"
)

// Manifest is a parsed manifest document.
type Manifest struct {
	// Path is the absolute path of the manifest file.
	Path string
	// Dir is the directory relative paths and asset names are resolved against.
	Dir string
	// Root is the whole document, including the assets list.
	Root    Fragment
	Entries []*Entry
}

// Entry is one element of the manifest's assets list.
type Entry struct {
	Index     int
	Name      string
	Regex     string
	Loader    string
	Generator string
	Fragment  Fragment
}

// Decoder turns the bytes of one manifest format into a document value. The
// returned value must be an object with an "assets" attribute holding a list
// or tuple of objects.
type Decoder interface {
	Decode(src []byte, filename string) (cty.Value, error)
}

// decoders maps file extensions to format decoders.
var decoders = map[string]Decoder{
	".hcl":   hclDecoder{},
	".json":  jsonDecoder{},
	".jsonc": jsonDecoder{},
	".yaml":  yamlDecoder{},
	".yml":   yamlDecoder{},
}

// Find returns the path of the manifest inside dir.
func Find(dir string) (string, error) {
	for _, name := range CandidateNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", dir, ErrNoManifest)
}

// Load reads and decodes the manifest at path. The format is chosen by file
// extension.
func Load(ctx context.Context, path string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(abs))
	decoder, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported manifest format %q for %s", ext, path)
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	doc, err := decoder.Decode(src, abs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}

	m, err := fromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	m.Path = abs
	m.Dir = filepath.Dir(abs)
	logger.Debug("Manifest loaded.", "path", abs, "entries", len(m.Entries))
	return m, nil
}

// Parse decodes manifest source held in memory. dir becomes the manifest
// directory; format is a file extension such as ".hcl".
func Parse(src []byte, format, dir string) (*Manifest, error) {
	decoder, ok := decoders[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	doc, err := decoder.Decode(src, "assets"+format)
	if err != nil {
		return nil, err
	}
	m, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	m.Dir = dir
	return m, nil
}

func fromDocument(doc cty.Value) (*Manifest, error) {
	root := NewFragment(doc)
	if doc.IsNull() || !doc.Type().IsObjectType() {
		return nil, errors.New("document must be an object")
	}

	m := &Manifest{Root: root}
	assets, ok := root.Get(KeyAssets)
	if !ok || assets.IsNull() {
		return m, nil
	}
	ty := assets.Type()
	if !ty.IsListType() && !ty.IsTupleType() {
		return nil, fmt.Errorf("%q must be a list, got %s", KeyAssets, ty.FriendlyName())
	}

	for it := assets.ElementIterator(); it.Next(); {
		_, value := it.Element()
		index := len(m.Entries)
		if value.IsNull() || !(value.Type().IsObjectType() || value.Type().IsMapType()) {
			return nil, fmt.Errorf("asset entry %d must be an object", index)
		}
		fragment := NewFragment(value)
		entry := &Entry{Index: index, Fragment: fragment}
		entry.Name, _ = fragment.String(KeyName)
		entry.Regex, _ = fragment.String(KeyRegex)
		entry.Loader, _ = fragment.String(KeyLoader)
		entry.Generator, _ = fragment.String(KeyGenerator)
		if entry.Name == "" && entry.Regex == "" {
			return nil, fmt.Errorf("asset entry %d needs a %q or a %q", index, KeyName, KeyRegex)
		}
		m.Entries = append(m.Entries, entry)
	}
	return m, nil
}
