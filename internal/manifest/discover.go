package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/fsutil"
)

// CacheDirName is the per-manifest cache directory, never scanned for assets.
const CacheDirName = ".AssetCache"

// Item is one discovered asset: a final asset name and the entry that
// declared it.
type Item struct {
	Name  string
	Entry *Entry
}

// Discover expands the manifest into one item per asset name. Explicit names
// are taken first; regex entries are then matched against every file under
// the manifest directory. A name claimed by an earlier item is skipped, so
// explicit entries win over pattern matches and earlier entries win over
// later ones.
func (m *Manifest) Discover(ctx context.Context) ([]Item, error) {
	logger := ctxlog.FromContext(ctx)

	var items []Item
	seen := make(map[string]int)
	add := func(name string, entry *Entry) {
		name = asset.Clean(name)
		if first, dup := seen[name]; dup {
			logger.Debug("Duplicate asset name skipped.", "asset", name, "entry", entry.Index, "kept_entry", items[first].Entry.Index)
			return
		}
		seen[name] = len(items)
		items = append(items, Item{Name: name, Entry: entry})
	}

	var patterns []*Entry
	for _, entry := range m.Entries {
		if entry.Name != "" {
			add(entry.Name, entry)
		}
		if entry.Regex != "" {
			patterns = append(patterns, entry)
		}
	}
	if len(patterns) == 0 {
		return items, nil
	}

	compiled := make([]*regexp.Regexp, len(patterns))
	for i, entry := range patterns {
		re, err := CompilePattern(entry.Regex)
		if err != nil {
			return nil, fmt.Errorf("asset entry %d: %w", entry.Index, err)
		}
		compiled[i] = re
	}

	files, err := m.sourceFiles()
	if err != nil {
		return nil, err
	}
	for i, entry := range patterns {
		matched := 0
		for _, rel := range files {
			if compiled[i].MatchString(rel) {
				add(rel, entry)
				matched++
			}
		}
		logger.Debug("Regex entry expanded.", "regex", entry.Regex, "matches", matched)
	}
	return items, nil
}

// CompilePattern compiles a regex entry with POSIX extended syntax, anchored
// to match the whole relative path.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.CompilePOSIX("^(" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return re, nil
}

func (m *Manifest) sourceFiles() ([]string, error) {
	self := ""
	if m.Path != "" {
		self = filepath.Base(m.Path)
	}
	var files []string
	err := fsutil.WalkRelative(m.Dir, []string{CacheDirName}, func(rel string) error {
		if rel != self {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", m.Dir, err)
	}
	return files, nil
}
