package text_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/testutil"
	"github.com/specialistvlad/assetpipe/modules/text"
)

func TestNormalize(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"lf untouched": {"a\nb\n", "a\nb\n"},
		"crlf":         {"a\r\nb\r\n", "a\nb\n"},
		"lone cr":      {"a\rb", "a\nb"},
		"bom":          {"\xef\xbb\xbfhello", "hello"},
		"mixed":        {"a\r\nb\rc\n", "a\nb\nc\n"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(text.Normalize([]byte(tc.in))))
		})
	}
}

func TestGenerate_NormalizesShaderSource(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"shaders/blit.wgsl": "@vertex\r\nfn main() {}\r\n"})

	c, _ := testutil.GeneratorContext(t, dir, "shaders/blit.wgsl", nil)
	require.NoError(t, text.Generate(c))
	assert.Equal(t, "@vertex\nfn main() {}\n", c.Output().String())
	assert.Equal(t, []string{"shaders/blit.wgsl"}, c.Result(text.Format).FileDependencies)
}

func TestGenerate_RejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"bad.txt": "\xff\xfe"})

	c, _ := testutil.GeneratorContext(t, dir, "bad.txt", nil)
	err := text.Generate(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestLoad_Lines(t *testing.T) {
	inst, err := text.Load(context.Background(), plugin.Input{Name: "notes.txt", Data: []byte("one\ntwo\n")})
	require.NoError(t, err)

	doc, ok := inst.(*text.Document)
	require.True(t, ok)
	assert.Equal(t, []string{"one", "two"}, doc.Lines())
	assert.Nil(t, (&text.Document{}).Lines())
}
