package publish

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/assetpipe/internal/testutil"
)

func TestUpload_Success(t *testing.T) {
	var gotBody []byte
	var gotType string
	var gotLength int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotType = r.Header.Get("Content-Type")
		gotLength = r.ContentLength
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "game.eap")
	require.NoError(t, os.WriteFile(path, []byte("EAP1 payload"), 0o644))

	ctx, logs := testutil.Context(t)
	res, err := New(srv.Client()).Upload(ctx, path, srv.URL+"/bucket/game.eap?sig=abc")
	require.NoError(t, err)

	assert.Equal(t, "200 OK", res.Status)
	assert.EqualValues(t, 12, res.Size)
	assert.Equal(t, []byte("EAP1 payload"), gotBody)
	assert.Equal(t, PackageContentType, gotType)
	assert.EqualValues(t, 12, gotLength)
	assert.Contains(t, logs.String(), "Successfully uploaded package")
}

func TestUpload_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "game.eap")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	ctx, _ := testutil.Context(t)

	_, err := New(nil).Upload(ctx, path, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, err = New(nil).Upload(ctx, filepath.Join(dir, "missing.eap"), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open source file")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, PackageContentType, ContentType("out/game.eap"))
	assert.Equal(t, "application/octet-stream", ContentType("blob.unknownext"))
	assert.Equal(t, "image/png", ContentType("tex.png"))
}
