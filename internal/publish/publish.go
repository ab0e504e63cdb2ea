// Package publish uploads built packages to pre-signed URLs.
package publish

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/pack"
)

// PackageContentType is sent for package files.
const PackageContentType = "application/vnd.assetpipe.package"

// Result reports a finished upload.
type Result struct {
	Status string
	Size   int64
}

// Uploader PUTs files to pre-signed object storage URLs.
type Uploader struct {
	Client *http.Client
}

// New returns an Uploader using client, or a fresh http.Client when nil.
func New(client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{}
	}
	return &Uploader{Client: client}
}

// ContentType picks the Content-Type header for path.
func ContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == pack.Extension {
		return PackageContentType
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Upload sends the file at sourcePath to uploadURL. Only a 200 response
// counts as success.
func (u *Uploader) Upload(ctx context.Context, sourcePath, uploadURL string) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(sourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open source file '%s': %w", sourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("failed to get file stats for '%s': %w", sourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	contentType := ContentType(sourcePath)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading package", "source", sourcePath, "size", stat.Size(), "contentType", contentType)

	resp, err := u.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded package", "status", resp.Status)
	return Result{Status: resp.Status, Size: stat.Size()}, nil
}
