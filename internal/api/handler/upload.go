package handler

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// storedUpload is a multipart file written to the public directory.
type storedUpload struct {
	Path         string
	Name         string
	OriginalName string
	MimeType     string
}

// storeUpload copies fh into dir under a timestamp-prefixed, sanitized name
// so uploads never collide or escape dir.
func storeUpload(dir string, fh *multipart.FileHeader, now time.Time) (*storedUpload, error) {
	original := filepath.Base(fh.Filename)
	name := strconv.FormatInt(now.UnixMilli(), 10) + "-" + unsafeName.ReplaceAllString(original, "_")

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	path := filepath.Join(dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", name, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(original)); byExt != "" {
			mimeType = byExt
		}
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &storedUpload{Path: path, Name: name, OriginalName: original, MimeType: mimeType}, nil
}
