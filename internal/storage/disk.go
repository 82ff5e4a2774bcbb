package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskPrefix is the URL path the server mounts the upload directory on
const DiskPrefix = "/uploads"

// DiskStore keeps uploads on the local filesystem. It backs development
// setups that have no bucket configured.
type DiskStore struct {
	root      string
	publicURL string
}

// NewDiskStore creates the upload directory if needed
func NewDiskStore(root, publicURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{
		root:      root,
		publicURL: strings.TrimSuffix(publicURL, "/") + DiskPrefix,
	}, nil
}

// Root returns the directory files are written to
func (d *DiskStore) Root() string {
	return d.root
}

// Backend names the storage backend for metrics
func (d *DiskStore) Backend() string {
	return "disk"
}

// UploadMedia copies the file under the same key layout the S3 backend uses
func (d *DiskStore) UploadMedia(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder, userID string) (*UploadResult, error) {
	key := objectKey(folder, userID, header.Filename, time.Now().UTC())
	path := filepath.Join(d.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, file)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         d.publicURL + "/" + key,
		ContentType: contentTypeFor(header),
		Size:        written,
	}, nil
}

// UploadProfilePicture stores a user's avatar
func (d *DiskStore) UploadProfilePicture(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID string) (*UploadResult, error) {
	return d.UploadMedia(ctx, file, header, FolderProfilePictures, userID)
}

// DeleteByURL removes the file behind a URL issued by this store
func (d *DiskStore) DeleteByURL(ctx context.Context, url string) error {
	key, ok := keyFromURL(d.publicURL, url)
	if !ok || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(d.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}
