package storage

import (
	"context"
	"mime/multipart"
)

// Upload folders
const (
	FolderProfilePictures = "profile-pics"
	FolderMessages        = "messages"
	FolderStatuses        = "statuses"
	FolderGroups          = "groups"
)

// MediaUploader stores user-supplied files and returns their public URL.
// Handlers depend on this so tests can swap in a fake.
type MediaUploader interface {
	UploadMedia(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder, userID string) (*UploadResult, error)
	UploadProfilePicture(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID string) (*UploadResult, error)
}

// FileDeleter removes a previously uploaded file by its public URL. URLs the
// store did not issue are ignored.
type FileDeleter interface {
	DeleteByURL(ctx context.Context, url string) error
}

// MediaStore is the full storage backend
type MediaStore interface {
	MediaUploader
	FileDeleter
	Backend() string
}

// UploadResult contains the result of an upload
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Bucket      string `json:"bucket,omitempty"`
	Region      string `json:"region,omitempty"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

var (
	_ MediaStore = (*S3Uploader)(nil)
	_ MediaStore = (*DiskStore)(nil)
)
