package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Uploader stores chat media in an S3 bucket fronted by a CDN
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Uploader creates a new S3 uploader. baseURL is the public prefix for
// object keys; it defaults to the bucket's virtual-hosted URL.
func NewS3Uploader(region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Uploader{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Backend names the storage backend for metrics
func (u *S3Uploader) Backend() string {
	return "s3"
}

// UploadMedia uploads a multipart file under {folder}/{year}/{month}/{userID}/{uuid}{ext}
func (u *S3Uploader) UploadMedia(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder, userID string) (*UploadResult, error) {
	now := time.Now().UTC()
	key := objectKey(folder, userID, header.Filename, now)
	contentType := contentTypeFor(header)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(header.Size),
		ContentType:   aws.String(contentType),
		// Uploaded media is immutable
		CacheControl: aws.String("max-age=86400"),
		Metadata: map[string]string{
			"user-id":           userID,
			"original-filename": header.Filename,
			"upload-timestamp":  now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         u.baseURL + "/" + key,
		Bucket:      u.bucket,
		Region:      u.region,
		ContentType: contentType,
		Size:        header.Size,
	}, nil
}

// UploadProfilePicture uploads a user's avatar
func (u *S3Uploader) UploadProfilePicture(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID string) (*UploadResult, error) {
	return u.UploadMedia(ctx, file, header, FolderProfilePictures, userID)
}

// DeleteByURL deletes the object behind a URL issued by this uploader
func (u *S3Uploader) DeleteByURL(ctx context.Context, url string) error {
	key, ok := keyFromURL(u.baseURL, url)
	if !ok {
		return nil
	}
	return u.DeleteFile(ctx, key)
}

// DeleteFile deletes a file from S3
func (u *S3Uploader) DeleteFile(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}

	return nil
}

// objectKey builds {folder}/{year}/{month}/{userID}/{uuid}{ext}
func objectKey(folder, userID, filename string, now time.Time) string {
	extension := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%d/%02d/%s/%s%s",
		folder, now.Year(), now.Month(), userID, uuid.NewString(), extension)
}

// keyFromURL strips baseURL from url; ok is false for foreign URLs
func keyFromURL(baseURL, url string) (string, bool) {
	prefix := strings.TrimSuffix(baseURL, "/") + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

// contentTypeFor prefers the extension mapping and falls back to the
// client-declared type
func contentTypeFor(header *multipart.FileHeader) string {
	if ct := getContentType(filepath.Ext(header.Filename)); ct != "application/octet-stream" {
		return ct
	}
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// getContentType returns the appropriate MIME type for file extensions
func getContentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
