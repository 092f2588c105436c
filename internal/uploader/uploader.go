package uploader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/prodkart/backend/internal/config"
	log "github.com/sirupsen/logrus"
)

// ObjectAPI is the slice of the S3 client the uploader needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Asset describes one successfully stored object.
type Asset struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

var ErrEmptyPath = errors.New("uploader: empty local path")

type Uploader struct {
	client ObjectAPI
	cfg    config.StorageConfig
}

func New(client ObjectAPI, cfg config.StorageConfig) *Uploader {
	return &Uploader{client: client, cfg: cfg}
}

// Upload pushes the staged file at localPath to the bucket under a unique
// key derived from slot and returns the public URL for it. The staged file
// is removed before returning on every path, success or failure; a failed
// removal is logged, not propagated.
func (u *Uploader) Upload(ctx context.Context, localPath, slot string) (Asset, error) {
	if localPath == "" {
		return Asset{}, ErrEmptyPath
	}

	f, err := os.Open(localPath)
	if err != nil {
		u.removeLocal(localPath)
		return Asset{}, fmt.Errorf("open staged file: %w", err)
	}

	ext := filepath.Ext(localPath)
	key := fmt.Sprintf("products/%s/%s%s", slot, uuid.New().String(), ext)
	contentType := contentTypeFor(ext)

	obj, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	f.Close()
	u.removeLocal(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("put object %s: %w", key, err)
	}

	asset := Asset{
		URL:         CleanURL(fmt.Sprintf(u.cfg.PublicURL, key)),
		Key:         key,
		ContentType: contentType,
	}
	if obj.ETag != nil {
		asset.ETag = *obj.ETag
	}
	log.WithFields(log.Fields{"key": key, "etag": asset.ETag}).Info("Uploaded object")
	return asset, nil
}

// Remove deletes a stored object; used to roll back the remote copies of a
// partially failed submission.
func (u *Uploader) Remove(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (u *Uploader) removeLocal(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("path", path).Warn("Failed to remove staged file")
	}
}

func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
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
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}

func CleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	return parsedURL.String()
}
