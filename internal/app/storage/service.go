// Package storage provides the file storage service used for avatars and for
// image/file message payloads, backed by S3-compatible object storage.
package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service defines the public interface for the file storage service. Clients
// upload and download directly against presigned URLs; the server never
// proxies file bytes.
type Service interface {
	// PresignUpload generates a pre-signed URL for uploading a file.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error
}

// NewService is the factory function for Service. Only S3-compatible backends
// are supported.
func NewService(cfg ServiceConfig) (Service, error) {
	return newS3Client(cfg)
}
