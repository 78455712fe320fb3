package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"field_mates_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AssetStore keeps the bytes of record assets outside the record store.
type AssetStore interface {
	// Upload stores the file at path under key.
	Upload(ctx context.Context, key, path string) error

	// Download copies the object stored under key to a local temporary file
	// and returns its path.
	Download(ctx context.Context, key string) (string, error)

	// Remove deletes the object stored under key.
	Remove(ctx context.Context, key string) error
}

// S3API is the part of the S3 client used by S3AssetStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3AssetStore is an AssetStore backed by an S3 bucket.
type S3AssetStore struct {
	Client S3API
	Bucket string
}

// InitializeS3Client creates an S3 client. A non-empty endpoint points the
// client at an S3-compatible server using path-style addressing.
func InitializeS3Client(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

func (st *S3AssetStore) Upload(ctx context.Context, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read asset file '%s': %w", path, err)
	}

	_, err = st.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(st.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload asset '%s': %w", key, err)
	}
	return nil
}

func (st *S3AssetStore) Download(ctx context.Context, key string) (string, error) {
	out, err := st.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(st.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to download asset '%s': %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read asset '%s': %w", key, err)
	}
	return utils.WriteTempFile(data, "")
}

func (st *S3AssetStore) Remove(ctx context.Context, key string) error {
	_, err := st.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(st.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset '%s': %w", key, err)
	}
	return nil
}
