// utils/storage.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var s3Client *s3.Client
var s3Bucket string

// InitStorage configures the S3 client for PGN file storage. Without
// credentials the service falls back to the local uploads directory, so a
// dev setup needs no bucket.
func InitStorage() error {
	s3Bucket = os.Getenv("S3_BUCKET_NAME")
	region := os.Getenv("S3_REGION")
	accessKeyID := os.Getenv("S3_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("S3_ACCESS_KEY_SECRET")
	endpoint := os.Getenv("S3_ENDPOINT")

	if accessKeyID == "" || accessKeySecret == "" {
		s3Client = nil
		return EnsureUploadDir()
	}
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	}
	if endpoint != "" {
		opts = append(opts, config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("failed to load S3 config: %w", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

// UploadGameFile stores an uploaded PGN file and returns its object key.
func UploadGameFile(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	key := "pgn/" + uuid.NewString() + "_" + filepath.Base(fileHeader.Filename)

	if s3Client == nil {
		if err := SaveFile(fileHeader, GetUploadPath(key)); err != nil {
			return "", fmt.Errorf("failed to save file locally: %w", err)
		}
		return key, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s3Bucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String("application/x-chess-pgn"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}

// DownloadFile fetches a stored object by key.
func DownloadFile(ctx context.Context, key string) ([]byte, error) {
	if s3Client == nil {
		data, err := os.ReadFile(GetUploadPath(key))
		if err != nil {
			return nil, fmt.Errorf("failed to read local file: %w", err)
		}
		return data, nil
	}

	out, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// DeleteFile removes a stored object by key.
func DeleteFile(ctx context.Context, key string) error {
	if s3Client == nil {
		err := os.Remove(GetUploadPath(key))
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	_, err := s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
