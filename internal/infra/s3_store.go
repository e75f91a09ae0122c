package infra

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/slide_render/internal/ports"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type s3Store struct {
	client *minio.Client
	bucket string
	host   string
}

func NewS3Store() (ports.ArtifactStore, error) {
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucket := os.Getenv("S3_BUCKET")
	region := os.Getenv("S3_REGION")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: true,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	// проверим, что бакет существует
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", bucket)
	}

	return &s3Store{
		client: client,
		bucket: bucket,
		host:   fmt.Sprintf("https://%s", endpoint),
	}, nil
}

// Publish заливает готовую страницу и возвращает публичный URL.
// PUT в S3 атомарен по объекту, staging-имя не нужно.
func (s *s3Store) Publish(ctx context.Context, name, srcPath string) (string, error) {
	name = filepath.Base(name)
	_, err := s.client.FPutObject(ctx, s.bucket, name, srcPath, minio.PutObjectOptions{
		ContentType:  "image/jpeg",
		UserMetadata: map[string]string{"uploaded-at": time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return s.buildPublicURL(name), nil
}

func (s *s3Store) Remove(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.bucket, filepath.Base(name), minio.RemoveObjectOptions{})
}

func (s *s3Store) Stat(ctx context.Context, name string) (ports.StoredArtifact, error) {
	info, err := s.client.StatObject(ctx, s.bucket, filepath.Base(name), minio.StatObjectOptions{})
	if err != nil {
		return ports.StoredArtifact{}, err
	}
	return ports.StoredArtifact{Name: info.Key, Size: info.Size, ModTime: info.LastModified}, nil
}

func (s *s3Store) List(ctx context.Context) ([]ports.StoredArtifact, error) {
	var out []ports.StoredArtifact
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if info.Err != nil {
			return nil, info.Err
		}
		out = append(out, ports.StoredArtifact{Name: info.Key, Size: info.Size, ModTime: info.LastModified})
	}
	return out, nil
}

func (s *s3Store) buildPublicURL(key string) string {
	escapedKey := url.PathEscape(filepath.ToSlash(key))
	return fmt.Sprintf("%s/%s/%s", s.host, s.bucket, escapedKey)
}
