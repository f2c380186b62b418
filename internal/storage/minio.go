package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nguyentantai21042004/caption-studio/internal/config"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
)

type minioPublisher struct {
	client *minio.Client
	bucket string
	prefix string
	logger logger.Logger
}

// New returns a MinIO-backed Publisher when storage is enabled and a Noop
// publisher otherwise. The bucket is created on first use.
func New(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object storage: %w", err)
	}

	p := &minioPublisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: log.Named("storage"),
	}
	if err := p.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *minioPublisher) ensureBucket(ctx context.Context, region string) error {
	err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: region})
	if err == nil {
		p.logger.Info(ctx, "Bucket created: %s", p.bucket)
		return nil
	}
	exists, existsErr := p.client.BucketExists(ctx, p.bucket)
	if existsErr == nil && exists {
		return nil
	}
	return fmt.Errorf("create bucket %s: %w", p.bucket, err)
}

func (p *minioPublisher) Publish(ctx context.Context, localPath string) (Object, error) {
	key := objectKey(p.prefix, localPath, time.Now())
	info, err := p.client.FPutObject(ctx, p.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", localPath, err)
	}

	url, err := p.client.PresignedGetObject(ctx, p.bucket, key, presignExpiry, nil)
	if err != nil {
		return Object{}, fmt.Errorf("presign %s: %w", key, err)
	}

	p.logger.Info(ctx, "Uploaded %s (%d bytes)", key, info.Size)
	return Object{Key: key, URL: url.String()}, nil
}
