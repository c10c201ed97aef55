package assets

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/clara/maestro/internal/logging"
)

// BucketConfig holds the connection settings for the remote object store.
type BucketConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string

	// PublicBaseURL is the prefix of durable object URLs. Defaults to
	// Endpoint (path-style: <endpoint>/<bucket>/<key>).
	PublicBaseURL string
}

// BucketStore persists assets in an S3-compatible bucket under
// category-scoped keys and hands out durable fetchable URLs.
type BucketStore struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

// NewBucketStore creates a bucket store and makes sure the bucket exists.
func NewBucketStore(ctx context.Context, cfg BucketConfig) (*BucketStore, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
			}, nil
		},
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = cfg.Endpoint
	}

	store := &BucketStore{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}

	if err := store.ensureBucket(ctx); err != nil {
		logging.Error("bucket check failed", zap.Error(err))
	}

	return store, nil
}

func (b *BucketStore) ensureBucket(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err != nil {
		_, createErr := b.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(b.bucket),
		})
		if createErr != nil {
			return fmt.Errorf("bucket %s does not exist and cannot create: %w", b.bucket, createErr)
		}
		logging.Info("created bucket", zap.String("bucket", b.bucket))
	}
	return nil
}

// Upload stores raw bytes with a content type under category/assetID.ext and
// returns the durable URL.
func (b *BucketStore) Upload(ctx context.Context, data []byte, contentType string, category Category, assetID, ext string) (string, error) {
	if assetID == "" {
		return "", fmt.Errorf("asset id cannot be empty")
	}

	key := path.Join(string(category), assetID+normalizeExt(ext))

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	logging.Debug("uploaded asset",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)))

	return b.ObjectURL(key), nil
}

// ObjectURL returns the durable path-style URL for a key.
func (b *BucketStore) ObjectURL(key string) string {
	return b.publicBase + "/" + b.bucket + "/" + key
}

// KeyForURL extracts the object key from a durable URL produced by this store.
func (b *BucketStore) KeyForURL(url string) (string, error) {
	prefix := b.publicBase + "/" + b.bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("url %s does not belong to bucket %s", url, b.bucket)
	}
	return strings.TrimPrefix(url, prefix), nil
}

// Delete removes the object behind a durable URL.
func (b *BucketStore) Delete(ctx context.Context, url string) error {
	key, err := b.KeyForURL(url)
	if err != nil {
		return err
	}

	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	logging.Debug("deleted asset", zap.String("key", key))
	return nil
}
