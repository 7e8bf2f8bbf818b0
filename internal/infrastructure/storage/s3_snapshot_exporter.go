// Package storage exports purged archive snapshots to S3 compatible object
// storage for long-term retention.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/infrastructure/config"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// s3API is the slice of the S3 client the exporter uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3SnapshotExporter writes each snapshot as one JSON object under
// <prefix><ENTITY_TYPE>/<yyyy>/<mm>/<deleted id>.json
type S3SnapshotExporter struct {
	client s3API
	bucket string
	prefix string
}

// NewS3SnapshotExporter builds an exporter from the archive configuration.
// Static keys are used when set, otherwise the default AWS credential chain.
func NewS3SnapshotExporter(ctx context.Context, cfg config.ArchiveConfig) (*S3SnapshotExporter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("archive access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return newS3SnapshotExporter(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3SnapshotExporter(client s3API, bucket, prefix string) *S3SnapshotExporter {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3SnapshotExporter{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key a snapshot is written to
func (e *S3SnapshotExporter) Key(snapshot *archive.Snapshot) string {
	return e.prefix + path.Join(
		snapshot.EntityType.String(),
		snapshot.DeletedAt.UTC().Format("2006/01"),
		snapshot.DeletedID.String()+".json",
	)
}

// Export uploads the snapshot and returns its s3:// location
func (e *S3SnapshotExporter) Export(ctx context.Context, snapshot *archive.Snapshot) (string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot %s: %w", snapshot.DeletedID, err)
	}

	key := e.Key(snapshot)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"entity-type": snapshot.EntityType.String(),
			"public-id":   snapshot.PublicID,
			"original-id": snapshot.OriginalID.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot %s: %w", snapshot.DeletedID, err)
	}

	location := fmt.Sprintf("s3://%s/%s", e.bucket, key)
	logger.L(ctx).Info("snapshot exported",
		zap.String("deleted_id", snapshot.DeletedID.String()),
		zap.String("location", location),
		zap.Int("bytes", len(body)),
	)
	return location, nil
}

// EnsureBucket creates the bucket if it does not exist. Call it at startup.
func (e *S3SnapshotExporter) EnsureBucket(ctx context.Context) error {
	_, err := e.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(e.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket %s: %w", e.bucket, err)
	}

	logger.L(ctx).Info("creating archive bucket", zap.String("bucket", e.bucket))
	_, err = e.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(e.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create bucket %s: %w", e.bucket, err)
	}
	return nil
}

var _ archive.Exporter = (*S3SnapshotExporter)(nil)
