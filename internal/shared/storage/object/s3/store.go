package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/storage/object"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/telemetry"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/util"
)

// Store implements object.Store using Amazon S3.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3-backed store. The client is constructed once and reused
// for the life of the process.
func New(ctx context.Context, region, bucket, prefix string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

// Save uploads the payload under "<user-id>/<timestamp>-<sanitized-name>".
func (s *Store) Save(ctx context.Context, userID string, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}

	// Provider errors are logged and reported as an empty path; an upload
	// must not fail because the object store is unavailable.
	storagePath := path.Join(userID, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitized))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.applyPrefix(storagePath)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		telemetry.Error("storage.save_failed", map[string]any{"bucket": s.bucket, "path": storagePath, "error": err.Error()})
		return "", nil
	}
	return storagePath, nil
}

// Open downloads a stored payload.
func (s *Store) Open(ctx context.Context, storagePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.applyPrefix(storagePath)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if !errors.As(err, &noKey) {
			telemetry.Error("storage.open_failed", map[string]any{"bucket": s.bucket, "path": storagePath, "error": err.Error()})
		}
		return nil, object.ErrNotFound
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Delete removes a stored payload. Provider errors are logged, not returned.
func (s *Store) Delete(ctx context.Context, storagePath string) bool {
	if err := ctx.Err(); err != nil {
		return false
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.applyPrefix(storagePath)),
	})
	if err != nil {
		telemetry.Warn("storage.delete_failed", map[string]any{"path": storagePath, "error": err.Error()})
		return false
	}
	return true
}

func (s *Store) applyPrefix(key string) string {
	cleanKey := strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return cleanKey
	}
	return s.prefix + "/" + cleanKey
}

var _ object.Store = (*Store)(nil)
