// Package storage wraps the S3-compatible object storage provider: bucket
// provisioning, uploads under deterministic keys, signed-URL issuance, and
// per-owner listings.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/avolkov/askpdf/internal/common"
	sc "github.com/avolkov/askpdf/internal/server/config"
	"github.com/avolkov/askpdf/internal/server/models"
)

// maxListKeys caps a listing at the first page of results.
const maxListKeys = 100

// Seams over the AWS SDK, swappable in tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
		return c.HeadBucket(ctx, in, optFns...)
	}
	createBucket = func(c *s3.Client, ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
		return c.CreateBucket(ctx, in, optFns...)
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Gateway talks to one bucket of an S3-compatible provider.
type Gateway struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewGateway builds a Gateway from the server config (static credentials,
// region, base endpoint; MinIO works out of the box).
func NewGateway(cfg *sc.Config) (*Gateway, error) {
	awsCfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &Gateway{
		client:  client,
		presign: newS3PresignClient(client),
		bucket:  cfg.S3Bucket,
		ttl:     cfg.SignedURLTTL,
	}, nil
}

// Bucket returns the configured bucket name.
func (g *Gateway) Bucket() string { return g.bucket }

// EnsureBucket creates the bucket when it does not exist yet. Only the
// provider's "already exists / already owned by you" answers are treated
// as success; any other provisioning failure is returned to the caller.
func (g *Gateway) EnsureBucket(ctx context.Context) error {
	_, err := headBucket(g.client, ctx, &s3.HeadBucketInput{Bucket: aws.String(g.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("bucket check: %w", err)
	}

	_, err = createBucket(g.client, ctx, &s3.CreateBucketInput{Bucket: aws.String(g.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("bucket create: %w", err)
	}

	return nil
}

// Upload writes payload under a fresh key derived from originalName and
// ownerID, then issues a signed GET URL. The write refuses to overwrite an
// existing key. When signing fails after the object was written, the object
// is removed again so no unreachable uploads are left behind.
func (g *Gateway) Upload(ctx context.Context, payload []byte, contentType, originalName, ownerID string) (*models.StoredFile, error) {
	if err := g.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	key := ObjectKey(originalName, ownerID)

	_, err := putObject(g.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	url, err := g.SignedURL(ctx, key)
	if err != nil {
		// the object exists but cannot be handed out; undo the write
		_ = g.Delete(ctx, key)
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	return &models.StoredFile{
		Bucket:    g.bucket,
		Path:      key,
		Filename:  originalName,
		SignedURL: url,
	}, nil
}

// SignedURL issues a time-limited GET URL for key.
func (g *Gateway) SignedURL(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(g.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(g.ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Delete removes one object. Used to undo writes that could not be
// completed; listing and client-facing deletion stay with the provider.
func (g *Gateway) Delete(ctx context.Context, key string) error {
	_, err := deleteObject(g.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	return err
}

// List returns up to 100 objects under the owner's prefix, each with a
// fresh signed URL. An empty ownerID yields an empty listing, not an
// error. Signed URLs are issued concurrently; the result keeps the
// provider's listing order.
func (g *Gateway) List(ctx context.Context, ownerID string) ([]models.FileEntry, error) {
	if ownerID == "" {
		return []models.FileEntry{}, nil
	}

	prefix := ownerPrefix(ownerID)

	out, err := listObjectsV2(g.client, ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(g.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(maxListKeys),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrListFailed, err)
	}

	entries := make([]models.FileEntry, len(out.Contents))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		eg.Go(func() error {
			url, err := g.SignedURL(egCtx, key)
			if err != nil {
				return err
			}
			entries[i] = models.FileEntry{
				Name:      strings.TrimPrefix(key, prefix),
				Path:      key,
				SignedURL: url,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrListFailed, err)
	}

	return entries, nil
}
