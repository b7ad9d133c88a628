package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/askpdf/internal/common"
	sc "github.com/avolkov/askpdf/internal/server/config"
)

func newTestGateway() *Gateway {
	return &Gateway{bucket: "pdfs", ttl: time.Hour}
}

func restoreSeams(t *testing.T) {
	t.Helper()
	origHead := headBucket
	origCreate := createBucket
	origPut := putObject
	origDelete := deleteObject
	origList := listObjectsV2
	origPresign := presignGetObject
	t.Cleanup(func() {
		headBucket = origHead
		createBucket = origCreate
		putObject = origPut
		deleteObject = origDelete
		listObjectsV2 = origList
		presignGetObject = origPresign
	})
}

func TestNewGateway_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewClient := newS3ClientFromConfig
	origNewPresign := newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewClient
		newS3PresignClient = origNewPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(o.BaseEndpoint))
		assert.True(t, o.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	cfg := &sc.Config{
		S3Region:       "eu-west-1",
		S3RootUser:     "admin",
		S3RootPassword: "pw",
		S3Bucket:       "pdfs",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
		SignedURLTTL:   time.Hour,
	}

	gw, err := NewGateway(cfg)
	require.NoError(t, err)
	assert.Equal(t, "pdfs", gw.Bucket())
}

func TestNewGateway_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewGateway(&sc.Config{})
	assert.Error(t, err)
}

func TestEnsureBucket_AlreadyPresent(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
		assert.Equal(t, "pdfs", aws.ToString(in.Bucket))
		return &s3.HeadBucketOutput{}, nil
	}
	createBucket = func(c *s3.Client, ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
		t.Fatal("create must not be called when the bucket exists")
		return nil, nil
	}

	assert.NoError(t, gw.EnsureBucket(context.Background()))
}

func TestEnsureBucket_CreatesWhenAbsent(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
		return nil, &types.NotFound{}
	}
	created := false
	createBucket = func(c *s3.Client, ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
		created = true
		return &s3.CreateBucketOutput{}, nil
	}

	require.NoError(t, gw.EnsureBucket(context.Background()))
	assert.True(t, created)
}

func TestEnsureBucket_SwallowsAlreadyOwned(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
		return nil, &types.NotFound{}
	}
	createBucket = func(c *s3.Client, ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
		return nil, &types.BucketAlreadyOwnedByYou{}
	}

	assert.NoError(t, gw.EnsureBucket(context.Background()))
}

func TestEnsureBucket_PropagatesOtherFailures(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
		return nil, &types.NotFound{}
	}
	createBucket = func(c *s3.Client, ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
		return nil, errors.New("access denied")
	}

	err := gw.EnsureBucket(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestUpload_Success(t *testing.T) {
	restoreSeams(t)
	stubKeySeams(t, time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC), "abcd1234")
	gw := newTestGateway()

	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
		return &s3.HeadBucketOutput{}, nil
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		assert.Equal(t, "pdfs", aws.ToString(in.Bucket))
		assert.Equal(t, "uploads/u1/report.pdf-03070905-abcd1234", aws.ToString(in.Key))
		assert.Equal(t, "application/pdf", aws.ToString(in.ContentType))
		assert.Equal(t, "*", aws.ToString(in.IfNoneMatch), "writes must not overwrite")
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + aws.ToString(in.Key)}, nil
	}

	file, err := gw.Upload(context.Background(), []byte("%PDF-1.4"), "application/pdf", "report.pdf", "u1")
	require.NoError(t, err)
	assert.Equal(t, "pdfs", file.Bucket)
	assert.Equal(t, "uploads/u1/report.pdf-03070905-abcd1234", file.Path)
	assert.Equal(t, "report.pdf", file.Filename)
	assert.Equal(t, "https://signed.example/uploads/u1/report.pdf-03070905-abcd1234", file.SignedURL)
}

func TestUpload_PutFailure(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
		return &s3.HeadBucketOutput{}, nil
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("quota exceeded")
	}

	_, err := gw.Upload(context.Background(), []byte("x"), "application/pdf", "a.pdf", "")
	require.ErrorIs(t, err, common.ErrUploadFailed)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestUpload_PresignFailureRemovesObject(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
		return &s3.HeadBucketOutput{}, nil
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign error")
	}
	deleted := false
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		deleted = true
		return &s3.DeleteObjectOutput{}, nil
	}

	_, err := gw.Upload(context.Background(), []byte("x"), "application/pdf", "a.pdf", "u1")
	require.ErrorIs(t, err, common.ErrUploadFailed)
	assert.True(t, deleted, "orphaned object must be removed when signing fails")
}

func TestList_EmptyOwner(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		t.Fatal("provider must not be called for an empty owner")
		return nil, nil
	}

	entries, err := gw.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList_PreservesProviderOrder(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	keys := []string{
		"uploads/u1/a.pdf-03070905-x1",
		"uploads/u1/b.pdf-03070905-x2",
		"uploads/u1/c.pdf-03070905-x3",
	}

	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		assert.Equal(t, "uploads/u1/", aws.ToString(in.Prefix))
		assert.Equal(t, int32(100), aws.ToInt32(in.MaxKeys))
		out := &s3.ListObjectsV2Output{}
		for _, k := range keys {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
		return out, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + aws.ToString(in.Key)}, nil
	}

	entries, err := gw.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, k := range keys {
		assert.Equal(t, k, entries[i].Path)
		assert.Equal(t, "https://signed.example/"+k, entries[i].SignedURL)
	}
	assert.Equal(t, "a.pdf-03070905-x1", entries[0].Name)
}

func TestList_PresignFailure(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return &s3.ListObjectsV2Output{Contents: []types.Object{{Key: aws.String("uploads/u1/a.pdf")}}}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign error")
	}

	_, err := gw.List(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrListFailed)
}

func TestList_ProviderError(t *testing.T) {
	restoreSeams(t)
	gw := newTestGateway()

	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return nil, errors.New("listing broke")
	}

	_, err := gw.List(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrListFailed)
	assert.Contains(t, err.Error(), "listing broke")
}
