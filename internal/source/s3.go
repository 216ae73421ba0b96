package source

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"crimestats/internal/metrics"
	"crimestats/internal/store"
)

// ObjectGetter is the subset of the S3 client used by S3.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads a CSV object from a bucket on every fetch.
type S3 struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewS3 creates an S3 source using the default AWS credential chain.
func NewS3(ctx context.Context, region, bucket, key string) (*S3, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return NewS3WithClient(s3.NewFromConfig(awsCfg), bucket, key), nil
}

// NewS3WithClient creates an S3 source around an existing client.
func NewS3WithClient(client ObjectGetter, bucket, key string) *S3 {
	return &S3{client: client, bucket: bucket, key: key}
}

// Name implements Source.
func (s *S3) Name() string { return "s3" }

// Fetch implements Source.
func (s *S3) Fetch(ctx context.Context) (rows []store.RawRow, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(s.Name(), start, err) }()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s: %v", store.ErrLoad, s.bucket, s.key, err)
	}
	defer out.Body.Close()

	return store.ReadCSV(out.Body)
}
