package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// ObjectGetter abstracts the S3 GetObject call for testing.
type ObjectGetter interface {
	GetObject(
		ctx context.Context,
		input *s3.GetObjectInput,
		opts ...func(*s3.Options),
	) (*s3.GetObjectOutput, error)
}

// s3ClientFactory creates an ObjectGetter for the given region.
type s3ClientFactory func(ctx context.Context, region string) (ObjectGetter, error)

// newRealS3Client builds an S3 client from the default AWS config chain.
func newRealS3Client(ctx context.Context, region string) (ObjectGetter, error) {
	var opts []func(*awscfg.LoadOptions) error
	if region != "" {
		opts = append(opts, awscfg.WithRegion(region))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// parseS3URI splits s3://bucket/key into bucket and key.
func parseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parse %q: %w", uri, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q (want s3://bucket/key)", uri)
	}
	return bucket, key, nil
}

func (l *Loader) loadS3(ctx context.Context, uri string) ([]string, error) {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}

	factory := l.S3
	if factory == nil {
		factory = newRealS3Client
	}
	client, err := factory(ctx, l.Region)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	return Parse(out.Body)
}
