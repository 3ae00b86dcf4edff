package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/mompick/mompick-admin/internal/config"
)

// deleteBatch is the most keys S3 accepts in one DeleteObjects call.
const deleteBatch = 1000

// S3 stores objects in S3 or an S3 compatible service.
type S3 struct {
	client *s3.Client
	cfg    config.Storage
}

// NewS3 creates the S3 client. A configured endpoint switches to path style
// addressing for S3 compatible services.
func NewS3(ctx context.Context, cfg config.Storage) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}

		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, cfg: cfg}, nil
}

// Put uploads an object.
func (s *S3) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})

	return errors.Wrapf(err, "s3 put %s/%s", bucket, key)
}

// Get downloads an object.
func (s *S3) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrapf(err, "s3 get %s/%s", bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)

	return data, errors.Wrapf(err, "s3 read %s/%s", bucket, key)
}

// List returns every object below prefix.
func (s *S3) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	objects := make([]Object, 0)

	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "s3 list %s/%s", bucket, prefix)
		}

		for _, o := range page.Contents {
			key := aws.ToString(o.Key)
			objects = append(objects, Object{
				Key:          key,
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
				URL:          s.PublicURL(bucket, key),
			})
		}
	}

	return objects, nil
}

// Delete removes objects; missing keys are ignored.
func (s *S3) Delete(ctx context.Context, bucket string, keys ...string) error {
	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))

		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return errors.Wrapf(err, "s3 delete from %s", bucket)
		}

		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return fmt.Errorf("s3 delete %s/%s: %s", bucket, aws.ToString(e.Key), aws.ToString(e.Message))
		}
	}

	return nil
}

// PublicURL is the address the app loads an object from.
func (s *S3) PublicURL(bucket, key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return joinURL(s.cfg.PublicBaseURL, bucket, key)
	case s.cfg.Endpoint != "":
		return joinURL(s.cfg.Endpoint, bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.cfg.Region, key)
	}
}
