package persistent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"visionapi/internal/entity"
	"visionapi/pkg/s3client"
	"visionapi/pkg/types/errs"
)

type ObjectRepo struct {
	*s3client.S3Client
	bucket string
}

func NewObjectRepo(s3c *s3client.S3Client, bucket string) *ObjectRepo {
	return &ObjectRepo{s3c, bucket}
}

func (r *ObjectRepo) Put(ctx context.Context, key string, data io.Reader, contentType string, size int64, metadata map[string]string) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		Metadata:      metadata,
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - Put - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *ObjectRepo) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := r.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("ObjectRepo - PresignedURL - r.Presigner.PresignGetObject: %w", err)
	}

	return req.URL, nil
}

func (r *ObjectRepo) Head(ctx context.Context, key string) error {
	_, err := r.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("ObjectRepo - Head: %w", errs.ErrRecordNotFound)
		}
		return fmt.Errorf("ObjectRepo - Head - r.Client.HeadObject: %w", err)
	}

	return nil
}

func (r *ObjectRepo) List(ctx context.Context, prefix string) ([]entity.StorageObject, error) {
	var objects []entity.StorageObject

	paginator := s3.NewListObjectsV2Paginator(r.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ObjectRepo - List - paginator.NextPage: %w", err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, entity.StorageObject{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

func (r *ObjectRepo) HeadBucket(ctx context.Context) error {
	_, err := r.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - HeadBucket - r.Client.HeadBucket: %w", err)
	}

	return nil
}
