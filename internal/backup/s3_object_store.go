package backup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3ObjectStore stores objects in Amazon S3
type S3ObjectStore struct {
	Client s3iface.S3API
}

var _ ObjectStore = (*S3ObjectStore)(nil)

// NewS3ObjectStore creates a store using the default AWS credential chain
func NewS3ObjectStore(region string) (*S3ObjectStore, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}
	return &S3ObjectStore{Client: s3.New(sess)}, nil
}

func (os *S3ObjectStore) PutObject(ctx context.Context, bucket, key string, data io.ReadSeeker) error {
	_, err := os.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   data,
	})
	return err
}

func (os *S3ObjectStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	rsp, err := os.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, &ObjectNotFoundErr{bucket, key}
		}
		return nil, err
	}
	return rsp.Body, nil
}

func (os *S3ObjectStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	err := os.Client.ListObjectsPagesWithContext(
		ctx,
		&s3.ListObjectsInput{
			Bucket: &bucket,
			Prefix: &prefix,
		},
		func(rsp *s3.ListObjectsOutput, lastPage bool) bool {
			for _, object := range rsp.Contents {
				keys = append(keys, *object.Key)
			}
			return true
		},
	)
	return keys, err
}
