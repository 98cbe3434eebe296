package upload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3KeyPrefix = "products/"

// ObjectAPI is the part of the S3 client the storage needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Storage struct {
	api    ObjectAPI
	bucket string
	region string
}

var _ Storage = (*S3Storage)(nil)

// NewS3Storage builds a client from the default AWS credential chain.
func NewS3Storage(ctx context.Context, region, bucket string) (*S3Storage, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewS3StorageWithClient(s3.NewFromConfig(cfg), region, bucket), nil
}

func NewS3StorageWithClient(api ObjectAPI, region, bucket string) *S3Storage {
	return &S3Storage{api: api, bucket: bucket, region: region}
}

func (s *S3Storage) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Storage) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	img, err := ReadImage(file)
	if err != nil {
		return "", err
	}

	key := s3KeyPrefix + img.Name
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        img.Reader(),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		log.Printf("[UPLOAD] [ERROR] put object %s: %v", key, err)
		return "", err
	}
	return s.objectURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	prefix := s.objectURL(s3KeyPrefix)
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("refusing to delete object outside bucket: %s", url)
	}

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + strings.TrimPrefix(url, prefix)),
	})
	return err
}
