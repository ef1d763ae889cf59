package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Uploader places dataset artifacts under a bucket prefix.
type Uploader struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

// NewSession builds an AWS session. An empty region falls back to the shared config.
func NewSession(region string) (*session.Session, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	return session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
}

// NewUploader constructs an uploader for bucket.
func NewUploader(sess *session.Session, bucket, prefix string) (*Uploader, error) {
	if sess == nil {
		return nil, errors.New("s3 uploader: nil session")
	}
	if bucket == "" {
		return nil, errors.New("s3 uploader: empty bucket")
	}
	return &Uploader{
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}, nil
}

// Key returns the object key for name.
func (u *Uploader) Key(name string) string {
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

// Put uploads body and returns its s3:// location.
func (u *Uploader) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if u == nil || u.uploader == nil {
		return "", errors.New("s3 uploader: not configured")
	}
	key := u.Key(name)
	input := &s3manager.UploadInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := u.uploader.UploadWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("s3 uploader: upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
