package s3

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

func TestNewUploader_Validates(t *testing.T) {
	if _, err := NewUploader(nil, "bucket", ""); err == nil {
		t.Fatalf("expected error for nil session")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String("eu-west-1")})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := NewUploader(sess, "", ""); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}

func TestUploader_Key(t *testing.T) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String("eu-west-1")})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	u, err := NewUploader(sess, "training-data", "/datasets/")
	if err != nil {
		t.Fatalf("new uploader: %v", err)
	}
	if got := u.Key("processed.csv"); got != "datasets/processed.csv" {
		t.Fatalf("key = %q", got)
	}
	bare, _ := NewUploader(sess, "training-data", "")
	if got := bare.Key("processed.csv"); got != "processed.csv" {
		t.Fatalf("key = %q", got)
	}
}
