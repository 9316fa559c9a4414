// internal/workers/application/store-application-documents/models.go
package storeapplicationdocuments

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Storage path prefixes.
const (
	ResumePrefix      = "resumes"
	CoverLetterPrefix = "cover-letters"
)

// S3API is the subset of the S3 client the store calls.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}
