// internal/workers/application/store-application-documents/handler.go
package storeapplicationdocuments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
)

const (
	TaskType = "store-application-documents"
)

var (
	ErrUploadFailed   = errors.New("DOCUMENT_UPLOAD_FAILED")
	ErrDownloadFailed = errors.New("DOCUMENT_DOWNLOAD_FAILED")
	ErrRemoveFailed   = errors.New("DOCUMENT_REMOVE_FAILED")
)

// Store keeps resumes and cover letters in one S3 bucket.
type Store struct {
	config *Config
	client S3API
	logger logger.Logger
}

func NewStore(config *Config, client S3API, log logger.Logger) *Store {
	return &Store{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// ResumePath returns resumes/<epoch-ms>-<name>.
func ResumePath(name string, at time.Time) string {
	return documentPath(ResumePrefix, name, at)
}

// CoverLetterPath returns cover-letters/<epoch-ms>-<name>.
func CoverLetterPath(name string, at time.Time) string {
	return documentPath(CoverLetterPrefix, name, at)
}

// documentPath keeps only the base name so a client-supplied filename cannot
// escape its prefix.
func documentPath(prefix, name string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "document"
	}
	return fmt.Sprintf("%s/%d-%s", prefix, at.UnixMilli(), base)
}

// Upload writes blob at key. contentType is sniffed when empty.
func (s *Store) Upload(ctx context.Context, key string, blob []byte, contentType string) error {
	if contentType == "" {
		contentType = mimetype.Detect(blob).String()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(blob),
		ContentLength: aws.Int64(int64(len(blob))),
		ContentType:   aws.String(contentType),
	})
	metrics.DocumentOperations.WithLabelValues("upload", metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUploadFailed, key, err)
	}

	s.logger.Debug("document uploaded", map[string]interface{}{
		"path":  key,
		"bytes": len(blob),
	})
	return nil
}

// Download returns the stored bytes at key.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		metrics.DocumentOperations.WithLabelValues("download", "error").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	metrics.DocumentOperations.WithLabelValues("download", metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrDownloadFailed, key, err)
	}
	return data, nil
}

// Remove deletes keys in one batch. Missing keys are not an error.
func (s *Store) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	ids := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.config.Bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err == nil && out != nil && len(out.Errors) > 0 {
		first := out.Errors[0]
		err = fmt.Errorf("%d keys not deleted, first %s: %s",
			len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
	}
	metrics.DocumentOperations.WithLabelValues("remove", metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoveFailed, err)
	}

	s.logger.Info("documents removed", map[string]interface{}{"paths": keys})
	return nil
}
