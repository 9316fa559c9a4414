// internal/workers/application/index-application/handler.go
package indexapplication

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"
	"application-intake/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "index-application"
)

var (
	ErrIndexFailed = errors.New("INDEX_FAILED")
)

// Indexer writes committed applications to the search index. A nil client
// disables indexing.
type Indexer struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewIndexer(config *Config, client *elasticsearch.Client, log logger.Logger) *Indexer {
	return &Indexer{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Index stores the record under its id. Errors are logged and counted and
// never returned; the record is already committed.
func (i *Indexer) Index(ctx context.Context, record *models.ApplicationRecord) {
	if i == nil || i.client == nil {
		return
	}
	err := i.index(ctx, record)
	metrics.IndexOperations.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		i.logger.Warn("index application failed", map[string]interface{}{
			"applicationId": record.ID,
			"error":         err,
		})
		return
	}
	i.logger.Debug("application indexed", map[string]interface{}{"applicationId": record.ID})
}

func (i *Indexer) index(ctx context.Context, record *models.ApplicationRecord) error {
	body, err := json.Marshal(NewDocument(record))
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrIndexFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, i.config.Timeout)
	defer cancel()

	res, err := i.client.Index(
		i.config.Index,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(record.ID),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("%w: %s: %s", ErrIndexFailed, res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}
