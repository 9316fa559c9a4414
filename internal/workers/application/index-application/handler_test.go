// internal/workers/application/index-application/handler_test.go
package indexapplication

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"application-intake/internal/common/logger"
	"application-intake/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

func newTestServer(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	var requests []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := capturedRequest{Method: r.Method, Path: r.URL.Path}
		_ = json.Unmarshal(raw, &req.Body)
		requests = append(requests, req)

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestIndexer(t *testing.T, url string) *Indexer {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	require.NoError(t, err)
	return NewIndexer(&Config{Index: "job-applications", Timeout: 2 * time.Second}, client, logger.NewTestLogger(t))
}

func createTestRecord() *models.ApplicationRecord {
	return &models.ApplicationRecord{
		ID:                 "4f9c1c36-2a3b-4a55-9d1e-0c1d2e3f4a5b",
		CreatedAt:          models.NewISOTime(time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC)),
		FirstName:          "Sara",
		LastName:           "Ali",
		Email:              "sara@example.com",
		Phone:              "+966501234567",
		ExpectedSalary:     15000,
		PositionAppliedFor: "Senior Analyst",
		EducationLevel:     models.EducationBachelors,
		AvailabilityDate:   models.NewISOTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestIndexer_Execute(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated)
	indexer := newTestIndexer(t, srv.URL)

	require.NoError(t, indexer.index(context.Background(), createTestRecord()))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/job-applications/_doc/4f9c1c36-2a3b-4a55-9d1e-0c1d2e3f4a5b", req.Path)
	assert.Equal(t, "sara@example.com", req.Body["email"])
	assert.Equal(t, "2025-01-01T00:00:00.000Z", req.Body["availability_date"])
	assert.NotContains(t, req.Body, "expected_salary")
	assert.NotContains(t, req.Body, "phone")
}

func TestIndexer_ExecuteErrorStatus(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest)
	indexer := newTestIndexer(t, srv.URL)

	err := indexer.index(context.Background(), createTestRecord())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexFailed))
	assert.Contains(t, err.Error(), "400")
}

func TestIndexer_IndexSwallowsErrors(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusInternalServerError)
	indexer := newTestIndexer(t, srv.URL)

	assert.NotPanics(t, func() {
		indexer.Index(context.Background(), createTestRecord())
	})
	assert.NotEmpty(t, *requests)
}

func TestIndexer_Disabled(t *testing.T) {
	var nilIndexer *Indexer
	assert.NotPanics(t, func() { nilIndexer.Index(context.Background(), createTestRecord()) })

	noClient := NewIndexer(&Config{Index: "x", Timeout: time.Second}, nil, logger.NewNoOpLogger())
	assert.NotPanics(t, func() { noClient.Index(context.Background(), createTestRecord()) })
}
