// internal/workers/application/submit-application/handler_test.go
package submitapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/models"
	createapplicationrecord "application-intake/internal/workers/application/create-application-record"
	sendnotification "application-intake/internal/workers/application/send-notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type FakeRecords struct {
	mu          sync.Mutex
	records     map[string]*models.ApplicationRecord
	lookups     int
	inserts     int
	SelectFunc  func(ctx context.Context, email string) (*models.ApplicationRecord, error)
	InsertError error
}

func newFakeRecords() *FakeRecords {
	return &FakeRecords{records: make(map[string]*models.ApplicationRecord)}
}

func (f *FakeRecords) SelectByEmail(ctx context.Context, email string) (*models.ApplicationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.SelectFunc != nil {
		return f.SelectFunc(ctx, email)
	}
	return f.records[models.NormalizeEmail(email)], nil
}

func (f *FakeRecords) Insert(ctx context.Context, record *models.ApplicationRecord) (*createapplicationrecord.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.InsertError != nil {
		return nil, f.InsertError
	}
	if _, exists := f.records[record.Email]; exists {
		return nil, fmt.Errorf("%w: email %s already applied", createapplicationrecord.ErrDuplicateApplication, record.Email)
	}
	record.ID = fmt.Sprintf("app-%d", len(f.records)+1)
	f.records[record.Email] = record
	return &createapplicationrecord.Output{ApplicationID: record.ID, CreatedAt: record.CreatedAt.String()}, nil
}

func (f *FakeRecords) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type FakeDocuments struct {
	mu         sync.Mutex
	objects    map[string][]byte
	uploads    int
	removed    []string
	UploadFunc func(key string) error
	RemoveErr  error
}

func newFakeDocuments() *FakeDocuments {
	return &FakeDocuments{objects: make(map[string][]byte)}
}

func (f *FakeDocuments) Upload(ctx context.Context, key string, blob []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.UploadFunc != nil {
		if err := f.UploadFunc(key); err != nil {
			return err
		}
	}
	f.objects[key] = append([]byte(nil), blob...)
	return nil
}

func (f *FakeDocuments) Remove(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	for _, key := range keys {
		delete(f.objects, key)
		f.removed = append(f.removed, key)
	}
	return nil
}

func (f *FakeDocuments) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for key := range f.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type FakeNotifier struct {
	mu           sync.Mutex
	HRError      error
	CandidateErr error
	hrCalls      []models.DocumentRefs
	candidates   []string
}

func (f *FakeNotifier) NotifyHR(ctx context.Context, record *models.ApplicationRecord, refs models.DocumentRefs) (*sendnotification.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hrCalls = append(f.hrCalls, refs)
	if f.HRError != nil {
		return nil, f.HRError
	}
	return &sendnotification.Output{Recipient: sendnotification.RecipientHR, Status: sendnotification.StatusSent}, nil
}

func (f *FakeNotifier) NotifyCandidate(ctx context.Context, record *models.ApplicationRecord) (*sendnotification.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidates = append(f.candidates, record.Email)
	if f.CandidateErr != nil {
		return nil, f.CandidateErr
	}
	return &sendnotification.Output{Recipient: sendnotification.RecipientCandidate, Status: sendnotification.StatusSent}, nil
}

type FakeIndexer struct {
	indexed []string
}

func (f *FakeIndexer) Index(ctx context.Context, record *models.ApplicationRecord) {
	f.indexed = append(f.indexed, record.ID)
}

type FakeGuard struct {
	held     map[string]bool
	released int
}

func (f *FakeGuard) Acquire(ctx context.Context, email string) (func(), error) {
	if f.held[email] {
		return func() {}, ErrSubmissionInProgress
	}
	return func() { f.released++ }, nil
}

// ==========================
// Test Helpers
// ==========================

var fixedNow = time.Date(2024, 12, 20, 8, 30, 0, 0, time.UTC)

type testEnv struct {
	orchestrator *Orchestrator
	records      *FakeRecords
	documents    *FakeDocuments
	notifier     *FakeNotifier
	indexer      *FakeIndexer
	guard        *FakeGuard
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		records:   newFakeRecords(),
		documents: newFakeDocuments(),
		notifier:  &FakeNotifier{},
		indexer:   &FakeIndexer{},
		guard:     &FakeGuard{held: map[string]bool{}},
	}
	env.orchestrator = NewOrchestrator(DefaultConfig(), Dependencies{
		Records:   env.records,
		Documents: env.documents,
		Notifier:  env.notifier,
		Indexer:   env.indexer,
		Guard:     env.guard,
		Logger:    logger.NewTestLogger(t),
	})
	env.orchestrator.now = func() time.Time { return fixedNow }
	return env
}

func pdfBlob(name, body string) *models.DocumentBlob {
	return &models.DocumentBlob{
		Filename:    name,
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4\n% " + body + "\n%%EOF\n"),
	}
}

func createValidInput(email string) *Input {
	return &Input{
		Candidate: models.CandidateBundle{
			FirstName:          "Sara",
			FirstNameAr:        "سارة",
			LastName:           "Ali",
			LastNameAr:         "علي",
			Email:              email,
			Phone:              "+966 50 123 4567",
			LinkedIn:           "https://linkedin.com/in/sara",
			ExpectedSalary:     "10000",
			CurrentSalary:      "8000",
			NoticePeriod:       "1 month",
			YearsOfExperience:  "5",
			CurrentCompany:     "Acme",
			CurrentPosition:    "Analyst",
			PositionAppliedFor: "Senior Analyst",
			EducationLevel:     models.EducationBachelors,
			GraduationYear:     "2018",
			SpecialMotivation:  "I want to grow with a strong investment team.",
		},
		AvailabilityDate: "2025-01-01",
		Resume:           pdfBlob("sara-cv.pdf", "resume"),
		CoverLetter:      pdfBlob("letter.pdf", "cover letter"),
	}
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.StandardError {
	t.Helper()
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr), "expected StandardError, got %v", err)
	require.Equal(t, code, stdErr.Code)
	return stdErr
}

func (e *testEnv) assertNoIO(t *testing.T) {
	t.Helper()
	assert.Zero(t, e.records.lookups)
	assert.Zero(t, e.records.inserts)
	assert.Zero(t, e.documents.uploads)
	assert.Empty(t, e.notifier.hrCalls)
	assert.Empty(t, e.notifier.candidates)
}

// ==========================
// Success path
// ==========================

func TestOrchestrator_Submit_Success(t *testing.T) {
	env := newTestEnv(t)
	in := createValidInput("A@X.com")

	result, err := env.orchestrator.Submit(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.False(t, result.NotificationWarning)
	assert.Equal(t, "app-1", result.ApplicationID)
	assert.Equal(t, 1, env.records.count())

	record := result.Record
	assert.Equal(t, "a@x.com", record.Email)
	assert.Equal(t, "resumes/1734683400000-sara-cv.pdf", record.ResumeURL)
	assert.Equal(t, "cover-letters/1734683400000-letter.pdf", record.CoverLetterURL)
	assert.Equal(t, fixedNow, record.CreatedAt.Time)
	require.NotNil(t, record.GraduationYear)
	assert.Equal(t, 2018, *record.GraduationYear)

	// references resolve to the uploaded blobs
	assert.Equal(t, []string{record.CoverLetterURL, record.ResumeURL}, env.documents.keys())
	assert.Equal(t, in.Resume.Content, env.documents.objects[record.ResumeURL])
	assert.Equal(t, in.CoverLetter.Content, env.documents.objects[record.CoverLetterURL])

	require.Len(t, env.notifier.hrCalls, 1)
	assert.Equal(t, record.Refs(), env.notifier.hrCalls[0])
	assert.Equal(t, []string{"a@x.com"}, env.notifier.candidates)
	assert.Equal(t, []string{"app-1"}, env.indexer.indexed)
	assert.Equal(t, 1, env.guard.released)
}

func TestOrchestrator_Submit_RecordShape(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	require.NoError(t, err)

	raw, err := json.Marshal(result.Record)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, float64(10000), doc["expected_salary"])
	assert.Equal(t, float64(8000), doc["current_salary"])
	assert.Equal(t, "2025-01-01T00:00:00.000Z", doc["availability_date"])
	assert.Equal(t, "+966 50 123 4567", doc["phone"])
	assert.NotContains(t, doc, "portfolio_url")
}

func TestOrchestrator_Submit_NotificationsFailStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.HRError = apperrors.NewNotificationSendFailedError("hr", errors.New("503"))
	env.notifier.CandidateErr = apperrors.NewNotificationSendFailedError("candidate", errors.New("503"))

	result, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.True(t, result.NotificationWarning)
	assert.Len(t, result.Warnings, 2)

	stored, err := env.records.SelectByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, env.documents.keys(), 2)
	assert.Empty(t, env.documents.removed)
}

func TestOrchestrator_Submit_OneNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.CandidateErr = errors.New("invalid recipient")

	result, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	require.NoError(t, err)
	assert.True(t, result.NotificationWarning)
	assert.Equal(t, []string{"candidate confirmation failed"}, result.Warnings)
	assert.Len(t, env.notifier.hrCalls, 1)
}

func TestOrchestrator_Submit_DifferentEmailsIdenticalData(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	require.NoError(t, err)
	_, err = env.orchestrator.Submit(context.Background(), createValidInput("b@x.com"))
	require.NoError(t, err)

	assert.Equal(t, 2, env.records.count())
}

// ==========================
// Duplicates
// ==========================

func TestOrchestrator_Submit_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	require.NoError(t, err)
	uploadsBefore := env.documents.uploads
	keysBefore := env.documents.keys()

	_, err = env.orchestrator.Submit(context.Background(), createValidInput(" A@x.COM"))
	requireCode(t, err, apperrors.ErrCodeDuplicateApplication)
	assert.Equal(t, OutcomeDuplicateApplication, OutcomeOf(err))

	assert.Equal(t, 1, env.records.count())
	assert.Equal(t, uploadsBefore, env.documents.uploads)
	assert.Equal(t, keysBefore, env.documents.keys())
	assert.Len(t, env.notifier.hrCalls, 1)
}

func TestOrchestrator_Submit_UniqueViolationOnInsert(t *testing.T) {
	env := newTestEnv(t)
	// lookup misses, the row appears before the insert
	env.records.SelectFunc = func(ctx context.Context, email string) (*models.ApplicationRecord, error) {
		return nil, nil
	}
	env.records.records["a@x.com"] = &models.ApplicationRecord{ID: "other", Email: "a@x.com"}

	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	requireCode(t, err, apperrors.ErrCodeDuplicateApplication)

	assert.Empty(t, env.documents.keys())
	assert.Len(t, env.documents.removed, 2)
	assert.Empty(t, env.notifier.hrCalls)
}

func TestOrchestrator_Submit_GuardHeld(t *testing.T) {
	env := newTestEnv(t)
	env.guard.held["a@x.com"] = true

	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	requireCode(t, err, apperrors.ErrCodeDuplicateApplication)
	env.assertNoIO(t)
}

// ==========================
// Upload failures
// ==========================

func TestOrchestrator_Submit_SecondUploadFails(t *testing.T) {
	env := newTestEnv(t)
	env.documents.UploadFunc = func(key string) error {
		if strings.HasPrefix(key, "cover-letters/") {
			return errors.New("DOCUMENT_UPLOAD_FAILED: put object: timeout")
		}
		return nil
	}

	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	requireCode(t, err, apperrors.ErrCodeDocumentUploadFailed)
	assert.Equal(t, OutcomeUploadFailed, OutcomeOf(err))

	assert.Empty(t, env.documents.keys())
	assert.Contains(t, env.documents.removed, "resumes/1734683400000-sara-cv.pdf")
	assert.Zero(t, env.records.inserts)
	assert.Zero(t, env.records.count())
	assert.Empty(t, env.notifier.hrCalls)
}

func TestOrchestrator_Submit_BothUploadsFail(t *testing.T) {
	env := newTestEnv(t)
	env.documents.UploadFunc = func(key string) error { return errors.New("bucket missing") }

	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	requireCode(t, err, apperrors.ErrCodeDocumentUploadFailed)
	assert.Empty(t, env.documents.keys())
	assert.Zero(t, env.records.inserts)
}

func TestOrchestrator_Submit_CleanupFailureStillReportsUploadFailed(t *testing.T) {
	env := newTestEnv(t)
	env.documents.UploadFunc = func(key string) error {
		if strings.HasPrefix(key, "resumes/") {
			return errors.New("slow down")
		}
		return nil
	}
	env.documents.RemoveErr = errors.New("access denied")

	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	requireCode(t, err, apperrors.ErrCodeDocumentUploadFailed)
}

// ==========================
// Persistence failures
// ==========================

func TestOrchestrator_Submit_InsertFails(t *testing.T) {
	env := newTestEnv(t)
	env.records.InsertError = fmt.Errorf("%w: insert failed: connection reset", createapplicationrecord.ErrDatabaseInsertFailed)

	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	stdErr := requireCode(t, err, apperrors.ErrCodeDatabaseInsertFailed)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, OutcomePersistFailed, OutcomeOf(err))

	assert.Empty(t, env.documents.keys())
	assert.ElementsMatch(t, []string{
		"resumes/1734683400000-sara-cv.pdf",
		"cover-letters/1734683400000-letter.pdf",
	}, env.documents.removed)
	assert.Zero(t, env.records.count())
	assert.Empty(t, env.notifier.hrCalls)
	assert.Empty(t, env.indexer.indexed)
}

func TestOrchestrator_Submit_LookupFails(t *testing.T) {
	env := newTestEnv(t)
	env.records.SelectFunc = func(ctx context.Context, email string) (*models.ApplicationRecord, error) {
		return nil, errors.New("LOOKUP_FAILED: connection refused")
	}

	_, err := env.orchestrator.Submit(context.Background(), createValidInput("a@x.com"))
	requireCode(t, err, apperrors.ErrCodeDatabaseInsertFailed)
	assert.Zero(t, env.documents.uploads)
}

// ==========================
// Validation and preconditions
// ==========================

func TestOrchestrator_Submit_NegativeSalary(t *testing.T) {
	env := newTestEnv(t)
	in := createValidInput("a@x.com")
	in.Candidate.ExpectedSalary = "-5"

	_, err := env.orchestrator.Submit(context.Background(), in)
	stdErr := requireCode(t, err, apperrors.ErrCodeApplicationValidationFailed)
	assert.Contains(t, stdErr.FieldErrors(), "expectedSalary")
	assert.Len(t, stdErr.FieldErrors(), 1)
	assert.Equal(t, OutcomeValidationFailed, OutcomeOf(err))
	env.assertNoIO(t)
}

func TestOrchestrator_Submit_URLWithoutHost(t *testing.T) {
	env := newTestEnv(t)
	in := createValidInput("a@x.com")
	in.Candidate.LinkedIn = "https://"
	in.Candidate.PortfolioURL = "http:/x"
	in.Candidate.CurrentSalary = "1_000"

	_, err := env.orchestrator.Submit(context.Background(), in)
	stdErr := requireCode(t, err, apperrors.ErrCodeApplicationValidationFailed)
	fields := stdErr.FieldErrors()
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "linkedin")
	assert.Contains(t, fields, "portfolioUrl")
	assert.Contains(t, fields, "currentSalary")
	env.assertNoIO(t)
}

func TestOrchestrator_Submit_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
		code   apperrors.ErrorCode
		field  string
		msg    string
	}{
		{
			name:   "missing availability date",
			mutate: func(in *Input) { in.AvailabilityDate = "  " },
			code:   apperrors.ErrCodeAvailabilityDateRequired,
			field:  FieldAvailabilityDate,
			msg:    msgAvailabilityDateRequired,
		},
		{
			name:   "unparseable availability date",
			mutate: func(in *Input) { in.AvailabilityDate = "next week" },
			code:   apperrors.ErrCodeApplicationValidationFailed,
			field:  FieldAvailabilityDate,
			msg:    msgAvailabilityDateInvalid,
		},
		{
			name:   "missing resume",
			mutate: func(in *Input) { in.Resume = nil },
			code:   apperrors.ErrCodeMissingDocument,
			field:  FieldResume,
			msg:    msgResumeRequired,
		},
		{
			name:   "empty cover letter",
			mutate: func(in *Input) { in.CoverLetter.Content = nil },
			code:   apperrors.ErrCodeMissingDocument,
			field:  FieldCoverLetter,
			msg:    msgCoverLetterRequired,
		},
		{
			name: "resume is not a pdf",
			mutate: func(in *Input) {
				in.Resume = &models.DocumentBlob{Filename: "cv.docx", Content: []byte("PK\x03\x04 not a pdf")}
			},
			code:  apperrors.ErrCodeMissingDocument,
			field: FieldResume,
			msg:   msgPDFOnly,
		},
		{
			name: "cover letter too large",
			mutate: func(in *Input) {
				in.CoverLetter.Content = append([]byte("%PDF-1.4\n"), make([]byte, 6<<20)...)
			},
			code:  apperrors.ErrCodeMissingDocument,
			field: FieldCoverLetter,
			msg:   msgFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			in := createValidInput("a@x.com")
			tt.mutate(in)

			_, err := env.orchestrator.Submit(context.Background(), in)
			stdErr := requireCode(t, err, tt.code)
			assert.Equal(t, tt.msg, stdErr.FieldErrors()[tt.field])
			env.assertNoIO(t)
		})
	}
}

func TestOrchestrator_Submit_ValidationBeforeDateCheck(t *testing.T) {
	env := newTestEnv(t)
	in := createValidInput("not-an-email")
	in.AvailabilityDate = ""

	_, err := env.orchestrator.Submit(context.Background(), in)
	stdErr := requireCode(t, err, apperrors.ErrCodeApplicationValidationFailed)
	assert.Contains(t, stdErr.FieldErrors(), "email")
	env.assertNoIO(t)
}

func TestOrchestrator_Submit_NilInput(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.orchestrator.Submit(context.Background(), nil)
	requireCode(t, err, apperrors.ErrCodeInvalidRequest)
}

func TestOrchestrator_Submit_CancelledCallerStillNotifies(t *testing.T) {
	env := newTestEnv(t)
	notified := make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	env.orchestrator.notifier = &cancelOnInsertNotifier{FakeNotifier: env.notifier, done: notified}
	env.orchestrator.records = &cancelAfterInsert{FakeRecords: env.records, cancel: cancel}

	result, err := env.orchestrator.Submit(ctx, createValidInput("a@x.com"))
	require.NoError(t, err)
	assert.False(t, result.NotificationWarning)
	assert.Len(t, notified, 1)
}

type cancelAfterInsert struct {
	*FakeRecords
	cancel context.CancelFunc
}

func (c *cancelAfterInsert) Insert(ctx context.Context, record *models.ApplicationRecord) (*createapplicationrecord.Output, error) {
	out, err := c.FakeRecords.Insert(ctx, record)
	c.cancel()
	return out, err
}

type cancelOnInsertNotifier struct {
	*FakeNotifier
	done chan struct{}
}

func (n *cancelOnInsertNotifier) NotifyHR(ctx context.Context, record *models.ApplicationRecord, refs models.DocumentRefs) (*sendnotification.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.done <- struct{}{}
	return n.FakeNotifier.NotifyHR(ctx, record, refs)
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeSuccess},
		{apperrors.NewApplicationValidationFailedError(map[string]string{"email": "x"}), OutcomeValidationFailed},
		{apperrors.NewAvailabilityDateRequiredError(FieldAvailabilityDate, "x"), OutcomeValidationFailed},
		{apperrors.NewMissingDocumentError(FieldResume, "x"), OutcomeMissingDocument},
		{apperrors.NewDuplicateApplicationError("a@x.com"), OutcomeDuplicateApplication},
		{apperrors.NewDocumentUploadFailedError(errors.New("x")), OutcomeUploadFailed},
		{apperrors.NewDatabaseInsertFailedError(errors.New("x")), OutcomePersistFailed},
		{errors.New("boom"), OutcomeInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, OutcomeOf(tt.err))
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 20, c.MinMotivationLength)
	assert.Equal(t, int64(5<<20), c.MaxDocumentBytes)
	assert.Equal(t, 30*time.Second, c.UploadTimeout)
}
