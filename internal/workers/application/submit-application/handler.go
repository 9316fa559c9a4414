// internal/workers/application/submit-application/handler.go
package submitapplication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"
	"application-intake/internal/common/observability"
	"application-intake/internal/models"
	createapplicationrecord "application-intake/internal/workers/application/create-application-record"
	storeapplicationdocuments "application-intake/internal/workers/application/store-application-documents"
	validateapplicationdata "application-intake/internal/workers/application/validate-application-data"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	TaskType = "submit-application"
)

type Dependencies struct {
	Records       RecordStore
	Documents     DocumentStore
	Notifier      Notifier
	Indexer       Indexer
	Guard         Guard
	Observability *observability.Observability
	Logger        logger.Logger
}

// Orchestrator turns one form submission into a stored record, two stored
// documents and two notifications.
type Orchestrator struct {
	config    *Config
	records   RecordStore
	documents DocumentStore
	notifier  Notifier
	indexer   Indexer
	guard     Guard
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

func NewOrchestrator(config *Config, deps Dependencies) *Orchestrator {
	return &Orchestrator{
		config:    config,
		records:   deps.Records,
		documents: deps.Documents,
		notifier:  deps.Notifier,
		indexer:   deps.Indexer,
		guard:     deps.Guard,
		obs:       deps.Observability,
		logger:    deps.Logger.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:       time.Now,
	}
}

// Submit runs the submission. Validation and preconditions are checked before
// any I/O. The returned error is always a *apperrors.StandardError; Result is
// non-nil only once the record is committed.
func (o *Orchestrator) Submit(ctx context.Context, in *Input) (*Result, error) {
	started := time.Now()
	ctx, span := o.obs.StartSpan(ctx, TaskType)

	result, err := o.submit(ctx, in)

	observability.EndSpan(span, err)
	outcome := OutcomeOf(err)
	metrics.SubmissionsTotal.WithLabelValues(string(outcome)).Inc()
	metrics.SubmissionDuration.WithLabelValues(string(outcome)).Observe(time.Since(started).Seconds())

	if err != nil {
		o.logger.Warn("submission rejected", map[string]interface{}{
			"outcome": outcome,
			"error":   err,
		})
		return nil, err
	}

	o.logger.Info("submission completed", map[string]interface{}{
		"applicationId":       result.ApplicationID,
		"notificationWarning": result.NotificationWarning,
		"duration_ms":         time.Since(started).Milliseconds(),
	})
	return result, nil
}

func (o *Orchestrator) submit(ctx context.Context, in *Input) (*Result, error) {
	if in == nil {
		return nil, apperrors.NewInvalidRequestError("submission is empty")
	}

	availability, err := o.checkPreconditions(in)
	if err != nil {
		return nil, err
	}

	bundle := validateapplicationdata.Sanitize(in.Candidate)
	email := models.NormalizeEmail(bundle.Email)

	if o.guard != nil {
		release, err := o.guard.Acquire(ctx, email)
		if errors.Is(err, ErrSubmissionInProgress) {
			return nil, apperrors.NewDuplicateApplicationError(email)
		}
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		defer release()
	}

	if err := o.checkDuplicate(ctx, email); err != nil {
		return nil, err
	}

	at := o.now().UTC()
	refs := models.DocumentRefs{
		ResumePath:      storeapplicationdocuments.ResumePath(in.Resume.Filename, at),
		CoverLetterPath: storeapplicationdocuments.CoverLetterPath(in.CoverLetter.Filename, at),
	}

	saga := NewSaga(o.logger)

	if err := o.uploadDocuments(ctx, saga, refs, in); err != nil {
		o.compensate(ctx, saga)
		return nil, apperrors.NewDocumentUploadFailedError(err)
	}

	record := buildRecord(bundle, availability, refs, at)

	if err := o.insertRecord(ctx, record); err != nil {
		o.compensate(ctx, saga)
		if errors.Is(err, createapplicationrecord.ErrDuplicateApplication) {
			return nil, apperrors.NewDuplicateApplicationError(email)
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	saga.Commit()

	result := &Result{
		Outcome:       OutcomeSuccess,
		ApplicationID: record.ID,
		Record:        record,
	}

	// the record is durable; nothing below may fail the submission or be
	// cut short by the caller going away
	after := context.WithoutCancel(ctx)
	o.notify(after, result, refs)
	if o.indexer != nil {
		o.indexer.Index(after, record)
	}

	return result, nil
}

// checkPreconditions validates the form, the availability date and both
// documents. It performs no I/O.
func (o *Orchestrator) checkPreconditions(in *Input) (time.Time, error) {
	if fields := validateapplicationdata.Validate(in.Candidate, o.config.MinMotivationLength); fields != nil {
		return time.Time{}, apperrors.NewApplicationValidationFailedError(fields)
	}

	raw := strings.TrimSpace(in.AvailabilityDate)
	if raw == "" {
		return time.Time{}, apperrors.NewAvailabilityDateRequiredError(FieldAvailabilityDate, msgAvailabilityDateRequired)
	}
	availability, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewApplicationValidationFailedError(map[string]string{
			FieldAvailabilityDate: msgAvailabilityDateInvalid,
		})
	}

	if err := o.checkDocument(FieldResume, msgResumeRequired, in.Resume); err != nil {
		return time.Time{}, err
	}
	if err := o.checkDocument(FieldCoverLetter, msgCoverLetterRequired, in.CoverLetter); err != nil {
		return time.Time{}, err
	}
	return availability, nil
}

func (o *Orchestrator) checkDocument(field, missingMsg string, blob *models.DocumentBlob) error {
	if blob.Size() == 0 {
		return apperrors.NewMissingDocumentError(field, missingMsg)
	}
	if o.config.MaxDocumentBytes > 0 && int64(blob.Size()) > o.config.MaxDocumentBytes {
		return apperrors.NewMissingDocumentError(field, msgFileTooLarge)
	}
	if !mimetype.Detect(blob.Content).Is("application/pdf") {
		return apperrors.NewMissingDocumentError(field, msgPDFOnly)
	}
	return nil
}

func (o *Orchestrator) checkDuplicate(ctx context.Context, email string) error {
	started := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "duplicate-check")

	lookupCtx, cancel := context.WithTimeout(ctx, o.config.LookupTimeout)
	existing, err := o.records.SelectByEmail(lookupCtx, email)
	cancel()

	observability.EndSpan(span, err)
	o.obs.RecordStep(ctx, "duplicate-check", started, err)

	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(fmt.Errorf("duplicate check: %w", err))
	}
	if existing != nil {
		return apperrors.NewDuplicateApplicationError(email)
	}
	return nil
}

// uploadDocuments stores both documents concurrently and registers an undo
// action for each one that may have reached the store.
func (o *Orchestrator) uploadDocuments(ctx context.Context, saga *Saga, refs models.DocumentRefs, in *Input) error {
	started := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "upload-documents")

	uploads := []struct {
		name string
		key  string
		blob *models.DocumentBlob
	}{
		{FieldResume, refs.ResumePath, in.Resume},
		{FieldCoverLetter, refs.CoverLetterPath, in.CoverLetter},
	}
	landed := make([]bool, len(uploads))

	uploadCtx, cancel := context.WithTimeout(ctx, o.config.UploadTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(uploadCtx)
	for i, u := range uploads {
		g.Go(func() error {
			err := o.documents.Upload(gctx, u.key, u.blob.Content, u.blob.ContentType)
			// an upload cut short by its sibling's failure may still have been stored
			landed[i] = err == nil || gctx.Err() != nil
			if err != nil {
				return fmt.Errorf("%s: %w", u.name, err)
			}
			return nil
		})
	}
	err := g.Wait()

	for i, u := range uploads {
		if !landed[i] {
			continue
		}
		key := u.key
		saga.Push("remove "+u.name, func(ctx context.Context) error {
			return o.documents.Remove(ctx, []string{key})
		})
	}

	observability.EndSpan(span, err)
	o.obs.RecordStep(ctx, "upload-documents", started, err)
	return err
}

func (o *Orchestrator) insertRecord(ctx context.Context, record *models.ApplicationRecord) error {
	started := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "insert-record")

	insertCtx, cancel := context.WithTimeout(ctx, o.config.InsertTimeout)
	defer cancel()

	_, err := o.records.Insert(insertCtx, record)

	observability.EndSpan(span, err)
	o.obs.RecordStep(ctx, "insert-record", started, err)
	return err
}

// compensate runs the saga on a context that survives the caller's
// cancellation, bounded by the cleanup timeout.
func (o *Orchestrator) compensate(ctx context.Context, saga *Saga) {
	if saga.Len() == 0 {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.CleanupTimeout)
	defer cancel()

	if errs := saga.Compensate(cleanupCtx); len(errs) > 0 {
		o.logger.Error("cleanup incomplete, documents may be orphaned", map[string]interface{}{
			"errors": errors.Join(errs...).Error(),
		})
	}
}

// notify sends both emails. Failures only set the warning flag.
func (o *Orchestrator) notify(ctx context.Context, result *Result, refs models.DocumentRefs) {
	ctx, span := o.obs.StartSpan(ctx, "notify",
		attribute.String("application.id", result.ApplicationID))
	defer span.End()

	started := time.Now()
	_, err := o.notifier.NotifyHR(ctx, result.Record, refs)
	o.obs.RecordStep(ctx, "notify-hr", started, err)
	if err != nil {
		result.NotificationWarning = true
		result.Warnings = append(result.Warnings, "hr notification failed")
	}

	started = time.Now()
	_, err = o.notifier.NotifyCandidate(ctx, result.Record)
	o.obs.RecordStep(ctx, "notify-candidate", started, err)
	if err != nil {
		result.NotificationWarning = true
		result.Warnings = append(result.Warnings, "candidate confirmation failed")
	}
}

// buildRecord maps the sanitized form onto the persisted record. The bundle
// has passed validation, so the numeric fields parse.
func buildRecord(b models.CandidateBundle, availability time.Time, refs models.DocumentRefs, at time.Time) *models.ApplicationRecord {
	expected, _ := validateapplicationdata.ParseAmount(b.ExpectedSalary)
	current, _ := validateapplicationdata.ParseAmount(b.CurrentSalary)
	graduation, _ := validateapplicationdata.ParseGraduationYear(b.GraduationYear)

	return &models.ApplicationRecord{
		CreatedAt:          models.NewISOTime(at),
		FirstName:          b.FirstName,
		FirstNameAr:        b.FirstNameAr,
		LastName:           b.LastName,
		LastNameAr:         b.LastNameAr,
		Email:              models.NormalizeEmail(b.Email),
		Phone:              b.Phone,
		LinkedIn:           b.LinkedIn,
		PortfolioURL:       b.PortfolioURL,
		ExpectedSalary:     expected,
		CurrentSalary:      current,
		NoticePeriod:       b.NoticePeriod,
		YearsOfExperience:  b.YearsOfExperience,
		CurrentCompany:     b.CurrentCompany,
		CurrentPosition:    b.CurrentPosition,
		PositionAppliedFor: b.PositionAppliedFor,
		EducationLevel:     b.EducationLevel,
		University:         b.University,
		Major:              b.Major,
		GraduationYear:     graduation,
		SpecialMotivation:  b.SpecialMotivation,
		AvailabilityDate:   models.NewISOTime(availability),
		ResumeURL:          refs.ResumePath,
		CoverLetterURL:     refs.CoverLetterPath,
	}
}

// OutcomeOf classifies a Submit error.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	switch apperrors.Normalize(err).Code {
	case apperrors.ErrCodeApplicationValidationFailed,
		apperrors.ErrCodeAvailabilityDateRequired,
		apperrors.ErrCodeInvalidRequest:
		return OutcomeValidationFailed
	case apperrors.ErrCodeMissingDocument:
		return OutcomeMissingDocument
	case apperrors.ErrCodeDuplicateApplication:
		return OutcomeDuplicateApplication
	case apperrors.ErrCodeDocumentUploadFailed:
		return OutcomeUploadFailed
	case apperrors.ErrCodeDatabaseInsertFailed:
		return OutcomePersistFailed
	default:
		return OutcomeInternal
	}
}
