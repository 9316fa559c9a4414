// internal/workers/application/submit-application/models.go
package submitapplication

import (
	"context"

	"application-intake/internal/models"
	createapplicationrecord "application-intake/internal/workers/application/create-application-record"
	sendnotification "application-intake/internal/workers/application/send-notification"
)

// Input is one form submission: the candidate fields, the availability date
// as entered, and both documents.
type Input struct {
	Candidate        models.CandidateBundle
	AvailabilityDate string
	Resume           *models.DocumentBlob
	CoverLetter      *models.DocumentBlob
}

// Result is returned once the record is committed.
type Result struct {
	Outcome             Outcome                   `json:"outcome"`
	ApplicationID       string                    `json:"applicationId"`
	Record              *models.ApplicationRecord `json:"record"`
	NotificationWarning bool                      `json:"notificationWarning"`
	Warnings            []string                  `json:"warnings,omitempty"`
}

// Outcome classifies a submission. It doubles as the metrics label.
type Outcome string

const (
	OutcomeSuccess              Outcome = "success"
	OutcomeValidationFailed     Outcome = "invalid"
	OutcomeMissingDocument      Outcome = "missing_document"
	OutcomeDuplicateApplication Outcome = "duplicate"
	OutcomeUploadFailed         Outcome = "upload_failed"
	OutcomePersistFailed        Outcome = "persist_failed"
	OutcomeInternal             Outcome = "internal"
)

// Form field names used for precondition errors.
const (
	FieldAvailabilityDate = "availabilityDate"
	FieldResume           = "resume"
	FieldCoverLetter      = "coverLetter"
)

const (
	msgAvailabilityDateRequired = "Availability date is required / تاريخ الإتاحة مطلوب"
	msgAvailabilityDateInvalid  = "Invalid availability date / تاريخ الإتاحة غير صالح"
	msgResumeRequired           = "Resume is required / السيرة الذاتية مطلوبة"
	msgCoverLetterRequired      = "Cover letter is required / خطاب التقديم مطلوب"
	msgPDFOnly                  = "Only PDF files are accepted / يُقبل فقط ملفات PDF"
	msgFileTooLarge             = "File is too large / حجم الملف كبير جدًا"
)

// RecordStore persists application records.
type RecordStore interface {
	SelectByEmail(ctx context.Context, email string) (*models.ApplicationRecord, error)
	Insert(ctx context.Context, record *models.ApplicationRecord) (*createapplicationrecord.Output, error)
}

// DocumentStore persists and removes uploaded documents.
type DocumentStore interface {
	Upload(ctx context.Context, key string, blob []byte, contentType string) error
	Remove(ctx context.Context, keys []string) error
}

// Notifier sends the HR and candidate emails.
type Notifier interface {
	NotifyHR(ctx context.Context, record *models.ApplicationRecord, refs models.DocumentRefs) (*sendnotification.Output, error)
	NotifyCandidate(ctx context.Context, record *models.ApplicationRecord) (*sendnotification.Output, error)
}

// Indexer receives committed records. It never fails the submission.
type Indexer interface {
	Index(ctx context.Context, record *models.ApplicationRecord)
}

// Guard serializes submissions per email.
type Guard interface {
	Acquire(ctx context.Context, email string) (release func(), err error)
}
