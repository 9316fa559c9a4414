// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"application-intake/internal/common/logger"
	"application-intake/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

const (
	TaskType = "create-application-record"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
	ErrLookupFailed         = errors.New("DATABASE_LOOKUP_FAILED")
)

// Store persists application records and answers the duplicate check.
type Store struct {
	config *Config
	db     *sql.DB
	logger logger.Logger

	insertSQL string
	selectSQL string
}

func NewStore(config *Config, db *sql.DB, log logger.Logger) *Store {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	cols := strings.Join(columns, ", ")

	return &Store{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			config.Table, cols, strings.Join(placeholders, ", ")),
		selectSQL: fmt.Sprintf("SELECT %s FROM %s WHERE lower(email) = $1 LIMIT 1",
			cols, config.Table),
	}
}

// Insert stores the record, assigning an id and created_at when they are
// unset. A unique-index violation on the email is reported as
// ErrDuplicateApplication.
func (s *Store) Insert(ctx context.Context, record *models.ApplicationRecord) (*Output, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = models.NewISOTime(time.Now())
	}
	record.Email = models.NormalizeEmail(record.Email)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, s.insertSQL,
		record.ID,
		record.CreatedAt.Time,
		record.FirstName,
		record.FirstNameAr,
		record.LastName,
		record.LastNameAr,
		record.Email,
		record.Phone,
		record.LinkedIn,
		nullString(record.PortfolioURL),
		record.ExpectedSalary,
		record.CurrentSalary,
		record.NoticePeriod,
		record.YearsOfExperience,
		record.CurrentCompany,
		record.CurrentPosition,
		record.PositionAppliedFor,
		record.EducationLevel,
		nullString(record.University),
		nullString(record.Major),
		nullInt(record.GraduationYear),
		record.SpecialMotivation,
		record.AvailabilityDate.Time,
		record.ResumeURL,
		record.CoverLetterURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email %s already applied", ErrDuplicateApplication, record.Email)
		}
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	s.logger.Info("application record created", map[string]interface{}{
		"applicationId": record.ID,
		"position":      record.PositionAppliedFor,
	})

	return &Output{
		ApplicationID: record.ID,
		CreatedAt:     record.CreatedAt.String(),
	}, nil
}

// SelectByEmail returns the record stored for email, or nil when there is none.
func (s *Store) SelectByEmail(ctx context.Context, email string) (*models.ApplicationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var (
		r                       models.ApplicationRecord
		createdAt, availability time.Time
		portfolio, univ, major  sql.NullString
		gradYear                sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, s.selectSQL, models.NormalizeEmail(email)).Scan(
		&r.ID,
		&createdAt,
		&r.FirstName,
		&r.FirstNameAr,
		&r.LastName,
		&r.LastNameAr,
		&r.Email,
		&r.Phone,
		&r.LinkedIn,
		&portfolio,
		&r.ExpectedSalary,
		&r.CurrentSalary,
		&r.NoticePeriod,
		&r.YearsOfExperience,
		&r.CurrentCompany,
		&r.CurrentPosition,
		&r.PositionAppliedFor,
		&r.EducationLevel,
		&univ,
		&major,
		&gradYear,
		&r.SpecialMotivation,
		&availability,
		&r.ResumeURL,
		&r.CoverLetterURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	r.CreatedAt = models.NewISOTime(createdAt)
	r.AvailabilityDate = models.NewISOTime(availability)
	r.PortfolioURL = portfolio.String
	r.University = univ.String
	r.Major = major.String
	if gradYear.Valid {
		year := int(gradYear.Int64)
		r.GraduationYear = &year
	}
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgerrcode.UniqueViolation
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
