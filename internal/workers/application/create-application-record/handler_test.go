// internal/workers/application/create-application-record/handler_test.go
package createapplicationrecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"application-intake/internal/common/logger"
	"application-intake/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var (
	testCreatedAt    = time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)
	testAvailability = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
)

func createTestRecord() *models.ApplicationRecord {
	year := 2018
	return &models.ApplicationRecord{
		FirstName:          "Sara",
		FirstNameAr:        "سارة",
		LastName:           "Ali",
		LastNameAr:         "علي",
		Email:              "Sara@Example.com",
		Phone:              "+966501234567",
		LinkedIn:           "https://linkedin.com/in/sara",
		ExpectedSalary:     15000,
		CurrentSalary:      12000,
		NoticePeriod:       "1 month",
		YearsOfExperience:  "5",
		CurrentCompany:     "Acme",
		CurrentPosition:    "Analyst",
		PositionAppliedFor: "Senior Analyst",
		EducationLevel:     models.EducationBachelors,
		University:         "KSU",
		GraduationYear:     &year,
		SpecialMotivation:  "I want to grow with a strong investment team.",
		AvailabilityDate:   models.NewISOTime(testAvailability),
		ResumeURL:          "resumes/1735689600000-cv.pdf",
		CoverLetterURL:     "cover-letters/1735689600000-cl.pdf",
	}
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(LoadConfig(), db, logger.NewTestLogger(t)), mock
}

func expectInsert(mock sqlmock.Sqlmock) *sqlmock.ExpectedExec {
	return mock.ExpectExec(`INSERT INTO job_applications`).
		WithArgs(
			sqlmock.AnyArg(), // id
			sqlmock.AnyArg(), // created_at
			"Sara", "سارة", "Ali", "علي",
			"sara@example.com",
			"+966501234567",
			"https://linkedin.com/in/sara",
			nil, // portfolio_url
			15000.0, 12000.0,
			"1 month", "5",
			"Acme", "Analyst", "Senior Analyst",
			"bachelors",
			"KSU",
			nil, // major
			int64(2018),
			"I want to grow with a strong investment team.",
			testAvailability,
			"resumes/1735689600000-cv.pdf",
			"cover-letters/1735689600000-cl.pdf",
		)
}

// ==========================
// Insert
// ==========================

func TestStore_Insert_Success(t *testing.T) {
	store, mock := newTestStore(t)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	record := createTestRecord()
	output, err := store.Insert(context.Background(), record)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, record.ID, output.ApplicationID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.Equal(t, "sara@example.com", record.Email)

	_, err = time.Parse(models.ISOLayout, output.CreatedAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Insert_KeepsAssignedIdentity(t *testing.T) {
	store, mock := newTestStore(t)
	expectInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))

	record := createTestRecord()
	record.ID = "fixed-id"
	record.CreatedAt = models.NewISOTime(testCreatedAt)

	output, err := store.Insert(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", output.ApplicationID)
	assert.Equal(t, "2025-01-02T09:30:00.000Z", output.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Insert_Errors(t *testing.T) {
	tests := []struct {
		name        string
		dbErr       error
		expectedErr error
	}{
		{
			name:        "unique violation maps to duplicate",
			dbErr:       &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"},
			expectedErr: ErrDuplicateApplication,
		},
		{
			name:        "other postgres error",
			dbErr:       &pq.Error{Code: "23502", Message: "null value in column"},
			expectedErr: ErrDatabaseInsertFailed,
		},
		{
			name:        "connection error",
			dbErr:       errors.New("connection refused"),
			expectedErr: ErrDatabaseInsertFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newTestStore(t)
			expectInsert(mock).WillReturnError(tt.dbErr)

			output, err := store.Insert(context.Background(), createTestRecord())
			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// SelectByEmail
// ==========================

func TestStore_SelectByEmail_Found(t *testing.T) {
	store, mock := newTestStore(t)

	rows := sqlmock.NewRows(columns).AddRow(
		"app-1", testCreatedAt,
		"Sara", "سارة", "Ali", "علي",
		"sara@example.com", "+966501234567", "https://linkedin.com/in/sara", nil,
		15000.0, 12000.0, "1 month", "5",
		"Acme", "Analyst", "Senior Analyst",
		"bachelors", "KSU", nil, int64(2018),
		"I want to grow with a strong investment team.", testAvailability,
		"resumes/1-cv.pdf", "cover-letters/1-cl.pdf",
	)
	mock.ExpectQuery(`SELECT .+ FROM job_applications WHERE lower\(email\) = \$1`).
		WithArgs("sara@example.com").
		WillReturnRows(rows)

	record, err := store.SelectByEmail(context.Background(), "  SARA@example.com")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "app-1", record.ID)
	assert.Equal(t, "2025-01-02T09:30:00.000Z", record.CreatedAt.String())
	assert.Equal(t, "2025-01-01T00:00:00.000Z", record.AvailabilityDate.String())
	assert.Empty(t, record.PortfolioURL)
	assert.Equal(t, "KSU", record.University)
	require.NotNil(t, record.GraduationYear)
	assert.Equal(t, 2018, *record.GraduationYear)
	assert.Equal(t, models.DocumentRefs{ResumePath: "resumes/1-cv.pdf", CoverLetterPath: "cover-letters/1-cl.pdf"}, record.Refs())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SelectByEmail_NotFound(t *testing.T) {
	store, mock := newTestStore(t)
	mock.ExpectQuery(`SELECT .+ FROM job_applications`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(columns))

	record, err := store.SelectByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, record)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SelectByEmail_QueryError(t *testing.T) {
	store, mock := newTestStore(t)
	mock.ExpectQuery(`SELECT .+ FROM job_applications`).
		WithArgs("sara@example.com").
		WillReturnError(errors.New("timeout"))

	record, err := store.SelectByEmail(context.Background(), "sara@example.com")
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrLookupFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SelectByEmail_NullOptionalColumns(t *testing.T) {
	store, mock := newTestStore(t)
	mock.ExpectQuery(`SELECT .+ FROM job_applications`).
		WithArgs("sara@example.com").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"app-1", testCreatedAt, "Sara", "سارة", "Ali", "علي",
			"sara@example.com", "+966501234567", "https://linkedin.com/in/sara", "https://sara.dev",
			15000.0, 12000.0, "1 month", "5", "Acme", "Analyst", "Senior Analyst",
			"masters", nil, nil, nil, "motivation text long enough", testAvailability,
			"resumes/1-cv.pdf", "cover-letters/1-cl.pdf",
		))

	record, err := store.SelectByEmail(context.Background(), "sara@example.com")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Nil(t, record.GraduationYear)
	assert.Empty(t, record.University)
	assert.NoError(t, mock.ExpectationsWereMet())
}
