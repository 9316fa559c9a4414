// internal/models/application.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Education levels offered by the form.
const (
	EducationHighSchool = "high_school"
	EducationBachelors  = "bachelors"
	EducationMasters    = "masters"
	EducationPhD        = "phd"
)

// EducationLevels lists the accepted education level values.
var EducationLevels = []string{EducationHighSchool, EducationBachelors, EducationMasters, EducationPhD}

// CandidateBundle is the candidate data exactly as the form submits it.
// Numeric fields stay strings until the record is built.
type CandidateBundle struct {
	FirstName          string `json:"firstName" form:"firstName"`
	FirstNameAr        string `json:"firstNameAr" form:"firstNameAr"`
	LastName           string `json:"lastName" form:"lastName"`
	LastNameAr         string `json:"lastNameAr" form:"lastNameAr"`
	Email              string `json:"email" form:"email"`
	Phone              string `json:"phone" form:"phone"`
	LinkedIn           string `json:"linkedin" form:"linkedin"`
	PortfolioURL       string `json:"portfolioUrl" form:"portfolioUrl"`
	ExpectedSalary     string `json:"expectedSalary" form:"expectedSalary"`
	CurrentSalary      string `json:"currentSalary" form:"currentSalary"`
	NoticePeriod       string `json:"noticePeriod" form:"noticePeriod"`
	YearsOfExperience  string `json:"yearsOfExperience" form:"yearsOfExperience"`
	CurrentCompany     string `json:"currentCompany" form:"currentCompany"`
	CurrentPosition    string `json:"currentPosition" form:"currentPosition"`
	PositionAppliedFor string `json:"positionAppliedFor" form:"positionAppliedFor"`
	EducationLevel     string `json:"educationLevel" form:"educationLevel"`
	University         string `json:"university" form:"university"`
	Major              string `json:"major" form:"major"`
	GraduationYear     string `json:"graduationYear" form:"graduationYear"`
	SpecialMotivation  string `json:"specialMotivation" form:"specialMotivation"`
}

// DocumentBlob is an uploaded file held in memory for the duration of a submission.
type DocumentBlob struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Size returns the blob length in bytes.
func (b *DocumentBlob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Content)
}

// DocumentRefs are the storage paths of a record's documents.
type DocumentRefs struct {
	ResumePath      string `json:"resumeUrl"`
	CoverLetterPath string `json:"coverLetterUrl"`
}

// ApplicationRecord is the persisted application. JSON names match the table columns.
type ApplicationRecord struct {
	ID                 string  `json:"id"`
	CreatedAt          ISOTime `json:"created_at"`
	FirstName          string  `json:"first_name"`
	FirstNameAr        string  `json:"first_name_ar"`
	LastName           string  `json:"last_name"`
	LastNameAr         string  `json:"last_name_ar"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	LinkedIn           string  `json:"linkedin"`
	PortfolioURL       string  `json:"portfolio_url,omitempty"`
	ExpectedSalary     float64 `json:"expected_salary"`
	CurrentSalary      float64 `json:"current_salary"`
	NoticePeriod       string  `json:"notice_period"`
	YearsOfExperience  string  `json:"years_of_experience"`
	CurrentCompany     string  `json:"current_company"`
	CurrentPosition    string  `json:"current_position"`
	PositionAppliedFor string  `json:"position_applied_for"`
	EducationLevel     string  `json:"education_level"`
	University         string  `json:"university,omitempty"`
	Major              string  `json:"major,omitempty"`
	GraduationYear     *int    `json:"graduation_year,omitempty"`
	SpecialMotivation  string  `json:"special_motivation"`
	AvailabilityDate   ISOTime `json:"availability_date"`
	ResumeURL          string  `json:"resume_url"`
	CoverLetterURL     string  `json:"cover_letter_url"`
}

// Refs returns the record's document references.
func (r *ApplicationRecord) Refs() DocumentRefs {
	return DocumentRefs{ResumePath: r.ResumeURL, CoverLetterPath: r.CoverLetterURL}
}

// FullName returns the Latin-script name.
func (r *ApplicationRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// FullNameAr returns the Arabic-script name.
func (r *ApplicationRecord) FullNameAr() string {
	return strings.TrimSpace(r.FirstNameAr + " " + r.LastNameAr)
}

// NormalizeEmail is the canonical form used for the uniqueness key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ISOLayout matches JavaScript's Date.prototype.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// ISOTime serializes as a UTC millisecond ISO-8601 timestamp.
type ISOTime struct {
	time.Time
}

// NewISOTime wraps t in UTC.
func NewISOTime(t time.Time) ISOTime {
	return ISOTime{Time: t.UTC()}
}

func (t ISOTime) String() string {
	return t.UTC().Format(ISOLayout)
}

func (t ISOTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *ISOTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseDate accepts RFC 3339 timestamps (with or without fractional seconds)
// and plain calendar dates, which are taken as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
