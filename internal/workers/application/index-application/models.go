// internal/workers/application/index-application/models.go
package indexapplication

import "application-intake/internal/models"

// Document is the searchable projection of an application. Salaries, phone
// and motivation stay in Postgres.
type Document struct {
	ID                 string         `json:"id"`
	CreatedAt          models.ISOTime `json:"created_at"`
	FirstName          string         `json:"first_name"`
	FirstNameAr        string         `json:"first_name_ar"`
	LastName           string         `json:"last_name"`
	LastNameAr         string         `json:"last_name_ar"`
	Email              string         `json:"email"`
	PositionAppliedFor string         `json:"position_applied_for"`
	CurrentPosition    string         `json:"current_position"`
	CurrentCompany     string         `json:"current_company"`
	YearsOfExperience  string         `json:"years_of_experience"`
	EducationLevel     string         `json:"education_level"`
	University         string         `json:"university,omitempty"`
	Major              string         `json:"major,omitempty"`
	AvailabilityDate   models.ISOTime `json:"availability_date"`
}

// NewDocument projects a committed record.
func NewDocument(r *models.ApplicationRecord) Document {
	return Document{
		ID:                 r.ID,
		CreatedAt:          r.CreatedAt,
		FirstName:          r.FirstName,
		FirstNameAr:        r.FirstNameAr,
		LastName:           r.LastName,
		LastNameAr:         r.LastNameAr,
		Email:              r.Email,
		PositionAppliedFor: r.PositionAppliedFor,
		CurrentPosition:    r.CurrentPosition,
		CurrentCompany:     r.CurrentCompany,
		YearsOfExperience:  r.YearsOfExperience,
		EducationLevel:     r.EducationLevel,
		University:         r.University,
		Major:              r.Major,
		AvailabilityDate:   r.AvailabilityDate,
	}
}
