// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import "application-intake/internal/models"

type Input struct {
	Record models.ApplicationRecord `json:"record"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	CreatedAt     string `json:"createdAt"`
}

// columns is the insert and select order of job_applications.
var columns = []string{
	"id", "created_at",
	"first_name", "first_name_ar", "last_name", "last_name_ar",
	"email", "phone", "linkedin", "portfolio_url",
	"expected_salary", "current_salary", "notice_period", "years_of_experience",
	"current_company", "current_position", "position_applied_for",
	"education_level", "university", "major", "graduation_year",
	"special_motivation", "availability_date", "resume_url", "cover_letter_url",
}
