// internal/workers/application/validate-application-data/rules.go
package validateapplicationdata

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"application-intake/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validate checks a candidate bundle and returns the field -> message map, or
// nil when every rule passes. It performs no I/O.
func Validate(bundle models.CandidateBundle, minMotivation int) FieldErrors {
	b := Sanitize(bundle)
	motivationMsg := fmt.Sprintf(msgMotivationTooShortTmpl, minMotivation, minMotivation)

	err := validation.ValidateStruct(&b,
		validation.Field(&b.FirstName, validation.Required.Error(msgFirstNameRequired)),
		validation.Field(&b.FirstNameAr, validation.Required.Error(msgFirstNameArRequired)),
		validation.Field(&b.LastName, validation.Required.Error(msgLastNameRequired)),
		validation.Field(&b.LastNameAr, validation.Required.Error(msgLastNameArRequired)),
		validation.Field(&b.Email,
			validation.Required.Error(msgEmailInvalid),
			is.EmailFormat.Error(msgEmailInvalid)),
		validation.Field(&b.Phone,
			validation.Required.Error(msgPhoneInvalid),
			validation.Match(phoneRegex).Error(msgPhoneInvalid)),
		validation.Field(&b.LinkedIn,
			validation.Required.Error(msgLinkedInInvalid),
			is.RequestURL.Error(msgLinkedInInvalid),
			validation.By(absoluteURL(msgLinkedInInvalid))),
		validation.Field(&b.PortfolioURL,
			is.RequestURL.Error(msgPortfolioInvalid),
			validation.By(absoluteURL(msgPortfolioInvalid))),
		validation.Field(&b.ExpectedSalary, validation.By(positiveAmount(msgExpectedSalaryInvalid))),
		validation.Field(&b.CurrentSalary, validation.By(positiveAmount(msgCurrentSalaryInvalid))),
		validation.Field(&b.NoticePeriod, validation.Required.Error(msgNoticePeriodRequired)),
		validation.Field(&b.YearsOfExperience, validation.Required.Error(msgExperienceRequired)),
		validation.Field(&b.CurrentCompany, validation.Required.Error(msgCompanyRequired)),
		validation.Field(&b.CurrentPosition, validation.Required.Error(msgPositionRequired)),
		validation.Field(&b.PositionAppliedFor, validation.Required.Error(msgAppliedForRequired)),
		validation.Field(&b.EducationLevel,
			validation.Required.Error(msgEducationRequired),
			validation.In(educationLevels()...).Error(msgEducationInvalid)),
		validation.Field(&b.GraduationYear, validation.Match(graduationYearRegex).Error(msgGraduationYearInvalid)),
		validation.Field(&b.SpecialMotivation,
			validation.Required.Error(motivationMsg),
			validation.RuneLength(minMotivation, 0).Error(motivationMsg)),
	)
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		// only reachable through a programming error in the rule set
		return FieldErrors{"form": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for field, ferr := range verrs {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}
	return out
}

// Sanitize trims surrounding whitespace from every field.
func Sanitize(b models.CandidateBundle) models.CandidateBundle {
	fields := []*string{
		&b.FirstName, &b.FirstNameAr, &b.LastName, &b.LastNameAr,
		&b.Email, &b.Phone, &b.LinkedIn, &b.PortfolioURL,
		&b.ExpectedSalary, &b.CurrentSalary, &b.NoticePeriod, &b.YearsOfExperience,
		&b.CurrentCompany, &b.CurrentPosition, &b.PositionAppliedFor,
		&b.EducationLevel, &b.University, &b.Major, &b.GraduationYear,
		&b.SpecialMotivation,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	return b
}

// ParseAmount parses a salary string. ok is false for anything that is not a
// finite number. Digit separators are not accepted.
func ParseAmount(s string) (float64, bool) {
	if strings.Contains(s, "_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseGraduationYear returns nil for an empty value.
func ParseGraduationYear(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid graduation year %q: %w", s, err)
	}
	return &year, nil
}

func positiveAmount(message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if v, ok := ParseAmount(s); !ok || v <= 0 {
			return errors.New(message)
		}
		return nil
	}
}

// absoluteURL requires a scheme and a host. Empty values are left to Required.
func absoluteURL(message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New(message)
		}
		return nil
	}
}

func educationLevels() []interface{} {
	out := make([]interface{}, len(models.EducationLevels))
	for i, level := range models.EducationLevels {
		out[i] = level
	}
	return out
}

// List flattens the map into ValidationErrors ordered by field name. Empty
// values are reported as MISSING_REQUIRED, everything else as INVALID_FORMAT
// or INVALID_VALUE for the numeric fields.
func (fe FieldErrors) List(b models.CandidateBundle) []ValidationError {
	values := fieldValues(Sanitize(b))

	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]ValidationError, 0, len(fields))
	for _, field := range fields {
		code := CodeInvalidFormat
		switch {
		case values[field] == "":
			code = CodeMissingRequired
		case field == "expectedSalary" || field == "currentSalary" || field == "educationLevel":
			code = CodeInvalidValue
		}
		out = append(out, ValidationError{Field: field, Code: code, Message: fe[field]})
	}
	return out
}

func fieldValues(b models.CandidateBundle) map[string]string {
	return map[string]string{
		"firstName":          b.FirstName,
		"firstNameAr":        b.FirstNameAr,
		"lastName":           b.LastName,
		"lastNameAr":         b.LastNameAr,
		"email":              b.Email,
		"phone":              b.Phone,
		"linkedin":           b.LinkedIn,
		"portfolioUrl":       b.PortfolioURL,
		"expectedSalary":     b.ExpectedSalary,
		"currentSalary":      b.CurrentSalary,
		"noticePeriod":       b.NoticePeriod,
		"yearsOfExperience":  b.YearsOfExperience,
		"currentCompany":     b.CurrentCompany,
		"currentPosition":    b.CurrentPosition,
		"positionAppliedFor": b.PositionAppliedFor,
		"educationLevel":     b.EducationLevel,
		"university":         b.University,
		"major":              b.Major,
		"graduationYear":     b.GraduationYear,
		"specialMotivation":  b.SpecialMotivation,
	}
}
