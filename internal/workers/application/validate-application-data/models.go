// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import (
	"regexp"

	"application-intake/internal/models"
)

type Input struct {
	Candidate models.CandidateBundle `json:"candidate"`
}

type Output struct {
	IsValid          bool                   `json:"isValid"`
	ValidatedData    models.CandidateBundle `json:"validatedData"`
	ValidationErrors []ValidationError      `json:"validationErrors"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldErrors maps a form field name to its bilingual message.
type FieldErrors map[string]string

const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeInvalidValue    = "INVALID_VALUE"
)

var (
	phoneRegex          = regexp.MustCompile(`^\+?[0-9\s\-()]{8,}$`)
	graduationYearRegex = regexp.MustCompile(`^(19|20)\d{2}$`)
)

// Field error messages, English then Arabic.
const (
	msgFirstNameRequired      = "First name is required / الاسم الأول مطلوب"
	msgFirstNameArRequired    = "Arabic first name is required / الاسم الأول بالعربية مطلوب"
	msgLastNameRequired       = "Last name is required / اسم العائلة مطلوب"
	msgLastNameArRequired     = "Arabic last name is required / اسم العائلة بالعربية مطلوب"
	msgEmailInvalid           = "Invalid email format / تنسيق البريد الإلكتروني غير صالح"
	msgPhoneInvalid           = "Invalid phone number format / تنسيق رقم الهاتف غير صالح"
	msgLinkedInInvalid        = "Invalid LinkedIn URL / رابط LinkedIn غير صالح"
	msgPortfolioInvalid       = "Invalid portfolio URL / رابط المحفظة غير صالح"
	msgExpectedSalaryInvalid  = "Expected salary must be a positive number / يجب أن يكون الراتب المتوقع رقمًا موجبًا"
	msgCurrentSalaryInvalid   = "Current salary must be a positive number / يجب أن يكون الراتب الحالي رقمًا موجبًا"
	msgNoticePeriodRequired   = "Notice period is required / فترة الإشعار مطلوبة"
	msgExperienceRequired     = "Years of experience is required / سنوات الخبرة مطلوبة"
	msgCompanyRequired        = "Current company is required / الشركة الحالية مطلوبة"
	msgPositionRequired       = "Current position is required / المنصب الحالي مطلوب"
	msgAppliedForRequired     = "Position applied for is required / المنصب المتقدم له مطلوب"
	msgEducationRequired      = "Education level is required / المستوى التعليمي مطلوب"
	msgEducationInvalid       = "Invalid education level / المستوى التعليمي غير صالح"
	msgGraduationYearInvalid  = "Invalid graduation year / سنة التخرج غير صالحة"
	msgMotivationTooShortTmpl = "Special motivation must be at least %d characters / يجب أن يكون الدافع الخاص %d حرفًا على الأقل"
)
