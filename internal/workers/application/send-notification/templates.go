// internal/workers/application/send-notification/templates.go
package sendnotification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"strings"
	"text/template"

	"application-intake/internal/models"
)

const (
	naEN = "N/A"
	naAR = "غير متوفر"
)

var templateFuncs = template.FuncMap{
	"orNA": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return naEN
		}
		return s
	},
	"orNAar": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return naAR
		}
		return s
	},
	"amount": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"year": func(y *int) string {
		if y == nil {
			return ""
		}
		return strconv.Itoa(*y)
	},
	"date": func(t models.ISOTime) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02")
	},
}

var hrBodyTemplate = template.Must(template.New("hr").Funcs(templateFuncs).Parse(`English Version:
-----------------
New Job Application Received

We have received a new job application from {{.FirstName}} {{.LastName}} for the {{.PositionAppliedFor}} position.

Contact Information:
- Email: {{.Email}}
- Phone: {{.Phone}}
- LinkedIn: {{.LinkedIn}}
{{- if .PortfolioURL}}
- Portfolio: {{.PortfolioURL}}
{{- end}}

Professional Information:
- Position Applied For: {{.PositionAppliedFor}}
- Current Position: {{.CurrentPosition}}
- Current Company: {{.CurrentCompany}}
- Years of Experience: {{.YearsOfExperience}}
- Notice Period: {{.NoticePeriod}}
- Expected Salary: {{amount .ExpectedSalary}} SAR
- Current Salary: {{amount .CurrentSalary}} SAR

Education:
- Level: {{.EducationLevel}}
- University: {{orNA .University}}
- Major: {{orNA .Major}}
- Graduation Year: {{orNA (year .GraduationYear)}}

Special Motivation:
{{.SpecialMotivation}}

Availability Date: {{date .AvailabilityDate}}

النسخة العربية:
-----------------
تم استلام طلب توظيف جديد

لقد تلقينا طلب توظيف جديد من {{.FirstNameAr}} {{.LastNameAr}} لوظيفة {{.PositionAppliedFor}}

معلومات الاتصال:
- البريد الإلكتروني: {{.Email}}
- الهاتف: {{.Phone}}
- لينكد إن: {{.LinkedIn}}
{{- if .PortfolioURL}}
- الموقع الشخصي: {{.PortfolioURL}}
{{- end}}

المعلومات المهنية:
- الوظيفة المتقدم لها: {{.PositionAppliedFor}}
- المنصب الحالي: {{.CurrentPosition}}
- الشركة الحالية: {{.CurrentCompany}}
- سنوات الخبرة: {{.YearsOfExperience}}
- فترة الإشعار: {{.NoticePeriod}}
- الراتب المتوقع: {{amount .ExpectedSalary}} ريال سعودي
- الراتب الحالي: {{amount .CurrentSalary}} ريال سعودي

التعليم:
- المستوى: {{.EducationLevel}}
- الجامعة: {{orNAar .University}}
- التخصص: {{orNAar .Major}}
- سنة التخرج: {{orNAar (year .GraduationYear)}}

الدافع الخاص:
{{.SpecialMotivation}}

تاريخ الإتاحة: {{date .AvailabilityDate}}
`))

type candidateView struct {
	Record        *models.ApplicationRecord
	CompanyNameEN string
	CompanyNameAR string
	LogoURL       string
}

var candidateBodyTemplate = htmltemplate.Must(htmltemplate.New("candidate").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; margin: 0; padding: 0; }
    .email-container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .divider { border-top: 1px solid #ccc; margin: 20px 0; }
    [dir="rtl"] { direction: rtl; text-align: right; }
    [dir="ltr"] { direction: ltr; text-align: left; }
    .signature { margin-top: 20px; padding: 20px 0; }
    .signature-logo img { height: 40px; width: auto; margin-top: 10px; }
  </style>
</head>
<body>
  <div class="email-container">
    <div dir="ltr">
      <p>Dear {{.Record.FirstName}} {{.Record.LastName}},</p>
      <p>Thank you for submitting your application for the {{.Record.PositionAppliedFor}} position at {{.CompanyNameEN}}. We appreciate your interest in joining our team.</p>
      <p>Our hiring team will carefully review your application and will contact you if your qualifications match our requirements.</p>
      <p>Please note that due to the high volume of applications we receive, we may not be able to respond to every application individually.</p>
      <div class="signature">
        <div class="signature-text">Best regards,<br>{{.CompanyNameEN}} HR Team</div>
        {{- if .LogoURL}}
        <div class="signature-logo"><img src="{{.LogoURL}}" alt="{{.CompanyNameEN}} Logo"></div>
        {{- end}}
      </div>
    </div>

    <div class="divider"></div>

    <div dir="rtl">
      <p>عزيزي/عزيزتي {{.Record.FirstNameAr}} {{.Record.LastNameAr}}،</p>
      <p>نشكرك على تقديم طلبك لوظيفة {{.Record.PositionAppliedFor}} في {{.CompanyNameAR}}. نقدر اهتمامك بالانضمام إلى فريقنا.</p>
      <p>سيقوم فريق التوظيف لدينا بمراجعة طلبك بعناية وسيتواصل معك إذا كانت مؤهلاتك تتناسب مع متطلباتنا.</p>
      <p>يرجى ملاحظة أنه نظراً للعدد الكبير من الطلبات التي نتلقاها، قد لا نتمكن من الرد على كل طلب بشكل فردي.</p>
      <div class="signature">
        <div class="signature-text">مع أطيب التحيات،<br>فريق الموارد البشرية - {{.CompanyNameAR}}</div>
        {{- if .LogoURL}}
        <div class="signature-logo"><img src="{{.LogoURL}}" alt="{{.CompanyNameEN}} Logo"></div>
        {{- end}}
      </div>
    </div>
  </div>
</body>
</html>
`))

// HRSubject is the subject line of the HR notification.
func HRSubject(r *models.ApplicationRecord) string {
	return fmt.Sprintf("New Job Application from %s %s", r.FirstName, r.LastName)
}

// CandidateSubject is the subject line of the candidate confirmation.
func CandidateSubject(r *models.ApplicationRecord) string {
	return fmt.Sprintf("Application Received - %s / تم استلام طلبك - %s", r.PositionAppliedFor, r.PositionAppliedFor)
}

// RenderHRBody renders the plain-text English then Arabic body.
func RenderHRBody(r *models.ApplicationRecord) (string, error) {
	var buf bytes.Buffer
	if err := hrBodyTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("render hr body: %w", err)
	}
	return buf.String(), nil
}

// RenderCandidateBody renders the bilingual HTML confirmation.
func (c *Config) RenderCandidateBody(r *models.ApplicationRecord) (string, error) {
	var buf bytes.Buffer
	err := candidateBodyTemplate.Execute(&buf, candidateView{
		Record:        r,
		CompanyNameEN: c.CompanyNameEN,
		CompanyNameAR: c.CompanyNameAR,
		LogoURL:       c.LogoURL,
	})
	if err != nil {
		return "", fmt.Errorf("render candidate body: %w", err)
	}
	return buf.String(), nil
}
