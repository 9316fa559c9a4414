// internal/workers/application/send-notification/pdf.go
package sendnotification

import (
	"bytes"
	"fmt"
	"strconv"

	"application-intake/internal/models"

	"github.com/go-pdf/fpdf"
)

type summaryRow struct {
	label string
	value string
}

// RenderSummaryPDF lays out the record on one A4 page. The core PDF fonts
// cover Latin-1 only, so Arabic fields are left out of the summary and remain
// in the email body.
func RenderSummaryPDF(r *models.ApplicationRecord) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Application Summary", true)
	pdf.SetCreationDate(r.CreatedAt.Time)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Application Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Application %s, received %s", r.ID, r.CreatedAt.String())), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	graduation := naEN
	if r.GraduationYear != nil {
		graduation = strconv.Itoa(*r.GraduationYear)
	}

	sections := []struct {
		title string
		rows  []summaryRow
	}{
		{"Personal Information", []summaryRow{
			{"Name", r.FullName()},
			{"Email", r.Email},
			{"Phone", r.Phone},
			{"LinkedIn", r.LinkedIn},
			{"Portfolio", orDefault(r.PortfolioURL, naEN)},
		}},
		{"Professional Information", []summaryRow{
			{"Position Applied For", r.PositionAppliedFor},
			{"Current Position", r.CurrentPosition},
			{"Current Company", r.CurrentCompany},
			{"Years of Experience", r.YearsOfExperience},
			{"Notice Period", r.NoticePeriod},
			{"Expected Salary", strconv.FormatFloat(r.ExpectedSalary, 'f', -1, 64) + " SAR"},
			{"Current Salary", strconv.FormatFloat(r.CurrentSalary, 'f', -1, 64) + " SAR"},
			{"Availability Date", r.AvailabilityDate.UTC().Format("2006-01-02")},
		}},
		{"Education", []summaryRow{
			{"Level", r.EducationLevel},
			{"University", orDefault(r.University, naEN)},
			{"Major", orDefault(r.Major, naEN)},
			{"Graduation Year", graduation},
		}},
	}

	for _, section := range sections {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, section.title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range section.rows {
			pdf.CellFormat(55, 6, row.label+":", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 6, tr(row.value), "", "L", false)
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Special Motivation", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(r.SpecialMotivation), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render summary pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
