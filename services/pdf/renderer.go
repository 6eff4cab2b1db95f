package pdfsvc

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/score"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

const (
	contentType = "application/pdf"

	pageWidth   = 190.0 // A4 minus margins, in mm
	margin      = 10.0
	lineHeight  = 7.0
	subjectCell = 60.0
)

type renderer struct{}

var _ result.Renderer = (*renderer)(nil)

// NewRenderer returns a Renderer drawing A4 result sheets.
func NewRenderer() result.Renderer {
	return &renderer{}
}

// Render draws the sections of comps that are enabled, in their sheet order.
func (rd *renderer) Render(ctx context.Context, r result.Result, sch school.School, comps template.Components) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetTitle(fmt.Sprintf("%s - %s %s", r.Student.Name, r.Term, r.Session), true)
	pdf.SetAuthor(sch.Name, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if comps.Header.Enabled {
		drawHeader(pdf, tr, sch, r)
	}
	if comps.StudentInfo.Enabled {
		drawStudentInfo(pdf, tr, r)
	}
	if comps.ScoresTable.Enabled {
		drawScores(pdf, tr, r, comps.ScoresTable.Columns)
	}
	if traits := comps.EnabledTraits(); len(traits) > 0 {
		drawTraits(pdf, tr, r, traits)
	}
	if fees := comps.EnabledFeeTypes(); len(fees) > 0 {
		drawFees(pdf, tr, r, fees)
	}
	if comps.Attendance.Enabled {
		drawAttendance(pdf, r.Attendance)
	}
	if comps.Comments.Enabled {
		drawComments(pdf, tr, r.Comments)
	}
	if comps.Signatures.Enabled {
		drawSignatures(pdf)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return core.Document{}, errors.Wrap(err, "rendering result sheet")
	}
	return core.Document{
		Payload:     buf.Bytes(),
		Size:        buf.Len(),
		Filename:    Filename(r),
		ContentType: contentType,
	}, nil
}

// Filename returns the attachment name of a result sheet, e.g. "ada-obi-first-term-2024-2025.pdf".
func Filename(r result.Result) string {
	name := strings.Join([]string{r.Student.Name, r.Term, r.Session}, " ")
	var b strings.Builder
	dash := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-") + ".pdf"
}

func drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, sch school.School, r result.Result) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(pageWidth, 9, tr(strings.ToUpper(sch.Name)), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{sch.Address, contactLine(sch), sch.Motto} {
		if line != "" {
			pdf.CellFormat(pageWidth, 5, tr(line), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(pageWidth, 7, tr(fmt.Sprintf("REPORT SHEET - %s, %s SESSION", strings.ToUpper(r.Term), r.Session)), "", 1, "C", false, 0, "")

	// separator
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	y := pdf.GetY() + 1
	pdf.Line(margin, y, margin+pageWidth, y)
	pdf.SetLineWidth(0.2)
	pdf.Ln(4)
}

func contactLine(sch school.School) string {
	parts := make([]string, 0, 2)
	if sch.Phone != "" {
		parts = append(parts, sch.Phone)
	}
	if sch.Email != "" {
		parts = append(parts, sch.Email)
	}
	return strings.Join(parts, " | ")
}

func drawStudentInfo(pdf *gofpdf.Fpdf, tr func(string) string, r result.Result) {
	pdf.SetFont("Arial", "", 10)
	rows := [][2]string{
		{"Name", r.Student.Name},
		{"Admission No", r.Student.AdmissionNumber},
		{"Class", r.Student.ClassName},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(pageWidth-35, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(pageWidth, 7, title, "", 1, "L", false, 0, "")
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, titles []string, tr func(string) string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(41, 65, 122)
	pdf.SetTextColor(255, 255, 255)
	for i, t := range titles {
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, tr(t), "1", ln, "C", true, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 9)
	pdf.SetFillColor(245, 245, 245)
}

func drawScores(pdf *gofpdf.Fpdf, tr func(string) string, r result.Result, columns []template.Column) {
	sectionTitle(pdf, "ACADEMIC PERFORMANCE")
	widths := []float64{subjectCell}
	titles := []string{"SUBJECT"}
	colWidth := (pageWidth - subjectCell) / float64(maxInt(len(columns), 1))
	for _, col := range columns {
		widths = append(widths, colWidth)
		title := col.Name
		if !col.Calculated && col.MaxScore > 0 {
			title = fmt.Sprintf("%s (%s)", col.Name, formatScore(col.MaxScore))
		}
		titles = append(titles, title)
	}
	tableHeader(pdf, widths, titles, tr)

	for i, sub := range r.Subjects {
		fill := i%2 == 0
		last := len(columns) == 0
		pdf.CellFormat(subjectCell, lineHeight, tr(sub.Name), "1", boolToLn(last), "L", fill, 0, "")
		for j, col := range columns {
			pdf.CellFormat(colWidth, lineHeight, cellValue(sub, col), "1", boolToLn(j == len(columns)-1), "C", fill, 0, "")
		}
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 9)
	summary := fmt.Sprintf("Total: %s    Average: %.2f", formatScore(r.Total), r.Average)
	if r.Position > 0 {
		summary += "    Position: " + score.Ordinal(r.Position)
	}
	pdf.CellFormat(pageWidth, 6, summary, "", 1, "R", false, 0, "")
	pdf.Ln(3)
}

// cellValue returns what a scores table cell shows for col.
// Calculated columns show the subject total, or its grade when the column is named as such.
func cellValue(sub result.Subject, col template.Column) string {
	if col.Calculated {
		if strings.EqualFold(col.ID, "grade") || strings.EqualFold(col.Name, "grade") {
			return sub.Grade
		}
		return formatScore(sub.Total)
	}
	v, ok := sub.Scores[col.ID]
	if !ok {
		return "-"
	}
	return formatScore(v)
}

func drawTraits(pdf *gofpdf.Fpdf, tr func(string) string, r result.Result, traits []template.Trait) {
	sectionTitle(pdf, "AFFECTIVE TRAITS")
	tableHeader(pdf, []float64{120, 70}, []string{"TRAIT", "RATING (1-5)"}, tr)
	for i, t := range traits {
		rating := "-"
		if v, ok := r.AffectiveTraits[t.ID]; ok {
			rating = strconv.Itoa(v)
		}
		fill := i%2 == 0
		pdf.CellFormat(120, lineHeight, tr(t.Name), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(70, lineHeight, rating, "1", 1, "C", fill, 0, "")
	}
	pdf.Ln(3)
}

func drawFees(pdf *gofpdf.Fpdf, tr func(string) string, r result.Result, fees []template.FeeType) {
	sectionTitle(pdf, "FEES")
	tableHeader(pdf, []float64{120, 70}, []string{"ITEM", "AMOUNT"}, tr)
	var total float64
	for i, f := range fees {
		amount := "-"
		if v, ok := r.Fees[f.ID]; ok {
			amount = fmt.Sprintf("%.2f", v)
			total += v
		}
		fill := i%2 == 0
		pdf.CellFormat(120, lineHeight, tr(f.Name), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(70, lineHeight, amount, "1", 1, "R", fill, 0, "")
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(120, lineHeight, "TOTAL", "1", 0, "L", false, 0, "")
	pdf.CellFormat(70, lineHeight, fmt.Sprintf("%.2f", total), "1", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func drawAttendance(pdf *gofpdf.Fpdf, att result.Attendance) {
	sectionTitle(pdf, "ATTENDANCE")
	pdf.SetFont("Arial", "", 9)
	w := pageWidth / 3
	pdf.CellFormat(w, lineHeight, "Times school opened: "+strconv.Itoa(att.Opened), "1", 0, "L", false, 0, "")
	pdf.CellFormat(w, lineHeight, "Times present: "+strconv.Itoa(att.Present), "1", 0, "L", false, 0, "")
	pdf.CellFormat(w, lineHeight, "Times absent: "+strconv.Itoa(att.Absent), "1", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func drawComments(pdf *gofpdf.Fpdf, tr func(string) string, c result.Comments) {
	sectionTitle(pdf, "COMMENTS")
	for _, row := range [][2]string{{"Class teacher", c.Teacher}, {"Principal", c.Principal}} {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(35, 6, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(pageWidth-35, 6, tr(row[1]), "", "L", false)
	}
	pdf.Ln(3)
}

func drawSignatures(pdf *gofpdf.Fpdf) {
	pdf.Ln(10)
	w := pageWidth / 2
	y := pdf.GetY()
	pdf.Line(margin+5, y, margin+w-15, y)
	pdf.Line(margin+w+15, y, margin+pageWidth-5, y)
	pdf.Ln(1)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(w, 5, "Class Teacher's Signature", "", 0, "C", false, 0, "")
	pdf.CellFormat(w, 5, "Principal's Signature", "", 1, "C", false, 0, "")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boolToLn(last bool) int {
	if last {
		return 1
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
