package pdfsvc

import (
	"bytes"
	"context"
	"testing"

	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

func sampleResult() result.Result {
	return result.Result{
		Term:    template.TermFirst,
		Session: "2024/2025",
		Student: result.Student{Name: "Adaeze Obi", AdmissionNumber: "S1", ClassName: "JSS 1A"},
		Subjects: []result.Subject{
			{Name: "Mathematics", Scores: map[string]float64{"ca1": 18, "ca2": 15, "exam": 50}, Total: 83, Grade: "A"},
			{Name: "English", Scores: map[string]float64{"ca1": 12, "exam": 40}, Total: 52, Grade: "C"},
		},
		AffectiveTraits: map[string]int{"punctuality": 5, "neatness": 4},
		Fees:            map[string]float64{"tuition": 45000},
		Attendance:      result.Attendance{Opened: 60, Present: 58, Absent: 2},
		Comments:        result.Comments{Teacher: "A brilliant term.", Principal: "Keep it up."},
		Total:           135,
		Average:         67.5,
		Position:        2,
	}
}

func TestRender(t *testing.T) {
	sch := school.School{Name: "Greenfield Academy", Address: "12 Unity Road", Phone: "0800", Motto: "Knowledge is light"}

	withFees := template.DefaultComponents()
	withFees.Fees = template.Fees{Enabled: true, FeeTypes: []template.FeeType{{ID: "tuition", Name: "Tuition", Enabled: true}}}

	bare := template.Components{ScoresTable: template.ScoresTable{Enabled: true}}

	tests := []struct {
		name  string
		comps template.Components
	}{
		{name: "default components", comps: template.DefaultComponents()},
		{name: "with fees", comps: withFees},
		{name: "scores without columns", comps: bare},
		{name: "nothing enabled", comps: template.Components{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewRenderer().Render(context.Background(), sampleResult(), sch, tt.comps)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !bytes.HasPrefix(doc.Payload, []byte("%PDF")) {
				t.Errorf("Render() payload does not start with %%PDF")
			}
			if doc.Size != len(doc.Payload) {
				t.Errorf("Render() size = %d, want %d", doc.Size, len(doc.Payload))
			}
			if doc.ContentType != "application/pdf" {
				t.Errorf("Render() content type = %q", doc.ContentType)
			}
			if want := "adaeze-obi-first-term-2024-2025.pdf"; doc.Filename != want {
				t.Errorf("Render() filename = %q, want %q", doc.Filename, want)
			}
		})
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRenderer().Render(ctx, sampleResult(), school.School{}, template.DefaultComponents()); err == nil {
		t.Error("Render() with a cancelled context should fail")
	}
}

func TestCellValue(t *testing.T) {
	sub := result.Subject{Scores: map[string]float64{"ca1": 12.5}, Total: 72.5, Grade: "A"}
	tests := []struct {
		col  template.Column
		want string
	}{
		{col: template.Column{ID: "ca1", Editable: true}, want: "12.5"},
		{col: template.Column{ID: "ca2", Editable: true}, want: "-"},
		{col: template.Column{ID: "total", Name: "Total", Calculated: true}, want: "72.5"},
		{col: template.Column{ID: "grade", Name: "Grade", Calculated: true}, want: "A"},
	}
	for _, tt := range tests {
		if got := cellValue(sub, tt.col); got != tt.want {
			t.Errorf("cellValue(%s) = %q, want %q", tt.col.ID, got, tt.want)
		}
	}
}
