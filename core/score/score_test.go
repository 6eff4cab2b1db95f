package score

import (
	"reflect"
	"testing"

	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{total: 100, want: "A"},
		{total: 70, want: "A"},
		{total: 69.99, want: "B"},
		{total: 69, want: "B"},
		{total: 60, want: "B"},
		{total: 59, want: "C"},
		{total: 50, want: "C"},
		{total: 49, want: "D"},
		{total: 40, want: "D"},
		{total: 39, want: "F"},
		{total: 0, want: "F"},
	}
	for _, tt := range tests {
		if got := Grade(tt.total); got != tt.want {
			t.Errorf("Grade(%v) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name          string
		v, min, max   float64
		want          float64
	}{
		{name: "below", v: -5, min: 0, max: 20, want: 0},
		{name: "above", v: 25, min: 0, max: 20, want: 20},
		{name: "within", v: 12.5, min: 0, max: 20, want: 12.5},
		{name: "edge", v: 20, min: 0, max: 20, want: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.min, tt.max); got != tt.want {
				t.Errorf("Clamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotal_skipsCalculatedColumns(t *testing.T) {
	cols := template.DefaultColumns()
	scores := map[string]float64{"ca1": 15, "ca2": 10, "exam": 50, "total": 75}

	if got := Total(scores, cols); got != 75 {
		t.Errorf("Total() = %v, want 75", got)
	}
}

func TestCompute(t *testing.T) {
	cols := template.DefaultColumns()

	tests := []struct {
		name      string
		scores    map[string]float64
		wantScore map[string]float64
		wantTotal float64
		wantGrade string
		wantAdjs  []Adjustment
	}{
		{
			name:      "in range",
			scores:    map[string]float64{"ca1": 18, "ca2": 17, "exam": 45},
			wantScore: map[string]float64{"ca1": 18, "ca2": 17, "exam": 45},
			wantTotal: 80,
			wantGrade: "A",
		},
		{
			name:      "clamped",
			scores:    map[string]float64{"ca1": -5, "ca2": 25, "exam": 30},
			wantScore: map[string]float64{"ca1": 0, "ca2": 20, "exam": 30},
			wantTotal: 50,
			wantGrade: "C",
			wantAdjs: []Adjustment{
				{Subject: "Maths", ColumnID: "ca1", Entered: -5, Accepted: 0, Reason: ReasonClamped},
				{Subject: "Maths", ColumnID: "ca2", Entered: 25, Accepted: 20, Reason: ReasonClamped},
			},
		},
		{
			name:      "calculated and unknown columns ignored",
			scores:    map[string]float64{"ca1": 10, "total": 99, "grade": 1, "bonus": 5},
			wantScore: map[string]float64{"ca1": 10},
			wantTotal: 10,
			wantGrade: "F",
			wantAdjs: []Adjustment{
				{Subject: "Maths", ColumnID: "bonus", Entered: 5, Reason: ReasonIgnored},
				{Subject: "Maths", ColumnID: "grade", Entered: 1, Reason: ReasonIgnored},
				{Subject: "Maths", ColumnID: "total", Entered: 99, Reason: ReasonIgnored},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute("Maths", tt.scores, cols)
			if !reflect.DeepEqual(got.Scores, tt.wantScore) {
				t.Errorf("Compute().Scores = %v, want %v", got.Scores, tt.wantScore)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("Compute().Total = %v, want %v", got.Total, tt.wantTotal)
			}
			if got.Grade != tt.wantGrade {
				t.Errorf("Compute().Grade = %v, want %v", got.Grade, tt.wantGrade)
			}
			if !reflect.DeepEqual(got.Adjustments, tt.wantAdjs) {
				t.Errorf("Compute().Adjustments = %+v, want %+v", got.Adjustments, tt.wantAdjs)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]float64{80, 65, 40})
	want := Summary{Total: 185, Average: 61.67, SubjectCount: 3}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}
}

func TestRank(t *testing.T) {
	got := Rank([]Ranked{
		{ID: "a", Average: 55},
		{ID: "b", Average: 80},
		{ID: "c", Average: 70},
		{ID: "d", Average: 70},
		{ID: "e", Average: 10},
	})
	want := map[string]int{"b": 1, "c": 2, "d": 2, "a": 4, "e": 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}
}

func TestOrdinal(t *testing.T) {
	for n, want := range map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 102: "102nd"} {
		if got := Ordinal(n); got != want {
			t.Errorf("Ordinal(%d) = %v, want %v", n, got, want)
		}
	}
}
