package result

import (
	"fmt"
	"strings"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/score"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

var errNoSubjects = "at least one subject with a name is required"

// compute applies ur on a copy of r and recomputes every derived field against the template components.
// Rows with a blank subject name are dropped. r is never modified.
func compute(r Result, ur UpdateResult, comps template.Components) (Result, []score.Adjustment, error) {
	var flds []core.FieldError
	addErr := func(field, msg string) {
		flds = append(flds, core.FieldError{Field: field, Error: msg})
	}

	if ur.Student != nil {
		r.Student = *ur.Student
	}
	if ur.Comments != nil {
		r.Comments = Comments{
			Teacher:   core.CleanString(ur.Comments.Teacher),
			Principal: core.CleanString(ur.Comments.Principal),
		}
	}

	if ur.Attendance != nil {
		att := *ur.Attendance
		if att.Present+att.Absent > att.Opened {
			addErr("attendance", "present and absent days cannot exceed the days school opened")
		}
		r.Attendance = att
	}

	if ur.AffectiveTraits != nil {
		enabled := make(map[string]bool)
		for _, t := range comps.EnabledTraits() {
			enabled[t.ID] = true
		}
		traits := make(map[string]int, len(ur.AffectiveTraits))
		for id, rating := range ur.AffectiveTraits {
			field := "affective_traits." + id
			switch {
			case !enabled[id]:
				addErr(field, "unknown or disabled trait")
			case rating < minTraitRating || rating > maxTraitRating:
				addErr(field, fmt.Sprintf("rating must be between %d and %d", minTraitRating, maxTraitRating))
			default:
				traits[id] = rating
			}
		}
		r.AffectiveTraits = traits
	}

	if ur.Fees != nil {
		enabled := make(map[string]bool)
		for _, f := range comps.EnabledFeeTypes() {
			enabled[f.ID] = true
		}
		fees := make(map[string]float64, len(ur.Fees))
		for id, amount := range ur.Fees {
			field := "fees." + id
			switch {
			case !enabled[id]:
				addErr(field, "unknown or disabled fee type")
			case amount < 0:
				addErr(field, "amount cannot be negative")
			default:
				fees[id] = amount
			}
		}
		r.Fees = fees
	}

	inputs := ur.Subjects
	if inputs == nil {
		// recompute the stored scores, the template may have changed since
		inputs = make([]SubjectInput, 0, len(r.Subjects))
		for _, subj := range r.Subjects {
			inputs = append(inputs, SubjectInput{Name: subj.Name, Scores: subj.Scores})
		}
	}

	var adjs []score.Adjustment
	columns := comps.ScoresTable.Columns
	subjects := make([]Subject, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		name := core.CleanString(in.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			addErr(fmt.Sprintf("subjects[%d].name", i), fmt.Sprintf("duplicate subject %q", name))
			continue
		}
		seen[key] = true

		c := score.Compute(name, in.Scores, columns)
		adjs = append(adjs, c.Adjustments...)
		subjects = append(subjects, Subject{Name: name, Scores: c.Scores, Total: c.Total, Grade: c.Grade})
	}
	r.Subjects = subjects
	if len(subjects) == 0 {
		addErr("subjects", errNoSubjects)
	}

	if len(flds) > 0 {
		return Result{}, nil, core.NewValidationError(nil, flds...)
	}

	totals := make([]float64, 0, len(subjects))
	for _, subj := range subjects {
		totals = append(totals, subj.Total)
	}
	sum := score.Summarize(totals)
	r.Total = sum.Total
	r.Average = sum.Average
	return r, adjs, nil
}

// checkSubjects enforces that a result always carries at least one named subject.
func checkSubjects(r Result) error {
	for _, subj := range r.Subjects {
		if core.CleanString(subj.Name) != "" {
			return nil
		}
	}
	return core.NewValidationError(nil, core.FieldError{Field: "subjects", Error: errNoSubjects})
}
