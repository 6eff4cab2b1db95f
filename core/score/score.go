// Package score turns raw subject scores into totals, grades and class positions.
// It is the only place grading rules live.
package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

// Grade boundaries, evaluated top-down: first match wins.
var gradeBoundaries = []struct {
	min   float64
	grade string
}{
	{70, "A"},
	{60, "B"},
	{50, "C"},
	{40, "D"},
}

const lowestGrade = "F"

// Grade returns the letter grade of a subject total.
func Grade(total float64) string {
	for _, b := range gradeBoundaries {
		if total >= b.min {
			return b.grade
		}
	}
	return lowestGrade
}

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Adjustment reports a score that was not accepted as entered.
type Adjustment struct {
	Subject  string  `json:"subject"`
	ColumnID string  `json:"column_id"`
	Entered  float64 `json:"entered"`
	Accepted float64 `json:"accepted"`
	Reason   string  `json:"reason"`
}

const (
	ReasonClamped  = "clamped"
	ReasonIgnored  = "ignored"
	ReasonNotValid = "not a number"
)

// Total sums the values of the editable columns only, so that a stored
// calculated column (e.g. "Total") is never counted twice.
func Total(scores map[string]float64, columns []template.Column) float64 {
	var total float64
	for _, col := range columns {
		if !col.Editable || col.Calculated {
			continue
		}
		total += scores[col.ID]
	}
	return round2(total)
}

// Computed is the outcome of scoring one subject.
type Computed struct {
	Scores      map[string]float64
	Total       float64
	Grade       string
	Adjustments []Adjustment
}

// Compute keeps the editable column values of a subject, clamped to [0, maxScore],
// drops values entered for calculated or unknown columns, then totals and grades.
func Compute(subject string, scores map[string]float64, columns []template.Column) Computed {
	c := Computed{Scores: make(map[string]float64, len(scores))}

	editable := make(map[string]template.Column, len(columns))
	for _, col := range columns {
		if col.Editable && !col.Calculated {
			editable[col.ID] = col
		}
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids) // stable adjustments order

	for _, id := range ids {
		v := scores[id]
		col, ok := editable[id]
		if !ok {
			c.Adjustments = append(c.Adjustments, Adjustment{Subject: subject, ColumnID: id, Entered: v, Reason: ReasonIgnored})
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.Adjustments = append(c.Adjustments, Adjustment{Subject: subject, ColumnID: id, Entered: v, Reason: ReasonNotValid})
			continue
		}
		accepted := Clamp(v, 0, col.MaxScore)
		if accepted != v {
			c.Adjustments = append(c.Adjustments, Adjustment{
				Subject:  subject,
				ColumnID: id,
				Entered:  v,
				Accepted: accepted,
				Reason:   ReasonClamped,
			})
		}
		c.Scores[id] = accepted
	}

	c.Total = Total(c.Scores, columns)
	c.Grade = Grade(c.Total)
	return c
}

// Summary is the overall score of a result across its subjects.
type Summary struct {
	Total        float64 `json:"total" bson:"total"`
	Average      float64 `json:"average" bson:"average"`
	SubjectCount int     `json:"subject_count" bson:"subjectCount"`
}

// Summarize totals subject totals and averages them over the number of subjects.
func Summarize(totals []float64) Summary {
	s := Summary{SubjectCount: len(totals)}
	for _, t := range totals {
		s.Total += t
	}
	s.Total = round2(s.Total)
	if s.SubjectCount > 0 {
		s.Average = round2(s.Total / float64(s.SubjectCount))
	}
	return s
}

// Ranked is an entry to rank by average.
type Ranked struct {
	ID      string
	Average float64
}

// Rank assigns competition positions ("1, 2, 2, 4") by descending average.
// Ties keep the input order.
func Rank(entries []Ranked) map[string]int {
	sorted := append([]Ranked(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Average > sorted[j].Average })

	positions := make(map[string]int, len(sorted))
	for i, e := range sorted {
		if i > 0 && e.Average == sorted[i-1].Average {
			positions[e.ID] = positions[sorted[i-1].ID]
			continue
		}
		positions[e.ID] = i + 1
	}
	return positions
}

// Ordinal formats a position for display, e.g. 1st, 2nd, 11th.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
