package template

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

// Terms
const (
	TermFirst  = "First Term"
	TermSecond = "Second Term"
	TermThird  = "Third Term"
)

var Terms = []string{TermFirst, TermSecond, TermThird}

// ValidTerm reports whether term is one of Terms.
func ValidTerm(term string) bool {
	for _, t := range Terms {
		if t == term {
			return true
		}
	}
	return false
}

type (
	Template struct {
		ID         string     `json:"id" bson:"_id"`
		SchoolID   string     `json:"school_id" bson:"schoolId"`
		Name       string     `json:"name" bson:"name"`
		Term       string     `json:"term" bson:"term"`
		Session    string     `json:"session" bson:"session"`
		Components Components `json:"components" bson:"components"`
		IsActive   bool       `json:"is_active" bson:"isActive"`
		CreatedBy  string     `json:"created_by" bson:"createdBy"`
		CreatedAt  time.Time  `json:"created_at" bson:"createdAt"` // UTC
		UpdatedAt  time.Time  `json:"updated_at" bson:"updatedAt"` // UTC
	}

	// Components lists the sections of a result sheet.
	Components struct {
		Header          Section         `json:"header" bson:"header"`
		StudentInfo     Section         `json:"student_info" bson:"studentInfo"`
		ScoresTable     ScoresTable     `json:"scores_table" bson:"scoresTable"`
		AffectiveTraits AffectiveTraits `json:"affective_traits" bson:"affectiveTraits"`
		Fees            Fees            `json:"fees" bson:"fees"`
		Attendance      Section         `json:"attendance" bson:"attendance"`
		Comments        Section         `json:"comments" bson:"comments"`
		Signatures      Section         `json:"signatures" bson:"signatures"`
	}

	Section struct {
		Enabled bool `json:"enabled" bson:"enabled"`
	}

	ScoresTable struct {
		Enabled bool     `json:"enabled" bson:"enabled"`
		Columns []Column `json:"columns" bson:"columns" validate:"dive"`
	}

	Column struct {
		ID         string  `json:"id" bson:"id"`
		Name       string  `json:"name" bson:"name" validate:"notblank"`
		MaxScore   float64 `json:"max_score" bson:"maxScore" validate:"gte=0"`
		Editable   bool    `json:"editable" bson:"editable"`
		Calculated bool    `json:"calculated" bson:"calculated"`
	}

	AffectiveTraits struct {
		Enabled bool    `json:"enabled" bson:"enabled"`
		Traits  []Trait `json:"traits" bson:"traits" validate:"dive"`
	}

	Trait struct {
		ID      string `json:"id" bson:"id"`
		Name    string `json:"name" bson:"name" validate:"notblank"`
		Enabled bool   `json:"enabled" bson:"enabled"`
	}

	Fees struct {
		Enabled  bool      `json:"enabled" bson:"enabled"`
		FeeTypes []FeeType `json:"fee_types" bson:"feeTypes" validate:"dive"`
	}

	FeeType struct {
		ID      string `json:"id" bson:"id"`
		Name    string `json:"name" bson:"name" validate:"notblank"`
		Enabled bool   `json:"enabled" bson:"enabled"`
	}
)

// DefaultColumns are used to compute results of a school without an active template.
func DefaultColumns() []Column {
	return []Column{
		{ID: "ca1", Name: "1st CA", MaxScore: 20, Editable: true},
		{ID: "ca2", Name: "2nd CA", MaxScore: 20, Editable: true},
		{ID: "exam", Name: "Exam", MaxScore: 60, Editable: true},
		{ID: "total", Name: "Total", MaxScore: 100, Calculated: true},
		{ID: "grade", Name: "Grade", Calculated: true},
	}
}

// DefaultComponents returns a template layout with every section enabled and the default columns.
func DefaultComponents() Components {
	on := Section{Enabled: true}
	return Components{
		Header:      on,
		StudentInfo: on,
		ScoresTable: ScoresTable{Enabled: true, Columns: DefaultColumns()},
		AffectiveTraits: AffectiveTraits{
			Enabled: true,
			Traits: []Trait{
				{ID: "punctuality", Name: "Punctuality", Enabled: true},
				{ID: "neatness", Name: "Neatness", Enabled: true},
				{ID: "honesty", Name: "Honesty", Enabled: true},
				{ID: "attentiveness", Name: "Attentiveness", Enabled: true},
			},
		},
		Fees:       Fees{Enabled: false},
		Attendance: on,
		Comments:   on,
		Signatures: on,
	}
}

// EnabledTraits returns the traits that can be rated on a result.
func (c Components) EnabledTraits() []Trait {
	if !c.AffectiveTraits.Enabled {
		return nil
	}
	traits := make([]Trait, 0, len(c.AffectiveTraits.Traits))
	for _, t := range c.AffectiveTraits.Traits {
		if t.Enabled {
			traits = append(traits, t)
		}
	}
	return traits
}

// EnabledFeeTypes returns the fee lines that can be filled on a result.
func (c Components) EnabledFeeTypes() []FeeType {
	if !c.Fees.Enabled {
		return nil
	}
	fees := make([]FeeType, 0, len(c.Fees.FeeTypes))
	for _, f := range c.Fees.FeeTypes {
		if f.Enabled {
			fees = append(fees, f)
		}
	}
	return fees
}

// assignIDs gives a stable generated identifier to every column, trait and fee type missing one.
func (c *Components) assignIDs() {
	for i := range c.ScoresTable.Columns {
		if c.ScoresTable.Columns[i].ID == "" {
			c.ScoresTable.Columns[i].ID = uuid.NewString()
		}
	}
	for i := range c.AffectiveTraits.Traits {
		if c.AffectiveTraits.Traits[i].ID == "" {
			c.AffectiveTraits.Traits[i].ID = uuid.NewString()
		}
	}
	for i := range c.Fees.FeeTypes {
		if c.Fees.FeeTypes[i].ID == "" {
			c.Fees.FeeTypes[i].ID = uuid.NewString()
		}
	}
}

func (c *Components) clean() {
	for i := range c.ScoresTable.Columns {
		c.ScoresTable.Columns[i].Name = core.CleanString(c.ScoresTable.Columns[i].Name)
		c.ScoresTable.Columns[i].ID = core.CleanString(c.ScoresTable.Columns[i].ID)
	}
	for i := range c.AffectiveTraits.Traits {
		c.AffectiveTraits.Traits[i].Name = core.CleanString(c.AffectiveTraits.Traits[i].Name)
		c.AffectiveTraits.Traits[i].ID = core.CleanString(c.AffectiveTraits.Traits[i].ID)
	}
	for i := range c.Fees.FeeTypes {
		c.Fees.FeeTypes[i].Name = core.CleanString(c.Fees.FeeTypes[i].Name)
		c.Fees.FeeTypes[i].ID = core.CleanString(c.Fees.FeeTypes[i].ID)
	}
}

// NewTemplate contains information needed to create a new Template.
type NewTemplate struct {
	Name       string      `json:"name"`
	Term       string      `json:"term" validate:"required,term"`
	Session    string      `json:"session" validate:"required,session"`
	Components *Components `json:"components"`
}

func (nt *NewTemplate) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Term = core.CleanString(nt.Term)
	nt.Session = core.CleanString(nt.Session)
	if nt.Components == nil {
		comps := DefaultComponents()
		nt.Components = &comps
	}
	nt.Components.clean()

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return validateComponents(*nt.Components)
}

// UpdateTemplate defines what information may be provided to modify an existing Template.
// Only provided (non-nil) sections are merged.
type UpdateTemplate struct {
	Name            *string          `json:"name"`
	IsActive        *bool            `json:"is_active"`
	Header          *Section         `json:"header"`
	StudentInfo     *Section         `json:"student_info"`
	ScoresTable     *ScoresTable     `json:"scores_table"`
	AffectiveTraits *AffectiveTraits `json:"affective_traits"`
	Fees            *Fees            `json:"fees"`
	Attendance      *Section         `json:"attendance"`
	Comments        *Section         `json:"comments"`
	Signatures      *Section         `json:"signatures"`
}

// Merge applies the provided fields on a copy of tmpl and validates the result.
func (ut UpdateTemplate) Merge(tmpl Template, validate *validator.Validate) (Template, error) {
	if ut.Name != nil {
		tmpl.Name = core.CleanString(*ut.Name)
	}
	if ut.IsActive != nil {
		tmpl.IsActive = *ut.IsActive
	}

	comps := tmpl.Components
	if ut.Header != nil {
		comps.Header = *ut.Header
	}
	if ut.StudentInfo != nil {
		comps.StudentInfo = *ut.StudentInfo
	}
	if ut.ScoresTable != nil {
		comps.ScoresTable = *ut.ScoresTable
	}
	if ut.AffectiveTraits != nil {
		comps.AffectiveTraits = *ut.AffectiveTraits
	}
	if ut.Fees != nil {
		comps.Fees = *ut.Fees
	}
	if ut.Attendance != nil {
		comps.Attendance = *ut.Attendance
	}
	if ut.Comments != nil {
		comps.Comments = *ut.Comments
	}
	if ut.Signatures != nil {
		comps.Signatures = *ut.Signatures
	}
	comps.clean()

	if err := validate.Struct(comps); err != nil {
		return Template{}, err
	}
	if err := validateComponents(comps); err != nil {
		return Template{}, err
	}
	tmpl.Components = comps
	return tmpl, nil
}

// DuplicateTemplate holds the target of a template duplication.
type DuplicateTemplate struct {
	Term    string `json:"term" validate:"required,term"`
	Session string `json:"session" validate:"required,session"`
	Name    string `json:"name"`
}

func (dt *DuplicateTemplate) Validate(validate *validator.Validate) error {
	dt.Term = core.CleanString(dt.Term)
	dt.Session = core.CleanString(dt.Session)
	dt.Name = core.CleanString(dt.Name)
	return validate.Struct(dt)
}

// DeactivateResult tells which of the two deletion phases was applied.
type DeactivateResult struct {
	Deactivated bool `json:"deactivated,omitempty"`
	Deleted     bool `json:"deleted,omitempty"`
}

type GetFilter struct {
	ID       string
	SchoolID string
}

type QueryFilter struct {
	SchoolID string
	Term     string `query:"term"`
	Session  string `query:"session"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Term = core.CleanString(qf.Term)
	qf.Session = core.CleanString(qf.Session)
}

func (t Template) defaultName() string {
	return strings.TrimSpace(t.Term + " " + t.Session)
}
