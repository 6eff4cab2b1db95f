package result

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/score"
)

// Statuses
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusSent      = "sent"
)

var Statuses = []string{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusSent}

const (
	minTraitRating = 1
	maxTraitRating = 5
)

type (
	Result struct {
		ID         string `json:"id" bson:"_id"`
		SchoolID   string `json:"school_id" bson:"schoolId"`
		StudentID  string `json:"student_id" bson:"studentId"`
		ClassID    string `json:"class_id" bson:"classId"`
		TeacherID  string `json:"teacher_id" bson:"teacherId"`
		TemplateID string `json:"template_id" bson:"templateId"` // empty when computed with the default columns
		Term       string `json:"term" bson:"term"`
		Session    string `json:"session" bson:"session"`

		Student         Student            `json:"student" bson:"student"`
		Subjects        []Subject          `json:"subjects" bson:"subjects"`
		AffectiveTraits map[string]int     `json:"affective_traits" bson:"affectiveTraits"` // {traitID: 1..5}
		Fees            map[string]float64 `json:"fees" bson:"fees"`                        // {feeTypeID: amount}
		Attendance      Attendance         `json:"attendance" bson:"attendance"`
		Comments        Comments           `json:"comments" bson:"comments"`

		Total    float64 `json:"total" bson:"total"`
		Average  float64 `json:"average" bson:"average"`
		Position int     `json:"position,omitempty" bson:"position"`

		Status          string     `json:"status" bson:"status"`
		SubmittedAt     *time.Time `json:"submitted_at,omitempty" bson:"submittedAt,omitempty"`
		ReviewedAt      *time.Time `json:"reviewed_at,omitempty" bson:"reviewedAt,omitempty"`
		ReviewedBy      string     `json:"reviewed_by,omitempty" bson:"reviewedBy,omitempty"`
		RejectionReason string     `json:"rejection_reason,omitempty" bson:"rejectionReason,omitempty"`
		SentToParentAt  *time.Time `json:"sent_to_parent_at,omitempty" bson:"sentToParentAt,omitempty"`
		History         []Entry    `json:"history" bson:"history"`

		CreatedAt time.Time `json:"created_at" bson:"createdAt"` // UTC
		UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"` // UTC
	}

	// Student is a snapshot of the student details printed on the result sheet.
	Student struct {
		Name            string `json:"name" bson:"name" validate:"notblank"`
		AdmissionNumber string `json:"admission_number" bson:"admissionNumber"`
		ClassName       string `json:"class_name" bson:"className"`
		ParentName      string `json:"parent_name" bson:"parentName"`
		ParentEmail     string `json:"parent_email" bson:"parentEmail" validate:"omitempty,email"`
	}

	Subject struct {
		Name   string             `json:"name" bson:"name"`
		Scores map[string]float64 `json:"scores" bson:"scores"` // {columnID: value}
		Total  float64            `json:"total" bson:"total"`
		Grade  string             `json:"grade" bson:"grade"`
	}

	Attendance struct {
		Opened  int `json:"opened" bson:"opened" validate:"gte=0"`
		Present int `json:"present" bson:"present" validate:"gte=0"`
		Absent  int `json:"absent" bson:"absent" validate:"gte=0"`
	}

	Comments struct {
		Teacher   string `json:"teacher" bson:"teacher"`
		Principal string `json:"principal" bson:"principal"`
	}

	// Entry is an audit record of a status change.
	Entry struct {
		From  string    `json:"from" bson:"from"`
		To    string    `json:"to" bson:"to"`
		Event string    `json:"event" bson:"event"`
		By    string    `json:"by" bson:"by"`
		At    time.Time `json:"at" bson:"at"`
		Note  string    `json:"note,omitempty" bson:"note,omitempty"`
	}
)

// Saved is a stored result along with the score adjustments made while computing it.
type Saved struct {
	Result
	Adjustments []score.Adjustment `json:"adjustments,omitempty"`
}

// SubjectInput holds the raw scores entered for a subject.
type SubjectInput struct {
	Name   string             `json:"name"`
	Scores map[string]float64 `json:"scores"`
}

// NewResult contains information needed to create a new Result.
type NewResult struct {
	StudentID       string             `json:"student_id" validate:"notblank"`
	ClassID         string             `json:"class_id" validate:"notblank"`
	Term            string             `json:"term" validate:"required,term"`
	Session         string             `json:"session" validate:"required,session"`
	Student         Student            `json:"student"`
	Subjects        []SubjectInput     `json:"subjects"`
	AffectiveTraits map[string]int     `json:"affective_traits"`
	Fees            map[string]float64 `json:"fees"`
	Attendance      Attendance         `json:"attendance"`
	Comments        Comments           `json:"comments"`
}

func (nr *NewResult) Validate(validate *validator.Validate) error {
	nr.StudentID = core.CleanString(nr.StudentID)
	nr.ClassID = core.CleanString(nr.ClassID)
	nr.Term = core.CleanString(nr.Term)
	nr.Session = core.CleanString(nr.Session)
	nr.Student.clean()
	return validate.Struct(nr)
}

// content returns the authored part of nr as an update of an empty result.
func (nr NewResult) content() UpdateResult {
	student := nr.Student
	att := nr.Attendance
	comments := nr.Comments
	subjects := nr.Subjects
	if subjects == nil {
		subjects = []SubjectInput{}
	}
	return UpdateResult{
		Student:         &student,
		Subjects:        subjects,
		AffectiveTraits: nr.AffectiveTraits,
		Fees:            nr.Fees,
		Attendance:      &att,
		Comments:        &comments,
	}
}

// UpdateResult defines what information may be provided to modify an existing Result.
// Nil fields are left unchanged. It is also used for the edits of a review.
type UpdateResult struct {
	Student         *Student           `json:"student"`
	Subjects        []SubjectInput     `json:"subjects"`
	AffectiveTraits map[string]int     `json:"affective_traits"`
	Fees            map[string]float64 `json:"fees"`
	Attendance      *Attendance        `json:"attendance"`
	Comments        *Comments          `json:"comments"`
}

func (ur *UpdateResult) Validate(validate *validator.Validate) error {
	if ur.Student != nil {
		ur.Student.clean()
	}
	return validate.Struct(ur)
}

// IsEmpty reports whether ur changes nothing.
func (ur UpdateResult) IsEmpty() bool {
	return ur.Student == nil && ur.Subjects == nil && ur.AffectiveTraits == nil &&
		ur.Fees == nil && ur.Attendance == nil && ur.Comments == nil
}

func (s *Student) clean() {
	s.Name = core.CleanString(s.Name)
	s.AdmissionNumber = core.CleanString(s.AdmissionNumber)
	s.ClassName = core.CleanString(s.ClassName)
	s.ParentName = core.CleanString(s.ParentName)
	s.ParentEmail = core.CleanString(s.ParentEmail, true /* lower */)
}

// Review actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Review is an admin decision on a submitted result.
type Review struct {
	Action string        `json:"action" validate:"required,oneof=approve reject"`
	Reason string        `json:"reason" validate:"required_if=Action reject"`
	Edits  *UpdateResult `json:"edits"`
}

func (rv *Review) Validate(validate *validator.Validate) error {
	rv.Action = core.CleanString(rv.Action, true /* lower */)
	rv.Reason = core.CleanString(rv.Reason)
	if err := validate.Struct(rv); err != nil {
		return err
	}
	if rv.Edits != nil {
		return rv.Edits.Validate(validate)
	}
	return nil
}

// RankRequest identifies the class results to rank.
type RankRequest struct {
	ClassID string `json:"class_id" validate:"notblank"`
	Term    string `json:"term" validate:"required,term"`
	Session string `json:"session" validate:"required,session"`
}

func (rr *RankRequest) Validate(validate *validator.Validate) error {
	rr.ClassID = core.CleanString(rr.ClassID)
	rr.Term = core.CleanString(rr.Term)
	rr.Session = core.CleanString(rr.Session)
	return validate.Struct(rr)
}

// Batch item statuses
const (
	BatchSent   = "sent"
	BatchFailed = "failed"
)

type (
	BatchItem struct {
		ResultID string `json:"result_id"`
		Status   string `json:"status"`
		Reason   string `json:"reason,omitempty"`
	}

	// BatchReport lists the outcome of every item of a batch, in input order.
	BatchReport struct {
		Items     []BatchItem `json:"items"`
		Succeeded int         `json:"succeeded"`
		Failed    int         `json:"failed"`
	}
)

type GetFilter struct {
	ID        string
	SchoolID  string
	TeacherID string // empty for any teacher
}

type QueryFilter struct {
	SchoolID  string
	TeacherID string
	ClassID   string   `query:"class_id"`
	StudentID string   `query:"student_id"`
	Term      string   `query:"term"`
	Session   string   `query:"session"`
	Statuses  []string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Term = core.CleanString(qf.Term)
	qf.Session = core.CleanString(qf.Session)
	for i := range qf.Statuses {
		qf.Statuses[i] = core.CleanString(qf.Statuses[i], true /* lower */)
	}
}
