package result_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/score"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
	inmemdb "github.com/GausMx/Scoolynk-app-sub000/storage/database/inmem"
	testutil "github.com/GausMx/Scoolynk-app-sub000/tests"
)

const session = "2024/2025"

// fakeRenderer fails for the students listed in failFor.
type fakeRenderer struct {
	failFor map[string]bool
}

func (rd fakeRenderer) Render(_ context.Context, r result.Result, _ school.School, _ template.Components) (core.Document, error) {
	if rd.failFor[r.Student.Name] {
		return core.Document{}, errors.New("renderer unavailable")
	}
	payload := []byte("%PDF-1.3 " + r.ID)
	return core.Document{Payload: payload, Size: len(payload), Filename: r.ID + ".pdf", ContentType: "application/pdf"}, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []core.Notification
}

func (n *fakeNotifier) Send(_ context.Context, notif core.Notification) core.Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
	return core.Delivery{Recipient: notif.Recipient.Address, Success: true}
}

func (n *fakeNotifier) SendBulk(ctx context.Context, notifs ...core.Notification) []core.Delivery {
	deliveries := make([]core.Delivery, 0, len(notifs))
	for _, notif := range notifs {
		deliveries = append(deliveries, n.Send(ctx, notif))
	}
	return deliveries
}

type fixture struct {
	svc      *result.Service
	tmplSvc  *template.Service
	notifier *fakeNotifier
	renderer fakeRenderer
	school   school.School
	admin    core.Principal
	teacher  core.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conf := testutil.NewConfig()
	validate, _ := testutil.NewValidator(conf)
	logger := testutil.NewLogger(conf)
	db := inmemdb.Open()

	schoolRepo := inmemdb.NewSchoolRepository(db)
	sch := testutil.CreateSchool(t, schoolRepo, "Greenfield Academy")

	f := &fixture{
		tmplSvc:  template.NewService(inmemdb.NewTemplateRepository(db), validate, logger, nil),
		notifier: new(fakeNotifier),
		renderer: fakeRenderer{failFor: make(map[string]bool)},
		school:   sch,
		admin:    testutil.Principal(sch.ID, core.RoleAdminPrincipal),
		teacher:  testutil.Principal(sch.ID, core.RoleTeacher),
	}
	f.svc = result.NewService(
		inmemdb.NewResultRepository(db),
		f.tmplSvc,
		school.NewService(schoolRepo, validate),
		f.renderer,
		f.notifier,
		validate,
		logger,
		nil,
		result.Options{BatchConcurrency: 2},
	)
	return f
}

func newResult(studentID, name string, scores ...map[string]float64) result.NewResult {
	subjects := []result.SubjectInput{{Name: "Mathematics", Scores: map[string]float64{"ca1": 15, "ca2": 15, "exam": 40}}}
	if len(scores) > 0 {
		subjects = subjects[:0]
		for i, s := range scores {
			subjects = append(subjects, result.SubjectInput{Name: []string{"Mathematics", "English", "Biology"}[i], Scores: s})
		}
	}
	return result.NewResult{
		StudentID: studentID,
		ClassID:   "jss1a",
		Term:      template.TermFirst,
		Session:   session,
		Student: result.Student{
			Name:        name,
			ClassName:   "JSS 1A",
			ParentName:  "Mrs " + name,
			ParentEmail: studentID + "@parents.test",
		},
		Subjects:   subjects,
		Attendance: result.Attendance{Opened: 60, Present: 55, Absent: 5},
	}
}

// submitted creates and submits a result authored by f.teacher.
func (f *fixture) submitted(t *testing.T, nr result.NewResult) result.Result {
	t.Helper()
	ctx := context.Background()
	saved, err := f.svc.Create(ctx, f.teacher, nr)
	require.NoError(t, err)
	r, err := f.svc.Submit(ctx, f.teacher, saved.ID)
	require.NoError(t, err)
	return r
}

func (f *fixture) approved(t *testing.T, nr result.NewResult) result.Result {
	t.Helper()
	r := f.submitted(t, nr)
	saved, err := f.svc.ReviewOne(context.Background(), f.admin, r.ID, result.Review{Action: result.ActionApprove})
	require.NoError(t, err)
	return saved.Result
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	nr := newResult("st1", "Ada Obi",
		map[string]float64{"ca1": 18, "ca2": 17, "exam": 45},
		map[string]float64{"ca1": 25, "ca2": 10, "exam": 30, "total": 99},
	)
	nr.AffectiveTraits = map[string]int{"punctuality": 5}
	saved, err := f.svc.Create(ctx, f.teacher, nr)
	require.NoError(t, err)

	assert.Equal(t, result.StatusDraft, saved.Status)
	assert.Equal(t, f.teacher.UserID, saved.TeacherID)
	assert.Equal(t, f.school.ID, saved.SchoolID)
	assert.Empty(t, saved.TemplateID)
	require.Len(t, saved.Subjects, 2)
	assert.Equal(t, 80.0, saved.Subjects[0].Total)
	assert.Equal(t, "A", saved.Subjects[0].Grade)
	assert.Equal(t, 60.0, saved.Subjects[1].Total) // ca1 clamped to 20
	assert.Equal(t, "B", saved.Subjects[1].Grade)
	assert.Equal(t, 140.0, saved.Total)
	assert.Equal(t, 70.0, saved.Average)
	assert.Equal(t, []score.Adjustment{
		{Subject: "English", ColumnID: "ca1", Entered: 25, Accepted: 20, Reason: score.ReasonClamped},
		{Subject: "English", ColumnID: "total", Entered: 99, Reason: score.ReasonIgnored},
	}, saved.Adjustments)
	require.Len(t, saved.History, 1)
	assert.Equal(t, result.EventCreate, saved.History[0].Event)

	_, err = f.svc.Create(ctx, f.teacher, newResult("st1", "Ada Obi"))
	assert.Equal(t, result.ErrDuplicate, errors.Cause(err))

	// the same student may have a result for another term
	other := newResult("st1", "Ada Obi")
	other.Term = template.TermSecond
	_, err = f.svc.Create(ctx, f.teacher, other)
	assert.NoError(t, err)
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	blankSubjects := newResult("st1", "Ada Obi")
	blankSubjects.Subjects = []result.SubjectInput{{Name: "  ", Scores: map[string]float64{"ca1": 10}}}

	noSubjects := newResult("st2", "Bayo Ade")
	noSubjects.Subjects = nil

	dupSubjects := newResult("st3", "Chi Eze")
	dupSubjects.Subjects = append(dupSubjects.Subjects, result.SubjectInput{Name: "mathematics"})

	badTrait := newResult("st4", "Dayo Ola")
	badTrait.AffectiveTraits = map[string]int{"punctuality": 6}

	unknownTrait := newResult("st5", "Efe Uzo")
	unknownTrait.AffectiveTraits = map[string]int{"creativity": 3}

	disabledFees := newResult("st6", "Femi Ayo")
	disabledFees.Fees = map[string]float64{"tuition": 1000}

	badAttendance := newResult("st7", "Gozie Nna")
	badAttendance.Attendance = result.Attendance{Opened: 10, Present: 8, Absent: 5}

	tests := []struct {
		name string
		nr   result.NewResult
	}{
		{name: "blank subject names", nr: blankSubjects},
		{name: "no subjects", nr: noSubjects},
		{name: "duplicate subjects", nr: dupSubjects},
		{name: "trait rating out of range", nr: badTrait},
		{name: "unknown trait", nr: unknownTrait},
		{name: "fees disabled", nr: disabledFees},
		{name: "attendance overflow", nr: badAttendance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.teacher, tt.nr)
			var verr *core.ValidationError
			assert.True(t, errors.As(err, &verr), "want a validation error, got %v", err)
		})
	}

	badSession := newResult("st8", "Hauwa Bello")
	badSession.Session = "2024"
	_, err := f.svc.Create(ctx, f.teacher, badSession)
	assert.Error(t, err)
}

func TestService_CreateWithTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	comps := template.DefaultComponents()
	comps.ScoresTable.Columns = []template.Column{
		{ID: "test", Name: "Test", MaxScore: 40, Editable: true},
		{ID: "exam", Name: "Exam", MaxScore: 60, Editable: true},
		{ID: "total", Name: "Total", Calculated: true},
	}
	comps.Fees = template.Fees{Enabled: true, FeeTypes: []template.FeeType{{ID: "tuition", Name: "Tuition", Enabled: true}}}
	tmpl, err := f.tmplSvc.Create(ctx, f.admin, template.NewTemplate{Term: template.TermFirst, Session: session, Components: &comps})
	require.NoError(t, err)

	nr := newResult("st1", "Ada Obi", map[string]float64{"test": 35, "exam": 50, "ca1": 10})
	nr.Fees = map[string]float64{"tuition": 45000}
	saved, err := f.svc.Create(ctx, f.teacher, nr)
	require.NoError(t, err)
	assert.Equal(t, tmpl.ID, saved.TemplateID)
	assert.Equal(t, 85.0, saved.Subjects[0].Total)
	assert.Equal(t, map[string]float64{"tuition": 45000}, saved.Fees)
	require.Len(t, saved.Adjustments, 1)
	assert.Equal(t, score.ReasonIgnored, saved.Adjustments[0].Reason)
}

func TestService_Access(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	saved, err := f.svc.Create(ctx, f.teacher, newResult("st1", "Ada Obi"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.admin, newResult("st2", "Bayo Ade"))
	assert.Equal(t, core.ErrAccessDenied, err)

	otherTeacher := testutil.Principal(f.school.ID, core.RoleTeacher)
	_, err = f.svc.Get(ctx, otherTeacher, saved.ID)
	assert.Equal(t, result.ErrNotFound, errors.Cause(err))
	_, err = f.svc.Submit(ctx, otherTeacher, saved.ID)
	assert.Equal(t, result.ErrNotFound, errors.Cause(err))

	_, err = f.svc.Get(ctx, testutil.Principal("other-school", core.RoleAdmin), saved.ID)
	assert.Equal(t, result.ErrNotFound, errors.Cause(err))

	_, err = f.svc.Get(ctx, testutil.Principal(f.school.ID), saved.ID)
	assert.Equal(t, core.ErrAccessDenied, err)

	got, err := f.svc.Get(ctx, f.admin, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)

	results, err := f.svc.Query(ctx, otherTeacher, result.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = f.svc.Query(ctx, f.admin, result.QueryFilter{Statuses: []string{result.StatusDraft}})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	saved, err := f.svc.Create(ctx, f.teacher, newResult("st1", "Ada Obi"))
	require.NoError(t, err)

	comments := &result.Comments{Teacher: "  Good effort. "}
	updated, err := f.svc.Update(ctx, f.teacher, saved.ID, result.UpdateResult{
		Subjects: []result.SubjectInput{
			{Name: "Mathematics", Scores: map[string]float64{"ca1": 20, "ca2": 20, "exam": 60}},
			{Name: "English", Scores: map[string]float64{"ca1": 10, "ca2": 10, "exam": 30}},
		},
		Comments: comments,
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.Total)
	assert.Equal(t, 75.0, updated.Average)
	assert.Equal(t, "Good effort.", updated.Comments.Teacher)
	assert.Equal(t, saved.Attendance, updated.Attendance)

	_, err = f.svc.Submit(ctx, f.teacher, saved.ID)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, f.teacher, saved.ID, result.UpdateResult{Comments: comments})
	var terr *result.InvalidTransitionError
	assert.True(t, errors.As(err, &terr))

	err = f.svc.Delete(ctx, f.teacher, saved.ID)
	assert.True(t, errors.As(err, &terr))
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	saved, err := f.svc.Create(ctx, f.teacher, newResult("st1", "Ada Obi"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.teacher, saved.ID))

	_, err = f.svc.Get(ctx, f.teacher, saved.ID)
	assert.Equal(t, result.ErrNotFound, errors.Cause(err))

	// the student can get a new result once the draft is gone
	_, err = f.svc.Create(ctx, f.teacher, newResult("st1", "Ada Obi"))
	assert.NoError(t, err)
}

func TestService_RejectReviseResubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.submitted(t, newResult("st1", "Ada Obi"))

	_, err := f.svc.ReviewOne(ctx, f.admin, r.ID, result.Review{Action: result.ActionReject})
	assert.Error(t, err, "rejecting needs a reason")

	saved, err := f.svc.ReviewOne(ctx, f.admin, r.ID, result.Review{Action: result.ActionReject, Reason: "Exam scores missing"})
	require.NoError(t, err)
	assert.Equal(t, result.StatusRejected, saved.Status)
	assert.Equal(t, "Exam scores missing", saved.RejectionReason)

	resubmitted, err := f.svc.Resubmit(ctx, f.teacher, r.ID)
	require.NoError(t, err)
	assert.Equal(t, result.StatusSubmitted, resubmitted.Status)

	_, err = f.svc.ReviewOne(ctx, f.admin, r.ID, result.Review{Action: result.ActionReject, Reason: "Still missing"})
	require.NoError(t, err)

	revised, err := f.svc.Revise(ctx, f.teacher, r.ID)
	require.NoError(t, err)
	assert.Equal(t, result.StatusDraft, revised.Status)

	submitted, err := f.svc.Submit(ctx, f.teacher, r.ID)
	require.NoError(t, err)
	assert.Equal(t, result.StatusSubmitted, submitted.Status)

	events := make([]string, 0, len(submitted.History))
	for _, e := range submitted.History {
		events = append(events, e.Event)
	}
	assert.Equal(t, []string{
		result.EventCreate, result.EventSubmit, result.EventReject, result.EventResubmit,
		result.EventReject, result.EventRevise, result.EventSubmit,
	}, events)
}
