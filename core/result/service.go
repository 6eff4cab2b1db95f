// Package result manages the term results authored by teachers and reviewed by school admins.
package result

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

var (
	// errors
	ErrNotFound = errors.New("result not found")
	// ErrDuplicate is returned by repositories when the student already has a result for the term and session.
	ErrDuplicate = errors.New("a result already exists for this student, term and session")

	NowFunc = time.Now // mockable
)

const defaultBatchConcurrency = 4

type (
	// Repository stores results, scoped by school.
	// Implementations return ErrDuplicate when a (school, student, term, session) result already exists.
	Repository interface {
		CreateResult(ctx context.Context, r Result) (Result, error)
		GetResult(ctx context.Context, filter GetFilter) (Result, error)
		QueryResults(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Result, error)
		UpdateResult(ctx context.Context, r Result) (Result, error)
		DeleteResult(ctx context.Context, filter GetFilter) error
	}

	// TemplateSource resolves the template used to compute the results of a school's term.
	TemplateSource interface {
		Resolve(ctx context.Context, schoolID, term, session string) (template.Template, error)
	}

	SchoolDirectory interface {
		Get(ctx context.Context, id string) (school.School, error)
	}

	// Renderer turns a result into a printable document.
	Renderer interface {
		Render(ctx context.Context, r Result, sch school.School, comps template.Components) (core.Document, error)
	}

	Metrics interface {
		ResultEvent(event string)
		BatchItem(status string)
	}

	ServiceInterface interface {
		Create(ctx context.Context, p core.Principal, nr NewResult) (Saved, error)
		Get(ctx context.Context, p core.Principal, id string) (Result, error)
		Query(ctx context.Context, p core.Principal, filter QueryFilter, orderings ...core.DBOrdering) ([]Result, error)
		Update(ctx context.Context, p core.Principal, id string, ur UpdateResult) (Saved, error)
		Submit(ctx context.Context, p core.Principal, id string) (Result, error)
		Resubmit(ctx context.Context, p core.Principal, id string) (Result, error)
		Revise(ctx context.Context, p core.Principal, id string) (Result, error)
		Delete(ctx context.Context, p core.Principal, id string) error

		ReviewOne(ctx context.Context, p core.Principal, id string, rv Review) (Saved, error)
		Send(ctx context.Context, p core.Principal, id string) (Result, error)
		SendBatch(ctx context.Context, p core.Principal, ids []string) (BatchReport, error)
		RankClass(ctx context.Context, p core.Principal, rr RankRequest) ([]Result, error)
	}

	Options struct {
		BatchConcurrency    int
		NotificationTimeout time.Duration
	}

	Service struct {
		repo      Repository
		templates TemplateSource
		schools   SchoolDirectory
		renderer  Renderer
		notifier  core.Notifier
		validate  *validator.Validate
		logger    core.Logger
		metrics   Metrics
		opts      Options
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	templates TemplateSource,
	schools SchoolDirectory,
	renderer Renderer,
	notifier core.Notifier,
	validate *validator.Validate,
	logger core.Logger,
	metrics Metrics,
	opts Options,
) *Service {
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaultBatchConcurrency
	}
	return &Service{
		repo:      repo,
		templates: templates,
		schools:   schools,
		renderer:  renderer,
		notifier:  notifier,
		validate:  validate,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

func (svc *Service) record(event string) {
	if svc.metrics != nil {
		svc.metrics.ResultEvent(event)
	}
}

func (svc *Service) components(ctx context.Context, r Result) (string, template.Components, error) {
	tmpl, err := svc.templates.Resolve(ctx, r.SchoolID, r.Term, r.Session)
	if err != nil {
		return "", template.Components{}, errors.Wrap(err, "resolving template")
	}
	return tmpl.ID, tmpl.Components, nil
}

// Create stores a new draft result authored by the principal.
func (svc *Service) Create(ctx context.Context, p core.Principal, nr NewResult) (Saved, error) {
	if err := p.RequireTeacher(); err != nil {
		return Saved{}, err
	}
	if err := nr.Validate(svc.validate); err != nil {
		return Saved{}, err
	}

	now := NowFunc().UTC()
	r := Result{
		ID:              uuid.NewString(),
		SchoolID:        p.SchoolID,
		StudentID:       nr.StudentID,
		ClassID:         nr.ClassID,
		TeacherID:       p.UserID,
		Term:            nr.Term,
		Session:         nr.Session,
		AffectiveTraits: map[string]int{},
		Fees:            map[string]float64{},
		Status:          StatusDraft,
		History:         []Entry{{To: StatusDraft, Event: EventCreate, By: p.UserID, At: now}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	tmplID, comps, err := svc.components(ctx, r)
	if err != nil {
		return Saved{}, err
	}
	r.TemplateID = tmplID

	r, adjs, err := compute(r, nr.content(), comps)
	if err != nil {
		return Saved{}, err
	}

	r, err = svc.repo.CreateResult(ctx, r)
	if err != nil {
		if errors.Cause(err) == ErrDuplicate {
			return Saved{}, ErrDuplicate
		}
		return Saved{}, errors.Wrap(err, "creating result")
	}
	svc.record(EventCreate)
	return Saved{Result: r, Adjustments: adjs}, nil
}

// get finds a result of the principal's school. Teachers only see the results they authored.
func (svc *Service) get(ctx context.Context, p core.Principal, id string) (Result, error) {
	if id == "" {
		return Result{}, ErrNotFound
	}
	filter := GetFilter{ID: id, SchoolID: p.SchoolID}
	if !p.IsAdmin() {
		filter.TeacherID = p.UserID
	}
	return svc.repo.GetResult(ctx, filter)
}

// getOwn finds a result authored by the principal, whatever their other roles.
func (svc *Service) getOwn(ctx context.Context, p core.Principal, id string) (Result, error) {
	if id == "" {
		return Result{}, ErrNotFound
	}
	return svc.repo.GetResult(ctx, GetFilter{ID: id, SchoolID: p.SchoolID, TeacherID: p.UserID})
}

func (svc *Service) Get(ctx context.Context, p core.Principal, id string) (Result, error) {
	if err := p.RequireStaff(); err != nil {
		return Result{}, err
	}
	return svc.get(ctx, p, id)
}

// Query lists the results of the principal's school; teachers only get their own.
func (svc *Service) Query(ctx context.Context, p core.Principal, filter QueryFilter, orderings ...core.DBOrdering) ([]Result, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	filter.SchoolID = p.SchoolID
	filter.TeacherID = ""
	if !p.IsAdmin() {
		filter.TeacherID = p.UserID
	}
	filter.Clean()
	return svc.repo.QueryResults(ctx, filter, orderings...)
}

// Update merges ur into a draft or rejected result of the principal and recomputes it.
func (svc *Service) Update(ctx context.Context, p core.Principal, id string, ur UpdateResult) (Saved, error) {
	if err := p.RequireTeacher(); err != nil {
		return Saved{}, err
	}
	if err := ur.Validate(svc.validate); err != nil {
		return Saved{}, err
	}
	r, err := svc.getOwn(ctx, p, id)
	if err != nil {
		return Saved{}, err
	}
	if err := r.Can(EventUpdate); err != nil {
		return Saved{}, err
	}

	tmplID, comps, err := svc.components(ctx, r)
	if err != nil {
		return Saved{}, err
	}
	updated, adjs, err := compute(r, ur, comps)
	if err != nil {
		return Saved{}, err
	}
	updated.TemplateID = tmplID
	updated.UpdatedAt = NowFunc().UTC()

	updated, err = svc.repo.UpdateResult(ctx, updated)
	if err != nil {
		return Saved{}, errors.Wrap(err, "updating result")
	}
	svc.record(EventUpdate)
	return Saved{Result: updated, Adjustments: adjs}, nil
}

func (svc *Service) transition(ctx context.Context, p core.Principal, id, event string) (Result, error) {
	if err := p.RequireTeacher(); err != nil {
		return Result{}, err
	}
	r, err := svc.getOwn(ctx, p, id)
	if err != nil {
		return Result{}, err
	}
	if err := r.Can(event); err != nil {
		return Result{}, err
	}
	if event != EventRevise {
		if err := checkSubjects(r); err != nil {
			return Result{}, err
		}
	}

	if err := r.apply(event, p.UserID, NowFunc().UTC(), ""); err != nil {
		return Result{}, err
	}
	r, err = svc.repo.UpdateResult(ctx, r)
	if err != nil {
		return Result{}, errors.Wrapf(err, "%s result", event)
	}
	svc.record(event)
	return r, nil
}

// Submit hands a draft result over to the school admins.
func (svc *Service) Submit(ctx context.Context, p core.Principal, id string) (Result, error) {
	return svc.transition(ctx, p, id, EventSubmit)
}

// Resubmit hands a rejected result back to the school admins.
func (svc *Service) Resubmit(ctx context.Context, p core.Principal, id string) (Result, error) {
	return svc.transition(ctx, p, id, EventResubmit)
}

// Revise moves a rejected result back to draft.
func (svc *Service) Revise(ctx context.Context, p core.Principal, id string) (Result, error) {
	return svc.transition(ctx, p, id, EventRevise)
}

// Delete removes a draft result of the principal.
func (svc *Service) Delete(ctx context.Context, p core.Principal, id string) error {
	if err := p.RequireTeacher(); err != nil {
		return err
	}
	r, err := svc.getOwn(ctx, p, id)
	if err != nil {
		return err
	}
	if err := r.Can(EventDelete); err != nil {
		return err
	}
	if err := svc.repo.DeleteResult(ctx, GetFilter{ID: r.ID, SchoolID: r.SchoolID}); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	svc.record(EventDelete)
	return nil
}
