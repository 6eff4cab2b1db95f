package template

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

var (
	// errors
	ErrNotFound = errors.New("template not found")
	// ErrDuplicate is returned by repositories when another active template
	// already exists for the same (school, term, session).
	ErrDuplicate = errors.New("an active template already exists for this term and session")

	NowFunc = time.Now // mockable
)

// Events recorded by Metrics.
const (
	EventCreated     = "created"
	EventUpdated     = "updated"
	EventDuplicated  = "duplicated"
	EventDeactivated = "deactivated"
	EventDeleted     = "deleted"
	EventConflict    = "conflict"
)

type (
	// Repository stores templates. Implementations must enforce the
	// single active template rule atomically and return ErrDuplicate on conflict.
	Repository interface {
		CreateTemplate(ctx context.Context, tmpl Template) (Template, error)
		GetTemplate(ctx context.Context, filter GetFilter) (Template, error)
		QueryTemplates(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Template, error)
		UpdateTemplate(ctx context.Context, tmpl Template) (Template, error)
		DeleteTemplate(ctx context.Context, filter GetFilter) error
	}

	Metrics interface {
		TemplateEvent(event string)
	}

	ServiceInterface interface {
		Create(ctx context.Context, p core.Principal, nt NewTemplate) (Template, error)
		Get(ctx context.Context, p core.Principal, id string) (Template, error)
		GetActive(ctx context.Context, p core.Principal, term, session string) (Template, error)
		Query(ctx context.Context, p core.Principal, filter QueryFilter, orderings ...core.DBOrdering) ([]Template, error)
		Update(ctx context.Context, p core.Principal, id string, ut UpdateTemplate) (Template, error)
		Duplicate(ctx context.Context, p core.Principal, id string, dt DuplicateTemplate) (Template, error)
		Deactivate(ctx context.Context, p core.Principal, id string) (DeactivateResult, error)
		Resolve(ctx context.Context, schoolID, term, session string) (Template, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
		metrics  Metrics
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger, metrics Metrics) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		logger:   logger,
		metrics:  metrics,
	}
}

func (svc *Service) record(event string) {
	if svc.metrics != nil {
		svc.metrics.TemplateEvent(event)
	}
}

// wrapConflict keeps ErrDuplicate as the cause so callers can map it.
func (svc *Service) wrapConflict(err error, msg string) error {
	if errors.Cause(err) == ErrDuplicate {
		svc.record(EventConflict)
		return ErrDuplicate
	}
	return errors.Wrap(err, msg)
}

// Create stores a new active template for the principal's school.
func (svc *Service) Create(ctx context.Context, p core.Principal, nt NewTemplate) (Template, error) {
	if err := p.RequireAdmin(); err != nil {
		return Template{}, err
	}
	if err := nt.Validate(svc.validate); err != nil {
		return Template{}, err
	}

	now := NowFunc().UTC()
	comps := nt.Components.copy()
	comps.assignIDs()
	tmpl := Template{
		ID:         uuid.NewString(),
		SchoolID:   p.SchoolID,
		Name:       nt.Name,
		Term:       nt.Term,
		Session:    nt.Session,
		Components: comps,
		IsActive:   true,
		CreatedBy:  p.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if tmpl.Name == "" {
		tmpl.Name = tmpl.defaultName()
	}

	tmpl, err := svc.repo.CreateTemplate(ctx, tmpl)
	if err != nil {
		return Template{}, svc.wrapConflict(err, "creating template")
	}
	svc.record(EventCreated)
	return tmpl, nil
}

func (svc *Service) get(ctx context.Context, p core.Principal, id string) (Template, error) {
	if id == "" {
		return Template{}, ErrNotFound
	}
	return svc.repo.GetTemplate(ctx, GetFilter{ID: id, SchoolID: p.SchoolID})
}

func (svc *Service) Get(ctx context.Context, p core.Principal, id string) (Template, error) {
	if err := p.RequireStaff(); err != nil {
		return Template{}, err
	}
	return svc.get(ctx, p, id)
}

// GetActive returns the active template of the principal's school for a term and session.
func (svc *Service) GetActive(ctx context.Context, p core.Principal, term, session string) (Template, error) {
	if err := p.RequireStaff(); err != nil {
		return Template{}, err
	}
	return svc.active(ctx, p.SchoolID, core.CleanString(term), core.CleanString(session))
}

func (svc *Service) active(ctx context.Context, schoolID, term, session string) (Template, error) {
	active := true
	tmpls, err := svc.repo.QueryTemplates(ctx, QueryFilter{
		SchoolID: schoolID,
		Term:     term,
		Session:  session,
		IsActive: &active,
	})
	if err != nil {
		return Template{}, errors.Wrap(err, "querying active template")
	}
	if len(tmpls) == 0 {
		return Template{}, ErrNotFound
	}
	return tmpls[0], nil
}

// Resolve returns the active template used to compute results of a school's term,
// or an unsaved template holding the default components when there is none.
func (svc *Service) Resolve(ctx context.Context, schoolID, term, session string) (Template, error) {
	tmpl, err := svc.active(ctx, schoolID, term, session)
	if err == nil {
		return tmpl, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Template{}, err
	}
	return Template{
		SchoolID:   schoolID,
		Term:       term,
		Session:    session,
		Components: DefaultComponents(),
	}, nil
}

func (svc *Service) Query(ctx context.Context, p core.Principal, filter QueryFilter, orderings ...core.DBOrdering) ([]Template, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}
	filter.SchoolID = p.SchoolID
	filter.Clean()
	return svc.repo.QueryTemplates(ctx, filter, orderings...)
}

// Update merges the provided fields into the template.
// Uniqueness is only re-checked by the store when the template gets reactivated.
func (svc *Service) Update(ctx context.Context, p core.Principal, id string, ut UpdateTemplate) (Template, error) {
	if err := p.RequireAdmin(); err != nil {
		return Template{}, err
	}
	tmpl, err := svc.get(ctx, p, id)
	if err != nil {
		return Template{}, err
	}

	tmpl, err = ut.Merge(tmpl, svc.validate)
	if err != nil {
		return Template{}, err
	}
	tmpl.Components.assignIDs()
	tmpl.UpdatedAt = NowFunc().UTC()

	tmpl, err = svc.repo.UpdateTemplate(ctx, tmpl)
	if err != nil {
		return Template{}, svc.wrapConflict(err, "updating template")
	}
	svc.record(EventUpdated)
	return tmpl, nil
}

// Duplicate copies the components of a template into a new active template for another term/session.
func (svc *Service) Duplicate(ctx context.Context, p core.Principal, id string, dt DuplicateTemplate) (Template, error) {
	if err := p.RequireAdmin(); err != nil {
		return Template{}, err
	}
	if err := dt.Validate(svc.validate); err != nil {
		return Template{}, err
	}
	src, err := svc.get(ctx, p, id)
	if err != nil {
		return Template{}, err
	}

	now := NowFunc().UTC()
	tmpl := Template{
		ID:         uuid.NewString(),
		SchoolID:   p.SchoolID,
		Name:       dt.Name,
		Term:       dt.Term,
		Session:    dt.Session,
		Components: src.Components.copy(),
		IsActive:   true,
		CreatedBy:  p.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if tmpl.Name == "" {
		tmpl.Name = tmpl.defaultName()
	}

	tmpl, err = svc.repo.CreateTemplate(ctx, tmpl)
	if err != nil {
		return Template{}, svc.wrapConflict(err, "duplicating template")
	}
	svc.record(EventDuplicated)
	return tmpl, nil
}

// Deactivate soft-deletes an active template; an inactive one is removed for good.
func (svc *Service) Deactivate(ctx context.Context, p core.Principal, id string) (DeactivateResult, error) {
	if err := p.RequireAdmin(); err != nil {
		return DeactivateResult{}, err
	}
	tmpl, err := svc.get(ctx, p, id)
	if err != nil {
		return DeactivateResult{}, err
	}

	if tmpl.IsActive {
		tmpl.IsActive = false
		tmpl.UpdatedAt = NowFunc().UTC()
		if _, err := svc.repo.UpdateTemplate(ctx, tmpl); err != nil {
			return DeactivateResult{}, errors.Wrap(err, "deactivating template")
		}
		svc.record(EventDeactivated)
		return DeactivateResult{Deactivated: true}, nil
	}

	if err := svc.repo.DeleteTemplate(ctx, GetFilter{ID: tmpl.ID, SchoolID: p.SchoolID}); err != nil {
		return DeactivateResult{}, errors.Wrap(err, "deleting template")
	}
	svc.logger.Info("template deleted", map[string]interface{}{"template_id": tmpl.ID}, p)
	svc.record(EventDeleted)
	return DeactivateResult{Deleted: true}, nil
}

// copy returns a deep copy of the components so templates never share slices.
func (c Components) copy() Components {
	cp := c
	cp.ScoresTable.Columns = append([]Column(nil), c.ScoresTable.Columns...)
	cp.AffectiveTraits.Traits = append([]Trait(nil), c.AffectiveTraits.Traits...)
	cp.Fees.FeeTypes = append([]FeeType(nil), c.Fees.FeeTypes...)
	return cp
}
