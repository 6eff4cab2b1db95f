package inmemdb

import (
	"context"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

type templateRepository struct {
	db *templateTable
}

var _ template.Repository = (*templateRepository)(nil)

func NewTemplateRepository(db *DB) template.Repository {
	return &templateRepository{db: db.template}
}

// conflicts reports whether another active template exists for tmpl's school, term and session.
// Callers must hold the lock.
func (repo *templateRepository) conflicts(tmpl template.Template) bool {
	if !tmpl.IsActive {
		return false
	}
	for _, t := range repo.db.table {
		if t.ID != tmpl.ID && t.IsActive && t.SchoolID == tmpl.SchoolID &&
			t.Term == tmpl.Term && t.Session == tmpl.Session {
			return true
		}
	}
	return false
}

func (repo *templateRepository) CreateTemplate(_ context.Context, tmpl template.Template) (template.Template, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.conflicts(tmpl) {
		return template.Template{}, template.ErrDuplicate
	}
	stored := cloneTemplate(tmpl)
	repo.db.table[tmpl.ID] = &stored
	return tmpl, nil
}

func (repo *templateRepository) GetTemplate(_ context.Context, filter template.GetFilter) (template.Template, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tmpl, ok := repo.db.table[filter.ID]
	if !ok || (filter.SchoolID != "" && tmpl.SchoolID != filter.SchoolID) {
		return template.Template{}, template.ErrNotFound
	}
	return cloneTemplate(*tmpl), nil
}

func (repo *templateRepository) QueryTemplates(_ context.Context, filter template.QueryFilter, orderings ...core.DBOrdering) ([]template.Template, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tmpls := make([]template.Template, 0)
	for _, t := range repo.db.table {
		switch {
		case filter.SchoolID != "" && t.SchoolID != filter.SchoolID,
			filter.Term != "" && t.Term != filter.Term,
			filter.Session != "" && t.Session != filter.Session,
			filter.IsActive != nil && t.IsActive != *filter.IsActive:
			continue
		}
		tmpls = append(tmpls, cloneTemplate(*t))
	}

	fields := map[string]lessFunc{
		"name":       func(i, j int) int { return compareStrings(tmpls[i].Name, tmpls[j].Name) },
		"term":       func(i, j int) int { return compareStrings(tmpls[i].Term, tmpls[j].Term) },
		"session":    func(i, j int) int { return compareStrings(tmpls[i].Session, tmpls[j].Session) },
		"created_at": func(i, j int) int { return tmpls[i].CreatedAt.Compare(tmpls[j].CreatedAt) },
		"updated_at": func(i, j int) int { return tmpls[i].UpdatedAt.Compare(tmpls[j].UpdatedAt) },
	}
	// newest first by default
	orderBy(len(tmpls), func(i, j int) { tmpls[i], tmpls[j] = tmpls[j], tmpls[i] }, fields,
		func(i, j int) int { return tmpls[j].CreatedAt.Compare(tmpls[i].CreatedAt) }, orderings)
	return tmpls, nil
}

func (repo *templateRepository) UpdateTemplate(_ context.Context, tmpl template.Template) (template.Template, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[tmpl.ID]
	if !ok || orig.SchoolID != tmpl.SchoolID {
		return template.Template{}, template.ErrNotFound
	}
	if repo.conflicts(tmpl) {
		return template.Template{}, template.ErrDuplicate
	}
	stored := cloneTemplate(tmpl)
	repo.db.table[tmpl.ID] = &stored
	return tmpl, nil
}

func (repo *templateRepository) DeleteTemplate(_ context.Context, filter template.GetFilter) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	tmpl, ok := repo.db.table[filter.ID]
	if !ok || tmpl.SchoolID != filter.SchoolID {
		return template.ErrNotFound
	}
	delete(repo.db.table, filter.ID)
	return nil
}

func cloneTemplate(t template.Template) template.Template {
	cp := t
	cp.Components.ScoresTable.Columns = append([]template.Column(nil), t.Components.ScoresTable.Columns...)
	cp.Components.AffectiveTraits.Traits = append([]template.Trait(nil), t.Components.AffectiveTraits.Traits...)
	cp.Components.Fees.FeeTypes = append([]template.FeeType(nil), t.Components.Fees.FeeTypes...)
	return cp
}
