package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

const (
	templateColumns  = `id, school_id, name, term, session, components, is_active, created_by, created_at, updated_at`
	activeTemplateIx = "template_active_key"
)

var templateOrderColumns = map[string]string{
	"name":       "name",
	"term":       "term",
	"session":    "session",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type templateRow struct {
	ID         string         `db:"id"`
	SchoolID   string         `db:"school_id"`
	Name       string         `db:"name"`
	Term       string         `db:"term"`
	Session    string         `db:"session"`
	Components types.JSONText `db:"components"`
	IsActive   bool           `db:"is_active"`
	CreatedBy  string         `db:"created_by"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func toTemplateRow(tmpl template.Template) (templateRow, error) {
	comps, err := json.Marshal(tmpl.Components)
	if err != nil {
		return templateRow{}, errors.Wrap(err, "encoding components")
	}
	return templateRow{
		ID:         tmpl.ID,
		SchoolID:   tmpl.SchoolID,
		Name:       tmpl.Name,
		Term:       tmpl.Term,
		Session:    tmpl.Session,
		Components: comps,
		IsActive:   tmpl.IsActive,
		CreatedBy:  tmpl.CreatedBy,
		CreatedAt:  tmpl.CreatedAt.UTC(),
		UpdatedAt:  tmpl.UpdatedAt.UTC(),
	}, nil
}

func (row templateRow) template() (template.Template, error) {
	tmpl := template.Template{
		ID:        row.ID,
		SchoolID:  row.SchoolID,
		Name:      row.Name,
		Term:      row.Term,
		Session:   row.Session,
		IsActive:  row.IsActive,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := row.Components.Unmarshal(&tmpl.Components); err != nil {
		return template.Template{}, errors.Wrap(err, "decoding components")
	}
	return tmpl, nil
}

type templateRepository struct {
	db *sqlx.DB
}

var _ template.Repository = (*templateRepository)(nil)

func NewTemplateRepository(db *sqlx.DB) template.Repository {
	return &templateRepository{db: db}
}

func (repo *templateRepository) CreateTemplate(ctx context.Context, tmpl template.Template) (template.Template, error) {
	row, err := toTemplateRow(tmpl)
	if err != nil {
		return template.Template{}, err
	}
	q := `INSERT INTO template (` + templateColumns + `) VALUES
		(:id, :school_id, :name, :term, :session, :components, :is_active, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err, activeTemplateIx) {
			return template.Template{}, template.ErrDuplicate
		}
		return template.Template{}, errors.Wrap(err, "inserting template")
	}
	return tmpl, nil
}

func (repo *templateRepository) GetTemplate(ctx context.Context, filter template.GetFilter) (template.Template, error) {
	var row templateRow
	q := `SELECT ` + templateColumns + ` FROM template WHERE id = $1 AND school_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, filter.ID, filter.SchoolID); err != nil {
		if err == sql.ErrNoRows {
			return template.Template{}, template.ErrNotFound
		}
		return template.Template{}, errors.Wrap(err, "selecting template")
	}
	return row.template()
}

func (repo *templateRepository) QueryTemplates(ctx context.Context, filter template.QueryFilter, orderings ...core.DBOrdering) ([]template.Template, error) {
	var w where
	if filter.SchoolID != "" {
		w.add("school_id = ?", filter.SchoolID)
	}
	if filter.Term != "" {
		w.add("term = ?", filter.Term)
	}
	if filter.Session != "" {
		w.add("session = ?", filter.Session)
	}
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}

	var rows []templateRow
	q := selectQuery(repo.db, `SELECT `+templateColumns+` FROM template`, w, orderBy(orderings, templateOrderColumns, "created_at DESC, id"))
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting templates")
	}
	tmpls := make([]template.Template, 0, len(rows))
	for _, row := range rows {
		tmpl, err := row.template()
		if err != nil {
			return nil, err
		}
		tmpls = append(tmpls, tmpl)
	}
	return tmpls, nil
}

func (repo *templateRepository) UpdateTemplate(ctx context.Context, tmpl template.Template) (template.Template, error) {
	row, err := toTemplateRow(tmpl)
	if err != nil {
		return template.Template{}, err
	}
	q := `UPDATE template SET name = :name, components = :components, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id AND school_id = :school_id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		if isUniqueViolation(err, activeTemplateIx) {
			return template.Template{}, template.ErrDuplicate
		}
		return template.Template{}, errors.Wrap(err, "updating template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return template.Template{}, template.ErrNotFound
	}
	return tmpl, nil
}

func (repo *templateRepository) DeleteTemplate(ctx context.Context, filter template.GetFilter) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM template WHERE id = $1 AND school_id = $2`, filter.ID, filter.SchoolID)
	if err != nil {
		return errors.Wrap(err, "deleting template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return template.ErrNotFound
	}
	return nil
}
