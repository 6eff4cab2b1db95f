package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
)

const (
	resultColumns = `id, school_id, student_id, class_id, teacher_id, term, session, student_name,
		status, average, position, data, created_at, updated_at`
	resultStudentKey = "result_student_term_key"
)

var resultOrderColumns = map[string]string{
	"student_name": "student_name",
	"status":       "status",
	"average":      "average",
	"position":     "position",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}

// resultRow holds the queried fields of a result in columns and the whole result in data.
type resultRow struct {
	ID          string         `db:"id"`
	SchoolID    string         `db:"school_id"`
	StudentID   string         `db:"student_id"`
	ClassID     string         `db:"class_id"`
	TeacherID   string         `db:"teacher_id"`
	Term        string         `db:"term"`
	Session     string         `db:"session"`
	StudentName string         `db:"student_name"`
	Status      string         `db:"status"`
	Average     float64        `db:"average"`
	Position    int            `db:"position"`
	Data        types.JSONText `db:"data"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toResultRow(r result.Result) (resultRow, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return resultRow{}, errors.Wrap(err, "encoding result")
	}
	return resultRow{
		ID:          r.ID,
		SchoolID:    r.SchoolID,
		StudentID:   r.StudentID,
		ClassID:     r.ClassID,
		TeacherID:   r.TeacherID,
		Term:        r.Term,
		Session:     r.Session,
		StudentName: r.Student.Name,
		Status:      r.Status,
		Average:     r.Average,
		Position:    r.Position,
		Data:        data,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}, nil
}

func (row resultRow) result() (result.Result, error) {
	var r result.Result
	if err := row.Data.Unmarshal(&r); err != nil {
		return result.Result{}, errors.Wrap(err, "decoding result")
	}
	return r, nil
}

type resultRepository struct {
	db *sqlx.DB
}

var _ result.Repository = (*resultRepository)(nil)

func NewResultRepository(db *sqlx.DB) result.Repository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) CreateResult(ctx context.Context, r result.Result) (result.Result, error) {
	row, err := toResultRow(r)
	if err != nil {
		return result.Result{}, err
	}
	q := `INSERT INTO result (` + resultColumns + `) VALUES
		(:id, :school_id, :student_id, :class_id, :teacher_id, :term, :session, :student_name,
		:status, :average, :position, :data, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err, resultStudentKey) {
			return result.Result{}, result.ErrDuplicate
		}
		return result.Result{}, errors.Wrap(err, "inserting result")
	}
	return r, nil
}

func getFilterWhere(filter result.GetFilter) where {
	var w where
	w.add("id = ?", filter.ID)
	if filter.SchoolID != "" {
		w.add("school_id = ?", filter.SchoolID)
	}
	if filter.TeacherID != "" {
		w.add("teacher_id = ?", filter.TeacherID)
	}
	return w
}

func (repo *resultRepository) GetResult(ctx context.Context, filter result.GetFilter) (result.Result, error) {
	w := getFilterWhere(filter)
	var row resultRow
	if err := repo.db.GetContext(ctx, &row, selectQuery(repo.db, `SELECT `+resultColumns+` FROM result`, w, ""), w.args...); err != nil {
		if err == sql.ErrNoRows {
			return result.Result{}, result.ErrNotFound
		}
		return result.Result{}, errors.Wrap(err, "selecting result")
	}
	return row.result()
}

func (repo *resultRepository) QueryResults(ctx context.Context, filter result.QueryFilter, orderings ...core.DBOrdering) ([]result.Result, error) {
	var w where
	if filter.SchoolID != "" {
		w.add("school_id = ?", filter.SchoolID)
	}
	if filter.TeacherID != "" {
		w.add("teacher_id = ?", filter.TeacherID)
	}
	if filter.ClassID != "" {
		w.add("class_id = ?", filter.ClassID)
	}
	if filter.StudentID != "" {
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.Term != "" {
		w.add("term = ?", filter.Term)
	}
	if filter.Session != "" {
		w.add("session = ?", filter.Session)
	}
	if len(filter.Statuses) > 0 {
		w.add("status = ANY(?)", pq.Array(filter.Statuses))
	}

	var rows []resultRow
	q := selectQuery(repo.db, `SELECT `+resultColumns+` FROM result`, w, orderBy(orderings, resultOrderColumns, "created_at, id"))
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting results")
	}
	results := make([]result.Result, 0, len(rows))
	for _, row := range rows {
		r, err := row.result()
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (repo *resultRepository) UpdateResult(ctx context.Context, r result.Result) (result.Result, error) {
	row, err := toResultRow(r)
	if err != nil {
		return result.Result{}, err
	}
	q := `UPDATE result SET student_name = :student_name, status = :status, average = :average,
		position = :position, data = :data, updated_at = :updated_at
		WHERE id = :id AND school_id = :school_id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return result.Result{}, errors.Wrap(err, "updating result")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return result.Result{}, result.ErrNotFound
	}
	return r, nil
}

func (repo *resultRepository) DeleteResult(ctx context.Context, filter result.GetFilter) error {
	w := getFilterWhere(filter)
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM result`+w.String()), w.args...)
	if err != nil {
		return errors.Wrap(err, "deleting result")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return result.ErrNotFound
	}
	return nil
}
