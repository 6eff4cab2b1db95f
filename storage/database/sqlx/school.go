package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core/school"
)

const schoolColumns = `id, name, address, email, phone, motto, created_at, updated_at`

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	q := `INSERT INTO school (` + schoolColumns + `) VALUES
		(:id, :name, :address, :email, :phone, :motto, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, sch); err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	var sch school.School
	if err := repo.db.GetContext(ctx, &sch, `SELECT `+schoolColumns+` FROM school WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, errors.Wrap(err, "selecting school")
	}
	sch.CreatedAt = sch.CreatedAt.UTC()
	sch.UpdatedAt = sch.UpdatedAt.UTC()
	return sch, nil
}

func (repo *schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	schools := make([]school.School, 0)
	if err := repo.db.SelectContext(ctx, &schools, `SELECT `+schoolColumns+` FROM school ORDER BY name, id`); err != nil {
		return nil, errors.Wrap(err, "selecting schools")
	}
	return schools, nil
}
