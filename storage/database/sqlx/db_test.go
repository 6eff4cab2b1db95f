package sqlxrepos

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

func Test_selectQuery(t *testing.T) {
	db := sqlx.NewDb(nil, "postgres")

	var w where
	w.add("school_id = ?", "s1")
	w.add("status = ANY(?)", pq.Array([]string{"sent"}))
	order := orderBy(
		[]core.DBOrdering{{Field: "average"}, {Field: "lol", Ascending: true}, {Field: "student_name", Ascending: true}},
		resultOrderColumns,
		"created_at, id",
	)

	got := selectQuery(db, "SELECT id FROM result", w, order)
	assert.Equal(t, "SELECT id FROM result WHERE school_id = $1 AND status = ANY($2) ORDER BY average DESC, student_name ASC, created_at, id", got)
	assert.Len(t, w.args, 2)

	assert.Equal(t, "SELECT id FROM school ORDER BY name", selectQuery(db, "SELECT id FROM school", where{}, orderBy(nil, nil, "name")))
}

func Test_isUniqueViolation(t *testing.T) {
	pqErr := &pq.Error{Code: uniqueViolation, Constraint: resultStudentKey}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "match", err: pqErr, constraint: resultStudentKey, want: true},
		{name: "wrapped", err: errors.Wrap(pqErr, "inserting result"), constraint: resultStudentKey, want: true},
		{name: "other constraint", err: pqErr, constraint: activeTemplateIx},
		{name: "other code", err: &pq.Error{Code: "23503", Constraint: resultStudentKey}, constraint: resultStudentKey},
		{name: "not a pq error", err: errors.New("lol"), constraint: resultStudentKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err, tt.constraint))
		})
	}
}
