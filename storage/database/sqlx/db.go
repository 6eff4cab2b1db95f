// Package sqlxrepos implements the repositories on postgres with sqlx.
// Nested documents (template components, result contents) are stored as JSONB.
package sqlxrepos

import (
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err violates the unique constraint or index named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
	}
	return false
}

// where collects AND-ed conditions written with `?` placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy builds an ORDER BY clause from orderings on known columns, ending with fallback.
func orderBy(orderings []core.DBOrdering, columns map[string]string, fallback string) string {
	parts := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		if col, ok := columns[ord.Field]; ok {
			parts = append(parts, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	parts = append(parts, fallback)
	return " ORDER BY " + strings.Join(parts, ", ")
}

// selectQuery rebinds a query built with `?` placeholders for db.
func selectQuery(db *sqlx.DB, base string, w where, order string) string {
	return db.Rebind(base + w.String() + order)
}
