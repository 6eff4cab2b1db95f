package inmemdb

import (
	"context"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
)

type resultRepository struct {
	db *resultTable
}

var _ result.Repository = (*resultRepository)(nil)

func NewResultRepository(db *DB) result.Repository {
	return &resultRepository{db: db.result}
}

// conflicts reports whether the student already has another result for the term.
// Callers must hold the lock.
func (repo *resultRepository) conflicts(r result.Result) bool {
	for _, o := range repo.db.table {
		if o.ID != r.ID && o.SchoolID == r.SchoolID && o.StudentID == r.StudentID &&
			o.Term == r.Term && o.Session == r.Session {
			return true
		}
	}
	return false
}

func matches(r *result.Result, filter result.GetFilter) bool {
	return (filter.SchoolID == "" || r.SchoolID == filter.SchoolID) &&
		(filter.TeacherID == "" || r.TeacherID == filter.TeacherID)
}

func (repo *resultRepository) CreateResult(_ context.Context, r result.Result) (result.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.conflicts(r) {
		return result.Result{}, result.ErrDuplicate
	}
	stored := cloneResult(r)
	repo.db.table[r.ID] = &stored
	return r, nil
}

func (repo *resultRepository) GetResult(_ context.Context, filter result.GetFilter) (result.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	r, ok := repo.db.table[filter.ID]
	if !ok || !matches(r, filter) {
		return result.Result{}, result.ErrNotFound
	}
	return cloneResult(*r), nil
}

func (repo *resultRepository) QueryResults(_ context.Context, filter result.QueryFilter, orderings ...core.DBOrdering) ([]result.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	statuses := make(map[string]bool, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses[s] = true
	}

	results := make([]result.Result, 0)
	for _, r := range repo.db.table {
		switch {
		case filter.SchoolID != "" && r.SchoolID != filter.SchoolID,
			filter.TeacherID != "" && r.TeacherID != filter.TeacherID,
			filter.ClassID != "" && r.ClassID != filter.ClassID,
			filter.StudentID != "" && r.StudentID != filter.StudentID,
			filter.Term != "" && r.Term != filter.Term,
			filter.Session != "" && r.Session != filter.Session,
			len(statuses) > 0 && !statuses[r.Status]:
			continue
		}
		results = append(results, cloneResult(*r))
	}

	fields := map[string]lessFunc{
		"student_name": func(i, j int) int { return compareStrings(results[i].Student.Name, results[j].Student.Name) },
		"status":       func(i, j int) int { return compareStrings(results[i].Status, results[j].Status) },
		"average":      func(i, j int) int { return compareFloats(results[i].Average, results[j].Average) },
		"position":     func(i, j int) int { return results[i].Position - results[j].Position },
		"created_at":   func(i, j int) int { return results[i].CreatedAt.Compare(results[j].CreatedAt) },
		"updated_at":   func(i, j int) int { return results[i].UpdatedAt.Compare(results[j].UpdatedAt) },
	}
	orderBy(len(results), func(i, j int) { results[i], results[j] = results[j], results[i] }, fields,
		func(i, j int) int {
			if c := results[i].CreatedAt.Compare(results[j].CreatedAt); c != 0 {
				return c
			}
			return compareStrings(results[i].ID, results[j].ID)
		}, orderings)
	return results, nil
}

func (repo *resultRepository) UpdateResult(_ context.Context, r result.Result) (result.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[r.ID]
	if !ok || orig.SchoolID != r.SchoolID {
		return result.Result{}, result.ErrNotFound
	}
	if repo.conflicts(r) {
		return result.Result{}, result.ErrDuplicate
	}
	stored := cloneResult(r)
	repo.db.table[r.ID] = &stored
	return r, nil
}

func (repo *resultRepository) DeleteResult(_ context.Context, filter result.GetFilter) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	r, ok := repo.db.table[filter.ID]
	if !ok || !matches(r, filter) {
		return result.ErrNotFound
	}
	delete(repo.db.table, filter.ID)
	return nil
}

// cloneResult copies the maps and slices of r so stored rows never alias caller data.
func cloneResult(r result.Result) result.Result {
	cp := r
	if r.Subjects != nil {
		cp.Subjects = make([]result.Subject, len(r.Subjects))
		for i, s := range r.Subjects {
			s.Scores = cloneMap(s.Scores)
			cp.Subjects[i] = s
		}
	}
	cp.AffectiveTraits = cloneMap(r.AffectiveTraits)
	cp.Fees = cloneMap(r.Fees)
	if r.History != nil {
		cp.History = append([]result.Entry(nil), r.History...)
	}
	return cp
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	cp := make(map[K]V, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
