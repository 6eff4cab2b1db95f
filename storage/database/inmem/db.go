// Package inmemdb is a process-local store used by tests and the "memory" database engine.
package inmemdb

import (
	"sort"
	"sync"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
	"github.com/GausMx/Scoolynk-app-sub000/core/user"
)

type (
	DB struct {
		school   *schoolTable
		user     *userTable
		template *templateTable
		result   *resultTable
	}

	schoolTable struct {
		sync.RWMutex
		table map[string]*school.School
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	templateTable struct {
		sync.RWMutex
		table map[string]*template.Template
	}

	resultTable struct {
		sync.RWMutex
		table map[string]*result.Result
	}
)

func Open() *DB {
	return &DB{
		school:   &schoolTable{table: make(map[string]*school.School)},
		user:     &userTable{table: make(map[string]*user.User)},
		template: &templateTable{table: make(map[string]*template.Template)},
		result:   &resultTable{table: make(map[string]*result.Result)},
	}
}

// lessFunc compares the rows at i and j on a single field.
// It returns -1, 0 or 1.
type lessFunc func(i, j int) int

// orderBy sorts n rows by the given orderings, falling back to fallback on ties.
// Unknown fields are ignored.
func orderBy(n int, swap func(i, j int), fields map[string]lessFunc, fallback lessFunc, orderings []core.DBOrdering) {
	cmps := make([]lessFunc, 0, len(orderings)+1)
	for _, ord := range orderings {
		cmp, ok := fields[ord.Field]
		if !ok {
			continue
		}
		if !ord.Ascending {
			cmp := cmp
			cmps = append(cmps, func(i, j int) int { return -cmp(i, j) })
			continue
		}
		cmps = append(cmps, cmp)
	}
	cmps = append(cmps, fallback)

	sort.Stable(sorter{n: n, swap: swap, less: func(i, j int) bool {
		for _, cmp := range cmps {
			if c := cmp(i, j); c != 0 {
				return c < 0
			}
		}
		return false
	}})
}

type sorter struct {
	n    int
	swap func(i, j int)
	less func(i, j int) bool
}

func (s sorter) Len() int           { return s.n }
func (s sorter) Less(i, j int) bool { return s.less(i, j) }
func (s sorter) Swap(i, j int)      { s.swap(i, j) }

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
