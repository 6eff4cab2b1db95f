package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// cleaned returns the bound orderings the resource allows, mapped to their store field.
func (ord *Ordering) cleaned(allowed map[string]string) []core.DBOrdering {
	return core.CleanOrderings(ord.Orderings, allowed)
}

var (
	userOrderings = map[string]string{
		"name":       "name",
		"username":   "username",
		"email":      "email",
		"created_at": "created_at",
		"last_login": "last_login",
	}
	templateOrderings = map[string]string{
		"name":       "name",
		"term":       "term",
		"session":    "session",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	resultOrderings = map[string]string{
		"student":    "student_name",
		"status":     "status",
		"average":    "average",
		"position":   "position",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
)
