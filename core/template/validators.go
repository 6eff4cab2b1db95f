package template

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

var (
	termTag  = "term"
	termText = "term must be one of: " + strings.Join(Terms, ", ")
)

// InitValidators registers the template validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(termTag, termValidation)
	core.RegisterCustomTranslation(validate, translator, termTag, termText)
}

func termValidation(fl validator.FieldLevel) bool {
	return ValidTerm(fl.Field().String())
}

// validateComponents checks the rules a struct tag cannot express:
// - an editable column needs a positive max score
// - a column cannot be editable and calculated at once
// - column, trait and fee names are unique (case-insensitive)
// - the scores table needs at least one editable column when enabled
func validateComponents(comps Components) error {
	var flds []core.FieldError
	addErr := func(field, msg string) {
		flds = append(flds, core.FieldError{Field: field, Error: msg})
	}

	editable := 0
	seen := make(map[string]bool)
	ids := make(map[string]bool)
	for i, col := range comps.ScoresTable.Columns {
		field := fmt.Sprintf("scores_table.columns[%d]", i)
		if col.Editable && col.Calculated {
			addErr(field, "a column cannot be both editable and calculated")
		}
		if col.Editable {
			editable++
			if col.MaxScore <= 0 {
				addErr(field+".max_score", "an editable column needs a max score greater than 0")
			}
		}
		key := strings.ToLower(col.Name)
		if seen[key] {
			addErr(field+".name", fmt.Sprintf("duplicate column %q", col.Name))
		}
		seen[key] = true
		if col.ID != "" {
			if ids[col.ID] {
				addErr(field+".id", fmt.Sprintf("duplicate column id %q", col.ID))
			}
			ids[col.ID] = true
		}
	}
	if comps.ScoresTable.Enabled && editable == 0 {
		addErr("scores_table.columns", "at least one editable column is required")
	}

	seen = make(map[string]bool)
	for i, trait := range comps.AffectiveTraits.Traits {
		key := strings.ToLower(trait.Name)
		if seen[key] {
			addErr(fmt.Sprintf("affective_traits.traits[%d].name", i), fmt.Sprintf("duplicate trait %q", trait.Name))
		}
		seen[key] = true
	}

	seen = make(map[string]bool)
	for i, fee := range comps.Fees.FeeTypes {
		key := strings.ToLower(fee.Name)
		if seen[key] {
			addErr(fmt.Sprintf("fees.fee_types[%d].name", i), fmt.Sprintf("duplicate fee type %q", fee.Name))
		}
		seen[key] = true
	}

	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
