package template_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
	inmemdb "github.com/GausMx/Scoolynk-app-sub000/storage/database/inmem"
	testutil "github.com/GausMx/Scoolynk-app-sub000/tests"
)

const session = "2024/2025"

type countingMetrics map[string]int

func (m countingMetrics) TemplateEvent(event string) { m[event]++ }

func newService(t *testing.T) (*template.Service, countingMetrics) {
	t.Helper()
	conf := testutil.NewConfig()
	validate, _ := testutil.NewValidator(conf)
	metrics := make(countingMetrics)
	svc := template.NewService(
		inmemdb.NewTemplateRepository(inmemdb.Open()),
		validate,
		testutil.NewLogger(conf),
		metrics,
	)
	return svc, metrics
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, metrics := newService(t)
	admin := testutil.Principal("s1", core.RoleAdmin)
	teacher := testutil.Principal("s1", core.RoleTeacher)

	tmpl, err := svc.Create(ctx, admin, template.NewTemplate{Term: template.TermFirst, Session: session})
	require.NoError(t, err)
	assert.True(t, tmpl.IsActive)
	assert.Equal(t, "s1", tmpl.SchoolID)
	assert.Equal(t, "First Term 2024/2025", tmpl.Name)
	assert.Equal(t, template.DefaultColumns(), tmpl.Components.ScoresTable.Columns)

	tests := []struct {
		name    string
		p       core.Principal
		nt      template.NewTemplate
		wantErr error
	}{
		{
			name:    "teacher",
			p:       teacher,
			nt:      template.NewTemplate{Term: template.TermSecond, Session: session},
			wantErr: core.ErrAccessDenied,
		},
		{
			name:    "second active template",
			p:       admin,
			nt:      template.NewTemplate{Term: template.TermFirst, Session: session},
			wantErr: template.ErrDuplicate,
		},
		{
			name: "other school",
			p:    testutil.Principal("s2", core.RoleAdminOwner),
			nt:   template.NewTemplate{Term: template.TermFirst, Session: session},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.p, tt.nt)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, errors.Cause(err))
		})
	}
	assert.Equal(t, 2, metrics[template.EventCreated])
	assert.Equal(t, 1, metrics[template.EventConflict])
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	admin := testutil.Principal("s1", core.RoleAdmin)

	noEditable := template.DefaultComponents()
	noEditable.ScoresTable.Columns = []template.Column{{Name: "Total", Calculated: true}}

	dupColumns := template.DefaultComponents()
	dupColumns.ScoresTable.Columns = []template.Column{
		{Name: "CA", MaxScore: 40, Editable: true},
		{Name: "ca", MaxScore: 60, Editable: true},
	}

	tests := []struct {
		name string
		nt   template.NewTemplate
	}{
		{name: "bad term", nt: template.NewTemplate{Term: "Fourth Term", Session: session}},
		{name: "bad session", nt: template.NewTemplate{Term: template.TermFirst, Session: "2024/2026"}},
		{name: "no editable column", nt: template.NewTemplate{Term: template.TermFirst, Session: session, Components: &noEditable}},
		{name: "duplicate columns", nt: template.NewTemplate{Term: template.TermFirst, Session: session, Components: &dupColumns}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, admin, tt.nt)
			assert.Error(t, err)
		})
	}
}

func TestService_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	admin := testutil.Principal("s1", core.RoleAdmin)

	comps := template.DefaultComponents()
	comps.Fees = template.Fees{Enabled: true, FeeTypes: []template.FeeType{{Name: "Tuition", Enabled: true}}}
	src, err := svc.Create(ctx, admin, template.NewTemplate{Name: "Main", Term: template.TermFirst, Session: session, Components: &comps})
	require.NoError(t, err)
	require.NotEmpty(t, src.Components.Fees.FeeTypes[0].ID)

	dup, err := svc.Duplicate(ctx, admin, src.ID, template.DuplicateTemplate{Term: template.TermSecond, Session: session})
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.True(t, dup.IsActive)
	assert.Equal(t, template.TermSecond, dup.Term)
	assert.Equal(t, src.Components, dup.Components)

	// the copy must not share slices with its source
	dup.Components.ScoresTable.Columns[0].Name = "changed"
	got, err := svc.Get(ctx, admin, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "1st CA", got.Components.ScoresTable.Columns[0].Name)

	_, err = svc.Duplicate(ctx, admin, src.ID, template.DuplicateTemplate{Term: template.TermFirst, Session: session})
	assert.Equal(t, template.ErrDuplicate, errors.Cause(err))

	_, err = svc.Duplicate(ctx, testutil.Principal("s2", core.RoleAdmin), src.ID, template.DuplicateTemplate{Term: template.TermThird, Session: session})
	assert.Equal(t, template.ErrNotFound, errors.Cause(err))
}

func TestService_Deactivate(t *testing.T) {
	ctx := context.Background()
	svc, metrics := newService(t)
	admin := testutil.Principal("s1", core.RoleAdmin)

	tmpl, err := svc.Create(ctx, admin, template.NewTemplate{Term: template.TermFirst, Session: session})
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, testutil.Principal("s1", core.RoleTeacher), tmpl.ID)
	assert.Equal(t, core.ErrAccessDenied, err)

	res, err := svc.Deactivate(ctx, admin, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, template.DeactivateResult{Deactivated: true}, res)

	// a new active template can now be created for the same term
	_, err = svc.Create(ctx, admin, template.NewTemplate{Term: template.TermFirst, Session: session})
	require.NoError(t, err)

	res, err = svc.Deactivate(ctx, admin, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, template.DeactivateResult{Deleted: true}, res)

	_, err = svc.Deactivate(ctx, admin, tmpl.ID)
	assert.Equal(t, template.ErrNotFound, errors.Cause(err))

	assert.Equal(t, 1, metrics[template.EventDeactivated])
	assert.Equal(t, 1, metrics[template.EventDeleted])
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	admin := testutil.Principal("s1", core.RoleAdmin)

	first, err := svc.Create(ctx, admin, template.NewTemplate{Term: template.TermFirst, Session: session})
	require.NoError(t, err)

	name := "Renamed"
	columns := &template.ScoresTable{Enabled: true, Columns: []template.Column{
		{Name: "Test", MaxScore: 30, Editable: true},
		{Name: "Exam", MaxScore: 70, Editable: true},
	}}
	updated, err := svc.Update(ctx, admin, first.ID, template.UpdateTemplate{Name: &name, ScoresTable: columns})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.Len(t, updated.Components.ScoresTable.Columns, 2)
	assert.NotEmpty(t, updated.Components.ScoresTable.Columns[0].ID)
	assert.Equal(t, first.Components.AffectiveTraits, updated.Components.AffectiveTraits)

	// reactivating a template while another one is active conflicts
	inactive := false
	_, err = svc.Update(ctx, admin, first.ID, template.UpdateTemplate{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, template.NewTemplate{Term: template.TermFirst, Session: session})
	require.NoError(t, err)
	active := true
	_, err = svc.Update(ctx, admin, first.ID, template.UpdateTemplate{IsActive: &active})
	assert.Equal(t, template.ErrDuplicate, errors.Cause(err))
}

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	admin := testutil.Principal("s1", core.RoleAdmin)

	tmpl, err := svc.Resolve(ctx, "s1", template.TermFirst, session)
	require.NoError(t, err)
	assert.Empty(t, tmpl.ID)
	assert.Equal(t, template.DefaultComponents(), tmpl.Components)

	created, err := svc.Create(ctx, admin, template.NewTemplate{Term: template.TermFirst, Session: session})
	require.NoError(t, err)

	tmpl, err = svc.Resolve(ctx, "s1", template.TermFirst, session)
	require.NoError(t, err)
	assert.Equal(t, created.ID, tmpl.ID)

	got, err := svc.GetActive(ctx, testutil.Principal("s1", core.RoleTeacher), " First Term ", session)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetActive(ctx, admin, template.TermSecond, session)
	assert.Equal(t, template.ErrNotFound, errors.Cause(err))
}
