package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
	"github.com/GausMx/Scoolynk-app-sub000/core/user"
)

// Repositories groups the stores of one database engine.
type Repositories struct {
	Users     user.Repository
	Schools   school.Repository
	Templates template.Repository
	Results   result.Repository
}

// RunRepositoryTests checks the behaviour every engine must share.
// Records are created under fresh ids so it can run against a persistent database.
func RunRepositoryTests(t *testing.T, repos Repositories) {
	t.Run("schools", func(t *testing.T) { testSchools(t, repos.Schools) })
	t.Run("users", func(t *testing.T) { testUsers(t, repos) })
	t.Run("templates", func(t *testing.T) { testTemplates(t, repos) })
	t.Run("results", func(t *testing.T) { testResults(t, repos) })
}

// now is truncated to the coarsest precision of the engines.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func testSchools(t *testing.T, repo school.Repository) {
	ctx := context.Background()
	sch := CreateSchool(t, repo, "Greenfield Academy")

	got, err := repo.GetSchool(ctx, sch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Greenfield Academy", got.Name)

	_, err = repo.GetSchool(ctx, uuid.NewString())
	assert.Equal(t, school.ErrNotFound, err)

	all, err := repo.QuerySchools(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, sch.ID)
}

func testUsers(t *testing.T, repos Repositories) {
	ctx := context.Background()
	sch := CreateSchool(t, repos.Schools, "Greenfield Academy")
	suffix := uuid.NewString()[:8]
	admin := CreateUser(t, repos.Users, sch.ID, "Ngozi Okafor", "principal"+suffix, "principal"+suffix+"@greenfield.test", "", []string{core.RoleAdminOwner}, true)
	teacher := CreateUser(t, repos.Users, sch.ID, "Tunde Bello", "tbello"+suffix, "tbello"+suffix+"@greenfield.test", "", []string{core.RoleTeacher}, true)

	assert.Equal(t, user.ErrUsernameExists, repos.Users.CheckUsernameUniqueness(ctx, admin.Username, ""))
	assert.Equal(t, user.ErrEmailExists, repos.Users.CheckUsernameUniqueness(ctx, "", admin.Email))
	assert.NoError(t, repos.Users.CheckUsernameUniqueness(ctx, admin.Username, admin.Email, admin))

	got, err := repos.Users.GetUserByUsernameOrEmail(ctx, teacher.Email)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, got.ID)
	_, err = repos.Users.GetUserByUsernameOrEmail(ctx, "")
	assert.Equal(t, user.ErrNotFound, err)

	users, err := repos.Users.QueryUsers(ctx, user.QueryFilter{SchoolID: sch.ID, Roles: []string{core.RoleTeacher}})
	require.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, teacher.ID, users[0].ID)
	}
	users, err = repos.Users.QueryUsers(ctx, user.QueryFilter{SchoolID: sch.ID, Search: "OKAFOR"})
	require.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, admin.ID, users[0].ID)
	}
	users, err = repos.Users.QueryUsers(ctx, user.QueryFilter{SchoolID: sch.ID}, core.DBOrdering{Field: "name", Ascending: true})
	require.NoError(t, err)
	if assert.Len(t, users, 2) {
		assert.Equal(t, []string{admin.ID, teacher.ID}, []string{users[0].ID, users[1].ID})
	}

	teacher.Name = "Tunde A. Bello"
	teacher.UpdatedAt = now()
	_, err = repos.Users.UpdateUser(ctx, teacher)
	require.NoError(t, err)
	got, err = repos.Users.GetUserByID(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tunde A. Bello", got.Name)
	assert.Equal(t, []string{core.RoleTeacher}, got.Roles)

	_, err = repos.Users.UpdateUser(ctx, user.User{ID: uuid.NewString(), SchoolID: sch.ID})
	assert.Equal(t, user.ErrNotFound, err)

	// users of another school are left alone
	require.NoError(t, repos.Users.DeleteUsersByID(ctx, uuid.NewString(), teacher.ID))
	_, err = repos.Users.GetUserByID(ctx, teacher.ID)
	require.NoError(t, err)

	require.NoError(t, repos.Users.DeleteUsersByID(ctx, sch.ID, teacher.ID))
	_, err = repos.Users.GetUserByID(ctx, teacher.ID)
	assert.Equal(t, user.ErrNotFound, err)
}

func newTemplate(schoolID string, active bool) template.Template {
	ts := now()
	return template.Template{
		ID:       uuid.NewString(),
		SchoolID: schoolID,
		Name:     "First Term 2024/2025",
		Term:     template.TermFirst,
		Session:  "2024/2025",
		IsActive: active,
		Components: template.Components{
			ScoresTable: template.ScoresTable{
				Enabled: true,
				Columns: []template.Column{
					{ID: "ca1", Name: "1st CA", MaxScore: 40, Editable: true},
					{ID: "exam", Name: "Exam", MaxScore: 60, Editable: true},
				},
			},
		},
		CreatedBy: uuid.NewString(),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func testTemplates(t *testing.T, repos Repositories) {
	ctx := context.Background()
	sch := CreateSchool(t, repos.Schools, "Greenfield Academy")

	active, err := repos.Templates.CreateTemplate(ctx, newTemplate(sch.ID, true))
	require.NoError(t, err)
	_, err = repos.Templates.CreateTemplate(ctx, newTemplate(sch.ID, true))
	assert.Equal(t, template.ErrDuplicate, err)
	inactive, err := repos.Templates.CreateTemplate(ctx, newTemplate(sch.ID, false))
	require.NoError(t, err)

	_, err = repos.Templates.GetTemplate(ctx, template.GetFilter{ID: active.ID, SchoolID: uuid.NewString()})
	assert.Equal(t, template.ErrNotFound, err)
	got, err := repos.Templates.GetTemplate(ctx, template.GetFilter{ID: active.ID, SchoolID: sch.ID})
	require.NoError(t, err)
	assert.Equal(t, active.Components.ScoresTable.Columns, got.Components.ScoresTable.Columns)
	assert.True(t, got.IsActive)

	isActive := true
	tmpls, err := repos.Templates.QueryTemplates(ctx, template.QueryFilter{SchoolID: sch.ID, Term: template.TermFirst, IsActive: &isActive})
	require.NoError(t, err)
	if assert.Len(t, tmpls, 1) {
		assert.Equal(t, active.ID, tmpls[0].ID)
	}

	// reactivating collides with the active one
	inactive.IsActive = true
	_, err = repos.Templates.UpdateTemplate(ctx, inactive)
	assert.Equal(t, template.ErrDuplicate, err)

	active.IsActive = false
	_, err = repos.Templates.UpdateTemplate(ctx, active)
	require.NoError(t, err)
	_, err = repos.Templates.UpdateTemplate(ctx, inactive)
	require.NoError(t, err)

	_, err = repos.Templates.UpdateTemplate(ctx, newTemplate(sch.ID, false))
	assert.Equal(t, template.ErrNotFound, err)

	require.NoError(t, repos.Templates.DeleteTemplate(ctx, template.GetFilter{ID: active.ID, SchoolID: sch.ID}))
	_, err = repos.Templates.GetTemplate(ctx, template.GetFilter{ID: active.ID, SchoolID: sch.ID})
	assert.Equal(t, template.ErrNotFound, err)
	assert.Equal(t, template.ErrNotFound, repos.Templates.DeleteTemplate(ctx, template.GetFilter{ID: active.ID, SchoolID: sch.ID}))
}

func newResult(schoolID, studentID, teacherID, status string, average float64) result.Result {
	ts := now()
	return result.Result{
		ID:        uuid.NewString(),
		SchoolID:  schoolID,
		StudentID: studentID,
		ClassID:   "jss1-a",
		TeacherID: teacherID,
		Term:      template.TermFirst,
		Session:   "2024/2025",
		Student:   result.Student{Name: "Student " + studentID, ParentEmail: "parent@greenfield.test"},
		Subjects: []result.Subject{
			{Name: "Mathematics", Scores: map[string]float64{"ca1": average}, Total: average, Grade: "B"},
		},
		Total:     average,
		Average:   average,
		Status:    status,
		History:   []result.Entry{{To: status, Event: "create", By: teacherID, At: ts}},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func testResults(t *testing.T, repos Repositories) {
	ctx := context.Background()
	sch := CreateSchool(t, repos.Schools, "Greenfield Academy")
	teacherID := uuid.NewString()

	first, err := repos.Results.CreateResult(ctx, newResult(sch.ID, "stu-1", teacherID, result.StatusDraft, 48))
	require.NoError(t, err)
	_, err = repos.Results.CreateResult(ctx, newResult(sch.ID, "stu-1", teacherID, result.StatusDraft, 50))
	assert.Equal(t, result.ErrDuplicate, err)
	second, err := repos.Results.CreateResult(ctx, newResult(sch.ID, "stu-2", teacherID, result.StatusSubmitted, 64.5))
	require.NoError(t, err)

	_, err = repos.Results.GetResult(ctx, result.GetFilter{ID: first.ID, SchoolID: sch.ID, TeacherID: uuid.NewString()})
	assert.Equal(t, result.ErrNotFound, err)
	got, err := repos.Results.GetResult(ctx, result.GetFilter{ID: first.ID, SchoolID: sch.ID, TeacherID: teacherID})
	require.NoError(t, err)
	assert.Equal(t, "Student stu-1", got.Student.Name)
	assert.Equal(t, 48.0, got.Subjects[0].Scores["ca1"])
	if assert.Len(t, got.History, 1) {
		assert.Equal(t, "create", got.History[0].Event)
	}

	results, err := repos.Results.QueryResults(ctx, result.QueryFilter{SchoolID: sch.ID, Statuses: []string{result.StatusSubmitted}})
	require.NoError(t, err)
	if assert.Len(t, results, 1) {
		assert.Equal(t, second.ID, results[0].ID)
	}
	results, err = repos.Results.QueryResults(ctx, result.QueryFilter{SchoolID: sch.ID, ClassID: "jss1-a"}, core.DBOrdering{Field: "average"})
	require.NoError(t, err)
	if assert.Len(t, results, 2) {
		assert.Equal(t, []string{second.ID, first.ID}, []string{results[0].ID, results[1].ID})
	}

	first.Status = result.StatusSubmitted
	first.Position = 2
	_, err = repos.Results.UpdateResult(ctx, first)
	require.NoError(t, err)
	got, err = repos.Results.GetResult(ctx, result.GetFilter{ID: first.ID, SchoolID: sch.ID})
	require.NoError(t, err)
	assert.Equal(t, result.StatusSubmitted, got.Status)
	assert.Equal(t, 2, got.Position)

	assert.Equal(t, result.ErrNotFound, repos.Results.DeleteResult(ctx, result.GetFilter{ID: first.ID, SchoolID: sch.ID, TeacherID: uuid.NewString()}))
	require.NoError(t, repos.Results.DeleteResult(ctx, result.GetFilter{ID: first.ID, SchoolID: sch.ID, TeacherID: teacherID}))
	_, err = repos.Results.GetResult(ctx, result.GetFilter{ID: first.ID})
	assert.Equal(t, result.ErrNotFound, err)
}
