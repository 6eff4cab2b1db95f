package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/GausMx/Scoolynk-app-sub000/apps/api/echo"
	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/user"
	testutil "github.com/GausMx/Scoolynk-app-sub000/tests"
)

func Test_userApi_login(t *testing.T) {
	a := setup(t)
	testutil.CreateUser(t, a.usrRepo, a.school.ID, "Gone Teacher", "goneteacher", "gone@greenfield.test", password, []string{core.RoleTeacher}, false)

	login := func(uname, pwd string) []byte {
		return marshal(t, echoapi.LoginRequest{Username: uname, Password: pwd})
	}

	a.run(t, []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/users/login", body: login("", ""),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username": "this field is required", "password": "this field is required"}`),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login", body: login("principal", "nope"),
			wantCode: http.StatusBadRequest, wantData: marshal(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/v1/users/login", body: login("nobody", password),
			wantCode: http.StatusBadRequest, wantData: marshal(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/v1/users/login", body: login("goneteacher", password),
			wantCode: http.StatusForbidden, wantData: marshal(t, httpErr{Error: "account deactivated"}),
		},
	})

	t.Run("by username or email", func(t *testing.T) {
		for _, uname := range []string{"PRINCIPAL", "principal@greenfield.test"} {
			rec := a.do(http.MethodPost, "/v1/users/login", "", login(uname, password))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var resp echoapi.LoginResponse
			decode(t, rec, &resp)
			require.NotEmpty(t, resp.Token)

			rec = a.do(http.MethodGet, "/v1/users/me", resp.Token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var me user.User
			decode(t, rec, &me)
			assert.Equal(t, a.admin.ID, me.ID)
			assert.Equal(t, a.school.ID, me.SchoolID)
		}
	})
}

func Test_userApi_query(t *testing.T) {
	a := setup(t)
	other := testutil.CreateSchool(t, a.schoolRepo, "Riverside College")
	testutil.CreateUser(t, a.usrRepo, other.ID, "Other Admin", "otheradmin", "admin@riverside.test", password, []string{core.RoleAdmin}, true)

	adminToken := a.token(t, a.admin)
	a.run(t, []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marshal(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/users", token: a.token(t, a.teacher),
			wantCode: http.StatusForbidden, wantData: marshal(t, httpErr{Error: "permission denied"}),
		},
		{name: "own school only", path: "/v1/users?ordering=name", token: adminToken, wantData: marshal(t, []user.User{a.admin, a.teacher})},
		{name: "by role", path: "/v1/users?role=teacher:", token: adminToken, wantData: marshal(t, []user.User{a.teacher})},
		{name: "search", path: "/v1/users?search=zzz", token: adminToken, wantData: []byte(`[]`)},
		{name: "roles", path: "/v1/users/roles", token: adminToken, wantData: marshal(t, user.Roles)},
	})
}

func Test_userApi_detail(t *testing.T) {
	a := setup(t)
	other := testutil.CreateSchool(t, a.schoolRepo, "Riverside College")
	stranger := testutil.CreateUser(t, a.usrRepo, other.ID, "Stranger", "stranger", "stranger@riverside.test", password, []string{core.RoleTeacher}, true)
	colleague := testutil.CreateUser(t, a.usrRepo, a.school.ID, "Colleague", "colleague", "colleague@greenfield.test", password, []string{core.RoleTeacher}, true)

	adminToken := a.token(t, a.admin)
	teacherToken := a.token(t, a.teacher)
	notFound := marshal(t, httpErr{Error: "not found"})
	forbidden := marshal(t, httpErr{Error: "permission denied"})

	a.run(t, []httpTest{
		{name: "self", path: "/v1/users/" + a.teacher.ID, token: teacherToken, wantData: marshal(t, a.teacher)},
		{name: "colleague as teacher", path: "/v1/users/" + colleague.ID, token: teacherToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "colleague as admin", path: "/v1/users/" + colleague.ID, token: adminToken, wantData: marshal(t, colleague)},
		{name: "other school", path: "/v1/users/" + stranger.ID, token: adminToken, wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "teacher cannot change roles", method: http.MethodPut, path: "/v1/users/" + a.teacher.ID, token: teacherToken,
			body: []byte(`{"roles": ["admin:owner"]}`), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "admin cannot grant higher roles", method: http.MethodPut, path: "/v1/users/" + colleague.ID, token: adminToken,
			body:     []byte(`{"roles": ["admin:owner"]}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"roles": "not enough rights to set these roles"}`),
		},
		{name: "cannot delete self", method: http.MethodDelete, path: "/v1/users/" + a.admin.ID, token: adminToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "delete other school", method: http.MethodDelete, path: "/v1/users/" + stranger.ID, token: adminToken, wantCode: http.StatusNotFound},
		{name: "delete colleague", method: http.MethodDelete, path: "/v1/users/" + colleague.ID, token: adminToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/users/" + colleague.ID, token: adminToken, wantCode: http.StatusNotFound},
	})

	_, err := a.usrRepo.GetUserByID(context.Background(), stranger.ID)
	assert.NoError(t, err)
}

func Test_userApi_create(t *testing.T) {
	a := setup(t)
	adminToken := a.token(t, a.admin)

	body := marshal(t, map[string]interface{}{
		"name":             "Amaka Eze",
		"username":         "amakaeze",
		"email":            "amaka@greenfield.test",
		"password":         "Gr33n-F1eld-Sch00l",
		"password_confirm": "Gr33n-F1eld-Sch00l",
		"roles":            []string{core.RoleTeacher},
	})
	rec := a.do(http.MethodPost, "/v1/users/register", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var usr user.User
	decode(t, rec, &usr)
	assert.Equal(t, a.school.ID, usr.SchoolID)
	assert.Equal(t, []string{core.RoleTeacher}, usr.Roles)

	rec = a.do(http.MethodPost, "/v1/users/register", adminToken, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, "/v1/users/register", a.token(t, a.teacher), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
