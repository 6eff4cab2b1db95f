package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	echoapi "github.com/GausMx/Scoolynk-app-sub000/apps/api/echo"
	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
	"github.com/GausMx/Scoolynk-app-sub000/core/user"
	emailsvc "github.com/GausMx/Scoolynk-app-sub000/services/email"
	"github.com/GausMx/Scoolynk-app-sub000/services/metrics"
	"github.com/GausMx/Scoolynk-app-sub000/services/notify"
	pdfsvc "github.com/GausMx/Scoolynk-app-sub000/services/pdf"
	inmemdb "github.com/GausMx/Scoolynk-app-sub000/storage/database/inmem"
	testutil "github.com/GausMx/Scoolynk-app-sub000/tests"
)

const (
	password = "Sch00l-Rep0rts!"
	session  = "2024/2025"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type app struct {
	server     *echoapi.Server
	conf       *core.Config
	usrRepo    user.Repository
	schoolRepo school.Repository
	school     school.School
	admin      user.User
	teacher    user.User
}

func setup(t *testing.T) *app {
	t.Helper()
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	validate, translator := testutil.NewValidator(conf)
	core.ParseEmailTemplates(conf, logger)

	// set up DB & repos
	db := inmemdb.Open()
	a := &app{
		conf:       conf,
		usrRepo:    inmemdb.NewUserRepository(db),
		schoolRepo: inmemdb.NewSchoolRepository(db),
	}
	a.school = testutil.CreateSchool(t, a.schoolRepo, "Greenfield Academy")
	a.admin = testutil.CreateUser(t, a.usrRepo, a.school.ID, "Ngozi Okafor", "principal", "principal@greenfield.test", password, []string{core.RoleAdminPrincipal}, true)
	a.teacher = testutil.CreateUser(t, a.usrRepo, a.school.ID, "Tunde Bello", "tbello", "tbello@greenfield.test", password, []string{core.RoleTeacher}, true)

	// set up services
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	schoolSvc := school.NewService(a.schoolRepo, validate)
	tmplSvc := template.NewService(inmemdb.NewTemplateRepository(db), validate, logger, m)
	resultSvc := result.NewService(
		inmemdb.NewResultRepository(db),
		tmplSvc,
		schoolSvc,
		pdfsvc.NewRenderer(),
		notify.NewEmailNotifier(mailSvc, logger),
		validate,
		logger,
		m,
		result.Options{BatchConcurrency: 2},
	)

	// set up server
	a.server = echoapi.NewServer(&echoapi.Deps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		UserSvc:     user.NewServiceMock(a.usrRepo, mailSvc, conf),
		SchoolSvc:   schoolSvc,
		TemplateSvc: tmplSvc,
		ResultSvc:   resultSvc,
		Metrics:     m,
		Gatherer:    registry,
	})
	return a
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (a *app) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

func (a *app) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			method := tc.method
			if method == "" {
				method = http.MethodGet
			}
			rec := a.do(method, tc.path, tc.token, tc.body)
			wantCode := tc.wantCode
			if wantCode == 0 {
				wantCode = http.StatusOK
			}
			require.Equal(t, wantCode, rec.Code, rec.Body.String())
			if tc.wantData != nil {
				require.JSONEq(t, string(tc.wantData), rec.Body.String())
			}
		})
	}
}

func (a *app) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(a.conf, echoapi.GetUserClaims(a.conf, usr))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

func marshal(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode(%s) failed: %v", rec.Body.String(), err)
	}
}
