package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	echoapi "github.com/GausMx/Scoolynk-app-sub000/apps/api/echo"
	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
	"github.com/GausMx/Scoolynk-app-sub000/core/user"
	emailsvc "github.com/GausMx/Scoolynk-app-sub000/services/email"
	logsvc "github.com/GausMx/Scoolynk-app-sub000/services/logger"
	"github.com/GausMx/Scoolynk-app-sub000/services/metrics"
	"github.com/GausMx/Scoolynk-app-sub000/services/notify"
	pdfsvc "github.com/GausMx/Scoolynk-app-sub000/services/pdf"
	"github.com/GausMx/Scoolynk-app-sub000/storage"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are provided separately so services only depend on the store they use.
type Repositories struct {
	dig.Out
	Stores    *storage.Stores
	Users     user.Repository
	Schools   school.Repository
	Templates template.Repository
	Results   result.Repository
}

type ServerParams struct {
	dig.In
	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	UserSvc     user.ServiceInterface
	SchoolSvc   *school.Service
	TemplateSvc *template.Service
	ResultSvc   *result.Service
	Metrics     *metrics.Metrics
	Registry    *prometheus.Registry
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	stores, err := storage.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s database: %v", conf.Database.Engine, err), err)
	}
	return Repositories{
		Stores:    stores,
		Users:     stores.Users,
		Schools:   stores.Schools,
		Templates: stores.Templates,
		Results:   stores.Results,
	}
}

func newValidator(conf *core.Config) (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	template.InitValidators(validate, translator)
	user.InitValidators(validate, translator, conf)
	return validate, translator
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func newMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func newTemplateService(repo template.Repository, validate *validator.Validate, logger core.Logger, m *metrics.Metrics) *template.Service {
	return template.NewService(repo, validate, logger, m)
}

func newResultService(
	conf *core.Config,
	repo result.Repository,
	templates *template.Service,
	schools *school.Service,
	renderer result.Renderer,
	notifier core.Notifier,
	validate *validator.Validate,
	logger core.Logger,
	m *metrics.Metrics,
) *result.Service {
	return result.NewService(repo, templates, schools, renderer, notifier, validate, logger, m, result.Options{
		BatchConcurrency:    conf.Results.BatchConcurrency,
		NotificationTimeout: conf.Results.NotificationTimeout,
	})
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Deps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		UserSvc:     p.UserSvc,
		SchoolSvc:   p.SchoolSvc,
		TemplateSvc: p.TemplateSvc,
		ResultSvc:   p.ResultSvc,
		Metrics:     p.Metrics,
		Gatherer:    p.Registry,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newValidator))
	must(c.Provide(newEmailService))
	must(c.Provide(notify.NewEmailNotifier))
	must(c.Provide(pdfsvc.NewRenderer))
	must(c.Provide(newRegistry))
	must(c.Provide(newMetrics))
	must(c.Provide(user.NewService))
	must(c.Provide(school.NewService))
	must(c.Provide(newTemplateService))
	must(c.Provide(newResultService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
