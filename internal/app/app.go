// Package app provides application-level wiring for the LabTrack server.
package app

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/grbod/labtrack/internal/api"
	"github.com/grbod/labtrack/internal/config"
	"github.com/grbod/labtrack/internal/db/repository"
	"github.com/grbod/labtrack/internal/service"
	"github.com/grbod/labtrack/internal/service/retention"
)

// Deps holds the external dependencies that main() must provide:
// database handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups the service pointers the API handler needs.
type Services struct {
	Customers   *service.CustomerService
	Lots        *service.LotService
	TestResults *service.TestResultService
	COAs        *service.COAService
	Audit       *service.AuditService
	Annotations *service.AnnotationService
}

// App holds the fully-wired application.
type App struct {
	Services  Services
	Handler   *api.Handler
	Retention *retention.Scheduler
}

// New wires repositories and services from the provided deps and seeds
// the test-method catalog.
func New(ctx context.Context, deps Deps) (*App, error) {
	auditRepo := repository.NewAuditRepo(deps.WriteDB)
	// Trail reads go through the read pool; writes stay on the single
	// serialized write connection.
	auditReadRepo := repository.NewAuditRepo(deps.ReadDB)
	customerRepo := repository.NewCustomerRepo(deps.WriteDB)
	lotRepo := repository.NewLotRepo(deps.WriteDB)
	resultRepo := repository.NewTestResultRepo(deps.WriteDB)
	methodRepo := repository.NewTestMethodRepo(deps.WriteDB)
	coaRepo := repository.NewCOARepo(deps.WriteDB)
	annotationRepo := repository.NewAnnotationRepo(deps.WriteDB)

	lots := service.NewLotService(lotRepo, auditRepo, deps.Logger)
	svcs := Services{
		Customers:   service.NewCustomerService(customerRepo, auditRepo, deps.Logger),
		Lots:        lots,
		TestResults: service.NewTestResultService(resultRepo, methodRepo, lots, auditRepo, deps.Logger),
		COAs:        service.NewCOAService(coaRepo, resultRepo, lots, auditRepo, deps.Logger),
		Audit:       service.NewAuditService(auditReadRepo),
		Annotations: service.NewAnnotationService(annotationRepo, auditReadRepo),
	}

	if err := seedTestMethods(ctx, methodRepo, deps.Cfg.SeedCatalogPath, deps.Logger); err != nil {
		return nil, err
	}

	return &App{
		Services: svcs,
		Handler: api.NewHandler(
			svcs.Customers, svcs.Lots, svcs.TestResults,
			svcs.COAs, svcs.Audit, svcs.Annotations,
			deps.Logger,
		),
		Retention: retention.NewScheduler(auditRepo, deps.Cfg.RetentionDays, deps.Logger),
	}, nil
}
