// Package api exposes the LabTrack REST surface over chi.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grbod/labtrack/internal/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	customers   *service.CustomerService
	lots        *service.LotService
	results     *service.TestResultService
	coas        *service.COAService
	audit       *service.AuditService
	annotations *service.AnnotationService
	logger      *slog.Logger
}

func NewHandler(
	customers *service.CustomerService,
	lots *service.LotService,
	results *service.TestResultService,
	coas *service.COAService,
	audit *service.AuditService,
	annotations *service.AnnotationService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		customers:   customers,
		lots:        lots,
		results:     results,
		coas:        coas,
		audit:       audit,
		annotations: annotations,
		logger:      logger,
	}
}

// Routes mounts every resource under the given router. Authentication is
// applied by the caller so tests can exercise handlers directly.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Get("/{customerID}", h.getCustomer)
		r.Put("/{customerID}", h.updateCustomer)
		r.Delete("/{customerID}", h.deleteCustomer)
	})

	r.Route("/lots", func(r chi.Router) {
		r.Get("/", h.listLots)
		r.Post("/", h.createLot)
		r.Get("/{lotID}", h.getLot)
		r.Patch("/{lotID}", h.updateLot)
		r.Delete("/{lotID}", h.deleteLot)
		r.Post("/{lotID}/approve", h.approveLot)
		r.Post("/{lotID}/reject", h.rejectLot)
		r.Get("/{lotID}/tests", h.listTestResults)
		r.Post("/{lotID}/tests", h.createTestResult)
		r.Post("/{lotID}/tests/bulk", h.bulkImportTestResults)
		r.Get("/{lotID}/coa", h.getLotCOA)
		r.Post("/{lotID}/coa", h.issueCOA)
	})

	r.Route("/tests", func(r chi.Router) {
		r.Get("/{testID}", h.getTestResult)
		r.Patch("/{testID}", h.updateTestResult)
		r.Delete("/{testID}", h.deleteTestResult)
	})

	r.Route("/coas", func(r chi.Router) {
		r.Get("/", h.listCOAs)
		r.Get("/{coaID}", h.getCOA)
	})

	r.Route("/audit", func(r chi.Router) {
		r.Get("/", h.listAudit)
		r.Get("/trail", h.auditTrail)
		r.Get("/export", h.exportAudit)
		r.Get("/{auditID}/annotations", h.listAnnotations)
		r.Post("/{auditID}/annotations", h.addAnnotation)
	})
}

// Healthz reports liveness. Mounted outside the authenticated subtree.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
