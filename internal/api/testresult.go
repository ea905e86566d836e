package api

import (
	"net/http"
	"time"

	"github.com/grbod/labtrack/internal/domain"
	"github.com/grbod/labtrack/internal/service"
)

type testResultRequest struct {
	TestType    string     `json:"test_type"`
	ResultValue string     `json:"result_value,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Method      string     `json:"method,omitempty"`
	SpecMin     *float64   `json:"spec_min,omitempty"`
	SpecMax     *float64   `json:"spec_max,omitempty"`
	Analyst     string     `json:"analyst,omitempty"`
	TestedAt    *time.Time `json:"tested_at,omitempty"`
}

func (req testResultRequest) toInput() service.TestResultInput {
	return service.TestResultInput{
		TestType:    req.TestType,
		ResultValue: req.ResultValue,
		Unit:        req.Unit,
		Method:      req.Method,
		SpecMin:     req.SpecMin,
		SpecMax:     req.SpecMax,
		Analyst:     req.Analyst,
		TestedAt:    req.TestedAt,
	}
}

type updateTestResultRequest struct {
	ResultValue *string    `json:"result_value,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	Method      *string    `json:"method,omitempty"`
	SpecMin     *float64   `json:"spec_min,omitempty"`
	SpecMax     *float64   `json:"spec_max,omitempty"`
	Analyst     *string    `json:"analyst,omitempty"`
	TestedAt    *time.Time `json:"tested_at,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

func (h *Handler) createTestResult(w http.ResponseWriter, r *http.Request) {
	lotID, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req testResultRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.results.Create(r.Context(), lotID, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toTestResultJSON(created))
}

func (h *Handler) bulkImportTestResults(w http.ResponseWriter, r *http.Request) {
	lotID, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var reqs []testResultRequest
	if err := decode(r, &reqs); err != nil {
		h.writeError(w, r, err)
		return
	}
	inputs := make([]service.TestResultInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, req.toInput())
	}
	created, err := h.results.BulkImport(r.Context(), lotID, inputs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]testResultJSON, 0, len(created))
	for i := range created {
		items = append(items, toTestResultJSON(&created[i]))
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"items": items})
}

func (h *Handler) listTestResults(w http.ResponseWriter, r *http.Request) {
	lotID, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page := pageRequest(r)
	results, total, err := h.results.ListForLot(r.Context(), lotID, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]testResultJSON, 0, len(results))
	for i := range results {
		items = append(items, toTestResultJSON(&results[i]))
	}
	h.writeJSON(w, http.StatusOK, newListResponse(items, total, page))
}

func (h *Handler) getTestResult(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "testID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tr, err := h.results.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toTestResultJSON(tr))
}

func (h *Handler) updateTestResult(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "testID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateTestResultRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.results.Update(r.Context(), id, domain.TestResultUpdate{
		ResultValue: req.ResultValue,
		Unit:        req.Unit,
		Method:      req.Method,
		SpecMin:     req.SpecMin,
		SpecMax:     req.SpecMax,
		Analyst:     req.Analyst,
		TestedAt:    req.TestedAt,
	}, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toTestResultJSON(updated))
}

func (h *Handler) deleteTestResult(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "testID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.results.Delete(r.Context(), id, r.URL.Query().Get("reason")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
