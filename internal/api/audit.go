package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/grbod/labtrack/internal/domain"
)

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{Page: pageRequest(r)}
	q := r.URL.Query()
	if v := q.Get("table"); v != "" {
		filter.TableName = &v
	}
	if v := q.Get("record_id"); v != "" {
		id, err := parsePositiveInt(v, "record_id")
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.RecordID = &id
	}
	if v := q.Get("username"); v != "" {
		filter.Username = &v
	}
	if v := q.Get("action"); v != "" {
		filter.Action = &v
	}

	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]auditEntryJSON, 0, len(entries))
	for i := range entries {
		items = append(items, toAuditEntryJSON(&entries[i]))
	}
	h.writeJSON(w, http.StatusOK, newListResponse(items, total, filter.Page))
}

// auditTrail serves both trail views for one record. The view query
// parameter selects detailed (default) or summary.
func (h *Handler) auditTrail(w http.ResponseWriter, r *http.Request) {
	table, recordID, err := trailTarget(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch view := r.URL.Query().Get("view"); view {
	case "", "detailed":
		rows, err := h.audit.DetailedTrail(r.Context(), table, recordID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"view": "detailed", "rows": rows})
	case "summary":
		rows, err := h.audit.SummaryTrail(r.Context(), table, recordID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"view": "summary", "rows": rows})
	default:
		h.writeError(w, r, domain.ErrValidation("unknown view %q, want detailed or summary", view))
	}
}

func (h *Handler) exportAudit(w http.ResponseWriter, r *http.Request) {
	table, recordID, err := trailTarget(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// Buffer the export so failures still produce a proper error status.
	var buf bytes.Buffer
	if err := h.audit.ExportCSV(r.Context(), table, recordID, &buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="audit-%s-%d.csv"`, table, recordID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func trailTarget(r *http.Request) (string, int64, error) {
	table := r.URL.Query().Get("table")
	if table == "" {
		return "", 0, domain.ErrValidation("table query parameter is required")
	}
	raw := r.URL.Query().Get("record_id")
	if raw == "" {
		return "", 0, domain.ErrValidation("record_id query parameter is required")
	}
	recordID, err := parsePositiveInt(raw, "record_id")
	if err != nil {
		return "", 0, err
	}
	return table, recordID, nil
}

type annotationRequest struct {
	Body string `json:"body"`
}

func (h *Handler) addAnnotation(w http.ResponseWriter, r *http.Request) {
	auditID, err := idParam(r, "auditID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req annotationRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.annotations.Add(r.Context(), auditID, req.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toAnnotationJSON(created))
}

func (h *Handler) listAnnotations(w http.ResponseWriter, r *http.Request) {
	auditID, err := idParam(r, "auditID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	annotations, err := h.annotations.ListForEntry(r.Context(), auditID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]annotationJSON, 0, len(annotations))
	for i := range annotations {
		items = append(items, toAnnotationJSON(&annotations[i]))
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}
