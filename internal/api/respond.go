package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/grbod/labtrack/internal/domain"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encode response failed", "error", err)
	}
}

// writeError maps domain error types onto HTTP statuses. Unknown errors
// become 500 with a generic message so internals never leak.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	message := err.Error()

	var nf *domain.NotFoundError
	var ve *domain.ValidationError
	var ce *domain.ConflictError
	var ad *domain.AccessDeniedError
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.As(err, &ce):
		status = http.StatusConflict
	case errors.As(err, &ad):
		status = http.StatusForbidden
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	h.writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrValidation("invalid %s %q", name, raw)
	}
	return id, nil
}

// parsePositiveInt parses a positive integer query value.
func parsePositiveInt(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrValidation("invalid %s %q", name, raw)
	}
	return id, nil
}

// pageRequest reads max_results and page_token query parameters.
func pageRequest(r *http.Request) domain.PageRequest {
	var page domain.PageRequest
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page.MaxResults = n
		}
	}
	page.PageToken = r.URL.Query().Get("page_token")
	return page
}

// listResponse is the common shape for paginated collections.
type listResponse struct {
	Items         interface{} `json:"items"`
	TotalCount    int64       `json:"total_count"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

func newListResponse(items interface{}, total int64, page domain.PageRequest) listResponse {
	return listResponse{
		Items:         items,
		TotalCount:    total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	}
}
