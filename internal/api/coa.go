package api

import "net/http"

func (h *Handler) issueCOA(w http.ResponseWriter, r *http.Request) {
	lotID, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	coa, err := h.coas.Issue(r.Context(), lotID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCOAJSON(coa))
}

func (h *Handler) getLotCOA(w http.ResponseWriter, r *http.Request) {
	lotID, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	coa, err := h.coas.GetForLot(r.Context(), lotID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCOAJSON(coa))
}

func (h *Handler) getCOA(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "coaID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	coa, err := h.coas.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCOAJSON(coa))
}

func (h *Handler) listCOAs(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	coas, total, err := h.coas.List(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]coaJSON, 0, len(coas))
	for i := range coas {
		items = append(items, toCOAJSON(&coas[i]))
	}
	h.writeJSON(w, http.StatusOK, newListResponse(items, total, page))
}
