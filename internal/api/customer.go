package api

import (
	"net/http"

	"github.com/grbod/labtrack/internal/domain"
)

type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Reason  string `json:"reason,omitempty"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.customers.Create(r.Context(), &domain.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCustomerJSON(created))
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customerID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCustomerJSON(c))
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	customers, total, err := h.customers.List(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]customerJSON, 0, len(customers))
	for i := range customers {
		items = append(items, toCustomerJSON(&customers[i]))
	}
	h.writeJSON(w, http.StatusOK, newListResponse(items, total, page))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customerID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req customerRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.customers.Update(r.Context(), id, &domain.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCustomerJSON(updated))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customerID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.customers.Delete(r.Context(), id, r.URL.Query().Get("reason")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
