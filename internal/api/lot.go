package api

import (
	"context"
	"net/http"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

type createLotRequest struct {
	LotNumber       string     `json:"lot_number"`
	ProductName     string     `json:"product_name"`
	CustomerID      *int64     `json:"customer_id,omitempty"`
	Quantity        float64    `json:"quantity,omitempty"`
	Unit            string     `json:"unit,omitempty"`
	ManufactureDate *time.Time `json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

type updateLotRequest struct {
	ProductName     *string    `json:"product_name,omitempty"`
	CustomerID      *int64     `json:"customer_id,omitempty"`
	Quantity        *float64   `json:"quantity,omitempty"`
	Unit            *string    `json:"unit,omitempty"`
	ManufactureDate *time.Time `json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Reason          string     `json:"reason,omitempty"`
}

type reasonRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) createLot(w http.ResponseWriter, r *http.Request) {
	var req createLotRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.lots.Create(r.Context(), &domain.Lot{
		LotNumber:       req.LotNumber,
		ProductName:     req.ProductName,
		CustomerID:      req.CustomerID,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		ManufactureDate: req.ManufactureDate,
		ExpiryDate:      req.ExpiryDate,
		Notes:           req.Notes,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toLotJSON(created))
}

func (h *Handler) getLot(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	lot, err := h.lots.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toLotJSON(lot))
}

func (h *Handler) listLots(w http.ResponseWriter, r *http.Request) {
	filter := domain.LotFilter{Page: pageRequest(r)}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = &s
	}
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := parsePositiveInt(raw, "customer_id")
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.CustomerID = &id
	}
	lots, total, err := h.lots.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]lotJSON, 0, len(lots))
	for i := range lots {
		items = append(items, toLotJSON(&lots[i]))
	}
	h.writeJSON(w, http.StatusOK, newListResponse(items, total, filter.Page))
}

func (h *Handler) updateLot(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateLotRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.lots.Update(r.Context(), id, domain.LotUpdate{
		ProductName:     req.ProductName,
		CustomerID:      req.CustomerID,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		ManufactureDate: req.ManufactureDate,
		ExpiryDate:      req.ExpiryDate,
		Notes:           req.Notes,
	}, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toLotJSON(updated))
}

func (h *Handler) deleteLot(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.lots.Delete(r.Context(), id, r.URL.Query().Get("reason")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) approveLot(w http.ResponseWriter, r *http.Request) {
	h.transitionLot(w, r, h.lots.Approve)
}

func (h *Handler) rejectLot(w http.ResponseWriter, r *http.Request) {
	h.transitionLot(w, r, h.lots.Reject)
}

func (h *Handler) transitionLot(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64, reason string) (*domain.Lot, error)) {
	id, err := idParam(r, "lotID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req reasonRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	lot, err := fn(r.Context(), id, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toLotJSON(lot))
}
