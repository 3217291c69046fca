package handler

import (
	"net/http"

	"clinic-scheduling-api/internal/apperr"
	"clinic-scheduling-api/internal/model"
)

func (h *Handler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListProfessionals(r.Context())
	if err != nil {
		h.writeError(w, r, apperr.Internal("list professionals", err))
		return
	}
	if out == nil {
		out = []model.Professional{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListServices(r.Context())
	if err != nil {
		h.writeError(w, r, apperr.Internal("list services", err))
		return
	}
	if out == nil {
		out = []model.Service{}
	}
	writeJSON(w, http.StatusOK, out)
}
