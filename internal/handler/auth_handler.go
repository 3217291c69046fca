package handler

import (
	"net/http"

	"clinic-scheduling-api/internal/apperr"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var b loginBody
	if err := decode(w, r, &b); err != nil {
		h.writeError(w, r, err)
		return
	}

	sess, err := h.Auth.Login(r.Context(), b.Email, b.Password)
	if err != nil {
		h.cfg.Metrics.ObserveLogin(apperr.KindOf(err).String())
		h.writeError(w, r, err)
		return
	}
	h.cfg.Metrics.ObserveLogin("ok")
	writeJSON(w, http.StatusOK, sess)
}
