package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"clinic-scheduling-api/internal/apperr"
	"clinic-scheduling-api/internal/booking"
	"clinic-scheduling-api/internal/timefmt"
)

// flexID accepts 3 and "3". Calendar front ends send select values as strings.
type flexID uint

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if len(b) > 1 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*f = flexID(v)
	return nil
}

type createAppointmentBody struct {
	ProfessionalID flexID `json:"professionalId"`
	RUT            string `json:"rut"`
	PatientName    string `json:"patientName"`
	PatientEmail   string `json:"patientEmail"`
	ServiceCode    string `json:"serviceCode"`
	StartTime      string `json:"startTime"`
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var b createAppointmentBody
	if err := decode(w, r, &b); err != nil {
		h.writeError(w, r, err)
		return
	}

	req := booking.Request{
		ProfessionalID: uint(b.ProfessionalID),
		RUT:            b.RUT,
		PatientName:    b.PatientName,
		PatientEmail:   b.PatientEmail,
		ServiceCode:    b.ServiceCode,
	}
	if strings.TrimSpace(b.StartTime) != "" {
		start, err := timefmt.Parse(b.StartTime, h.cfg.Location)
		if err != nil {
			h.writeError(w, r, apperr.Invalid("startTime is not a valid time"))
			return
		}
		req.StartTime = start
	}

	a, err := h.Booker.Book(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	profID, err := strconv.ParseUint(q.Get("professionalId"), 10, 32)
	if err != nil || profID == 0 {
		h.writeError(w, r, apperr.Invalid("professionalId must be a positive integer"))
		return
	}
	from, err := timefmt.Parse(q.Get("start"), h.cfg.Location)
	if err != nil {
		h.writeError(w, r, apperr.Invalid("start is not a valid time"))
		return
	}
	to, err := timefmt.ParseRangeEnd(q.Get("end"), h.cfg.Location)
	if err != nil {
		h.writeError(w, r, apperr.Invalid("end is not a valid time"))
		return
	}

	out, err := h.Booker.Agenda(r.Context(), uint(profID), from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

