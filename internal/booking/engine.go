// Package booking creates appointments and answers agenda queries.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"clinic-scheduling-api/internal/apperr"
	"clinic-scheduling-api/internal/metrics"
	"clinic-scheduling-api/internal/model"
	"clinic-scheduling-api/internal/store"
)

type Store interface {
	ProfessionalExists(ctx context.Context, id uint) (bool, error)
	ServiceByCode(ctx context.Context, code string) (*model.Service, error)
	PatientByRUT(ctx context.Context, rut string) (*model.Patient, error)
	CreatePatient(ctx context.Context, p *model.Patient) (*model.Patient, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error)
}

type ConferenceRequest struct {
	Summary       string
	Description   string
	Start, End    time.Time
	AttendeeEmail string
}

type Conference struct {
	Link    string
	EventID string
}

// Conferencer creates a video conference for an appointment and removes it
// again when the appointment could not be stored.
type Conferencer interface {
	CreateConference(ctx context.Context, req ConferenceRequest) (*Conference, error)
	CancelConference(ctx context.Context, eventID string) error
}

type Request struct {
	ProfessionalID uint      `json:"professionalId" validate:"gt=0"`
	RUT            string    `json:"rut" validate:"required,rut"`
	PatientName    string    `json:"patientName" validate:"max=200"`
	PatientEmail   string    `json:"patientEmail" validate:"omitempty,email"`
	ServiceCode    string    `json:"serviceCode" validate:"required"`
	StartTime      time.Time `json:"startTime"`
}

type Engine struct {
	store       Store
	conf        Conferencer
	confTimeout time.Duration
	validate    *validator.Validate
	log         *zap.Logger
	metrics     *metrics.Metrics
}

type Option func(*Engine)

// WithConferencer enables conference creation for telemedicine bookings.
func WithConferencer(c Conferencer, timeout time.Duration) Option {
	return func(e *Engine) {
		e.conf = c
		e.confTimeout = timeout
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func New(st Store, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		confTimeout: 10 * time.Second,
		validate:    newValidator(),
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Book validates req and persists a confirmed appointment. Overlapping
// appointments for the same professional are not rejected.
func (e *Engine) Book(ctx context.Context, req Request) (*model.Appointment, error) {
	a, err := e.book(ctx, req)
	e.metrics.ObserveBooking(outcome(err))
	return a, err
}

func (e *Engine) book(ctx context.Context, req Request) (*model.Appointment, error) {
	req.RUT = strings.TrimSpace(req.RUT)
	req.ServiceCode = strings.TrimSpace(req.ServiceCode)
	req.PatientName = strings.TrimSpace(req.PatientName)
	req.PatientEmail = strings.TrimSpace(req.PatientEmail)

	if err := e.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.StartTime.IsZero() {
		return nil, apperr.Invalid("startTime is required")
	}
	rut, err := model.NormalizeRUT(req.RUT)
	if err != nil {
		return nil, apperr.Invalid("rut is not a valid RUT")
	}

	ok, err := e.store.ProfessionalExists(ctx, req.ProfessionalID)
	if err != nil {
		return nil, apperr.Internal("check professional", err)
	}
	if !ok {
		return nil, apperr.UnknownReference("unknown professional")
	}

	svc, err := e.store.ServiceByCode(ctx, req.ServiceCode)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.UnknownReference(fmt.Sprintf("unknown service %q", req.ServiceCode))
	}
	if err != nil {
		return nil, apperr.Internal("load service", err)
	}

	patient, err := e.resolvePatient(ctx, rut, req)
	if err != nil {
		return nil, err
	}

	start := req.StartTime
	a := &model.Appointment{
		StartTime:      start,
		EndTime:        start.Add(svc.Duration()),
		ProfessionalID: req.ProfessionalID,
		PatientID:      patient.ID,
		ServiceID:      svc.ID,
		Status:         model.StatusConfirmed,
	}

	if svc.Telemedicine() {
		if c := e.conference(ctx, a, patient, svc); c != nil {
			a.MeetLink = &c.Link
			a.GoogleEventID = &c.EventID
		}
	}

	if err := e.store.CreateAppointment(ctx, a); err != nil {
		if a.GoogleEventID != nil {
			e.cancelConference(ctx, *a.GoogleEventID)
		}
		return nil, apperr.Internal("insert appointment", err)
	}
	a.Patient = patient
	a.Service = svc

	e.log.Info("appointment booked",
		zap.Uint("appointment_id", a.ID),
		zap.Uint("professional_id", a.ProfessionalID),
		zap.String("service", svc.Code),
		zap.Time("start", a.StartTime),
		zap.Bool("meet_link", a.MeetLink != nil),
	)
	return a, nil
}

// resolvePatient reuses the patient registered under rut or creates one.
func (e *Engine) resolvePatient(ctx context.Context, rut string, req Request) (*model.Patient, error) {
	p, err := e.store.PatientByRUT(ctx, rut)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("load patient", err)
	}
	if req.PatientName == "" {
		return nil, apperr.Invalid("patientName is required for a new patient")
	}
	p, err = e.store.CreatePatient(ctx, &model.Patient{RUT: rut, Name: req.PatientName, Email: req.PatientEmail})
	if err != nil {
		return nil, apperr.Internal("create patient", err)
	}
	return p, nil
}

// conference never fails the booking. It returns nil when no link was made.
func (e *Engine) conference(ctx context.Context, a *model.Appointment, p *model.Patient, svc *model.Service) *Conference {
	if e.conf == nil {
		e.log.Warn("telemedicine booking without calendar client", zap.String("service", svc.Code))
		e.metrics.ObserveConference("skipped")
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, e.confTimeout)
	defer cancel()

	c, err := e.conf.CreateConference(cctx, ConferenceRequest{
		Summary:       fmt.Sprintf("%s - %s", p.Name, svc.Name),
		Description:   fmt.Sprintf("Paciente RUT %s. Servicio %s.", p.RUT, svc.Code),
		Start:         a.StartTime,
		End:           a.EndTime,
		AttendeeEmail: p.Email,
	})
	if err != nil {
		e.log.Error("conference creation failed", zap.Error(err), zap.String("service", svc.Code))
		e.metrics.ObserveConference("failed")
		return nil
	}
	if c == nil || c.Link == "" {
		e.log.Warn("calendar returned no conference link", zap.String("service", svc.Code))
		e.metrics.ObserveConference("failed")
		return nil
	}
	e.metrics.ObserveConference("created")
	return c
}

// Agenda lists the confirmed appointments of a professional in [from, to].
func (e *Engine) Agenda(ctx context.Context, professionalID uint, from, to time.Time) ([]model.Appointment, error) {
	if professionalID == 0 {
		return nil, apperr.Invalid("professionalId is required")
	}
	if from.IsZero() || to.IsZero() {
		return nil, apperr.Invalid("start and end are required")
	}
	if to.Before(from) {
		return nil, apperr.Invalid("end must not be before start")
	}
	out, err := e.store.ListAppointments(ctx, store.AppointmentFilter{ProfessionalID: professionalID, From: from, To: to})
	if err != nil {
		return nil, apperr.Internal("list appointments", err)
	}
	if out == nil {
		out = []model.Appointment{}
	}
	return out, nil
}

func outcome(err error) string {
	if err == nil {
		return "created"
	}
	return apperr.KindOf(err).String()
}

// cancelConference deletes the event of an appointment that was not stored.
// It runs even if the request context is already cancelled.
func (e *Engine) cancelConference(ctx context.Context, eventID string) {
	if eventID == "" {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.confTimeout)
	defer cancel()
	if err := e.conf.CancelConference(cctx, eventID); err != nil {
		e.log.Error("orphaned conference not removed", zap.Error(err), zap.String("event_id", eventID))
		e.metrics.ObserveConference("orphaned")
		return
	}
	e.metrics.ObserveConference("cancelled")
}
