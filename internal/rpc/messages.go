package rpc

import (
	"time"

	"clinic-scheduling-api/internal/auth"
	"clinic-scheduling-api/internal/model"
)

type Empty struct{}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      auth.User `json:"user"`
}

type ListProfessionalsResponse struct {
	Professionals []model.Professional `json:"professionals"`
}

type ListServicesResponse struct {
	Services []model.Service `json:"services"`
}

// Times are strings in any layout accepted by the REST API.
type ListAppointmentsRequest struct {
	ProfessionalID uint   `json:"professionalId"`
	Start          string `json:"start"`
	End            string `json:"end"`
}

type ListAppointmentsResponse struct {
	Appointments []model.Appointment `json:"appointments"`
}

type CreateAppointmentRequest struct {
	ProfessionalID uint   `json:"professionalId"`
	RUT            string `json:"rut"`
	PatientName    string `json:"patientName"`
	PatientEmail   string `json:"patientEmail"`
	ServiceCode    string `json:"serviceCode"`
	StartTime      string `json:"startTime"`
}

type CreateAppointmentResponse struct {
	Appointment *model.Appointment `json:"appointment"`
}
