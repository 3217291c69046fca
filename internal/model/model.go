package model

import (
	"strings"
	"time"
)

const StatusConfirmed = "confirmed"

type Professional struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Color     string    `json:"color" gorm:"default:'#3788d8'"`
	CreatedAt time.Time `json:"createdAt"`
}

type Patient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RUT       string    `json:"rut" gorm:"column:rut;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Code        string `json:"code" gorm:"uniqueIndex;not null"`
	Name        string `json:"name" gorm:"not null"`
	DurationMin int    `json:"durationMin" gorm:"not null"`
	IsTelemed   bool   `json:"isTelemed" gorm:"not null;default:false"`
}

// Telemedicine is true when the service is flagged, or named, as remote care.
func (s *Service) Telemedicine() bool {
	if s.IsTelemed {
		return true
	}
	name := strings.ToLower(s.Name)
	return strings.Contains(name, "telemedicina") || strings.Contains(name, "telemedicine")
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

type Appointment struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	StartTime      time.Time `json:"startTime" gorm:"not null;index"`
	EndTime        time.Time `json:"endTime" gorm:"not null"`
	ProfessionalID uint      `json:"professionalId" gorm:"not null;index"`
	PatientID      uint      `json:"patientId" gorm:"not null;index"`
	ServiceID      uint      `json:"serviceId" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;default:'confirmed';index"`
	MeetLink       *string   `json:"meetLink"`
	GoogleEventID  *string   `json:"googleEventId"`
	CreatedAt      time.Time `json:"createdAt"`

	Professional *Professional `json:"-"`
	Patient      *Patient      `json:"patient,omitempty"`
	Service      *Service      `json:"service,omitempty"`
}
