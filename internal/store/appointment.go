package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"clinic-scheduling-api/internal/model"
)

type AppointmentFilter struct {
	ProfessionalID uint
	From, To       time.Time
}

// CreateAppointment inserts the appointment row. Attached Patient and Service
// values are not upserted.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

// ListAppointments returns confirmed appointments that lie entirely in [From, To].
func (s *Store) ListAppointments(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error) {
	var out []model.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient").
		Preload("Service").
		Where("professional_id = ? AND status = ?", f.ProfessionalID, model.StatusConfirmed).
		Where("start_time >= ? AND end_time <= ?", f.From, f.To).
		Order("start_time").
		Find(&out).Error
	return out, err
}
