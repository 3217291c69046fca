package store

import (
	"context"

	"gorm.io/gorm/clause"

	"clinic-scheduling-api/internal/model"
)

func (s *Store) PatientByRUT(ctx context.Context, rut string) (*model.Patient, error) {
	p := &model.Patient{}
	if err := s.db.WithContext(ctx).Where("rut = ?", rut).First(p).Error; err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// CreatePatient inserts p unless its RUT already exists. Either way it returns
// the stored row, so concurrent first bookings of one RUT share a patient.
func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) (*model.Patient, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "rut"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return p, nil
	}
	return s.PatientByRUT(ctx, p.RUT)
}
