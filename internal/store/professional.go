package store

import (
	"context"

	"clinic-scheduling-api/internal/model"
)

func (s *Store) ProfessionalByEmail(ctx context.Context, email string) (*model.Professional, error) {
	p := &model.Professional{}
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(p).Error; err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *Store) ProfessionalExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Professional{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (s *Store) ListProfessionals(ctx context.Context) ([]model.Professional, error) {
	var out []model.Professional
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// CreateProfessional expects Password to already be a bcrypt hash.
func (s *Store) CreateProfessional(ctx context.Context, p *model.Professional) error {
	return s.db.WithContext(ctx).Create(p).Error
}
