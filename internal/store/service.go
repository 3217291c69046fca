package store

import (
	"context"

	"clinic-scheduling-api/internal/model"
)

func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	var out []model.Service
	err := s.db.WithContext(ctx).Order("code").Find(&out).Error
	return out, err
}

func (s *Store) ServiceByCode(ctx context.Context, code string) (*model.Service, error) {
	svc := &model.Service{}
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(svc).Error; err != nil {
		return nil, notFound(err)
	}
	return svc, nil
}

func (s *Store) CreateService(ctx context.Context, svc *model.Service) error {
	return s.db.WithContext(ctx).Create(svc).Error
}
