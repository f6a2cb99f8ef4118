package requests

import (
	"context"
	"time"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, req Request) (*Request, error) {
	if err := NormalizeNew(&req); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, req)
}

func (s *Service) Get(ctx context.Context, requestID string) (*Request, error) {
	return s.store.GetByID(ctx, requestID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Request, int, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) UpdateStatus(ctx context.Context, requestID, status, adminResponse, adminID string, now time.Time) (*Request, error) {
	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := ApplyStatusUpdate(req, status, adminResponse, adminID, now); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, *req); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, requestID)
}

func (s *Service) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	return s.store.CountByStatus(ctx)
}
