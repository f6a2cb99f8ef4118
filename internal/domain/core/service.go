package core

import "context"

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	return s.store.ListUsers(ctx, filter)
}

func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *Service) CreateUser(ctx context.Context, name, email, passwordHash, role, department, position string) (*User, error) {
	return s.store.CreateUser(ctx, name, email, passwordHash, role, department, position)
}

func (s *Service) UpdateUser(ctx context.Context, userID string, update UserUpdate) (*User, error) {
	return s.store.UpdateUser(ctx, userID, update)
}
