package auth

import "context"

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	return s.Store.FindUserByEmail(ctx, email)
}

func (s *Service) FindUserByID(ctx context.Context, userID string) (AuthUser, error) {
	return s.Store.FindUserByID(ctx, userID)
}
