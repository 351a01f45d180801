package core

import (
	"context"
	"time"
)

type Service struct {
	db     DB
	clock  Clock
	hasher PasswordHasher
	tokens TokenIssuer
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

func WithTokenIssuer(t TokenIssuer) Option {
	return func(s *Service) { s.tokens = t }
}

func NewService(db DB, opts ...Option) *Service {
	s := &Service{
		db:    db,
		clock: ClockFunc(func() time.Time { return time.Now().UTC() }),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}
