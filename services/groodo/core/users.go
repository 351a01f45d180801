package core

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
)

const minPasswordLen = 8

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, email, password, fullName string) (User, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, ErrUserInvalidArgs
	}
	if len(password) < minPasswordLen || fullName == "" || len(fullName) > maxTitleLen {
		return User{}, ErrUserInvalidArgs
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}

	return s.db.InsertUser(ctx, User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    s.now(),
	})
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrUserInvalidArgs
	}
	return s.db.GetUser(ctx, id)
}
