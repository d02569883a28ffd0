package account

import (
	"context"
	"errors"

	"papertrade-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register creates a user holding the configured initial cash. Only a bcrypt hash of the password
// is stored.
func (s *Service) Register(ctx context.Context, username, password, confirmation string) (*domain.User, error) {
	if username == "" {
		return nil, domain.NewError(domain.ErrValidation, "must provide username")
	}
	if password == "" || confirmation == "" {
		return nil, domain.NewError(domain.ErrValidation, "must provide password and confirmation")
	}
	if password != confirmation {
		return nil, domain.NewError(domain.ErrValidation, "passwords do not match")
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.NewError(domain.ErrDuplicateUser, "username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username: username,
		Hash:     string(hash),
		Cash:     s.InitialCash,
	}
	if err := db.Create(u).Error; err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewError(domain.ErrDuplicateUser, "username already exists")
		}
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user when username and password match.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.NewError(domain.ErrAuth, "invalid username and/or password")
	}
	u, err := s.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewError(domain.ErrAuth, "invalid username and/or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)); err != nil {
		return nil, domain.NewError(domain.ErrAuth, "invalid username and/or password")
	}
	return u, nil
}
