package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/calorieking/backend/internal/database"
	"github.com/calorieking/backend/internal/models"
)

// dummyHash is compared against when the username is unknown so that both
// failure paths do the same bcrypt work.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("calorie-king-placeholder"), bcrypt.DefaultCost)

type AuthService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewAuthService(db *gorm.DB, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		db:  db,
		log: log.WithField("component", "auth"),
	}
}

// MaxPasswordBytes is the longest password bcrypt will hash
const MaxPasswordBytes = 72

// Create registers a new user and returns its ID
func (s *AuthService) Create(ctx context.Context, username, password string) (uuid.UUID, error) {
	if len(password) > MaxPasswordBytes {
		return uuid.Nil, ErrPasswordTooLong
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return uuid.Nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent registration can still win the race to the unique index.
		if database.IsUniqueViolation(err) {
			return uuid.Nil, ErrUserExists
		}
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": username}).Info("User registered")
	return user.ID, nil
}

// Verify returns the user only when the password matches. Unknown usernames
// and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *AuthService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
