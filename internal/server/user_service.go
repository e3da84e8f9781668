package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gerfey/planit/internal/crypto"
	"github.com/gerfey/planit/internal/models"
	"github.com/gerfey/planit/internal/validation"
	"github.com/gerfey/planit/pkg/logger"
)

//go:generate mockgen -destination=mock_user_repository.go -package=server github.com/gerfey/planit/internal/server UserRepository

// ограничение колонки users.username VARCHAR(50)
const maxUsernameLength = 50

var (
	ErrUserAlreadyExists  = errors.New("пользователь уже существует")
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrInvalidUsername    = errors.New("имя пользователя пустое или длиннее 50 символов")
	ErrWeakPassword       = errors.New("пароль не соответствует требованиям")
)

// WeakPasswordError перечисляет нарушенные правила сложности пароля.
type WeakPasswordError struct {
	Rules []string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("%s: %s", ErrWeakPassword, strings.Join(e.Rules, "; "))
}

func (e *WeakPasswordError) Is(target error) bool {
	return target == ErrWeakPassword
}

type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type UserService struct {
	repo   UserRepository
	logger logger.Logger
}

func NewUserService(repo UserRepository, logger logger.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, ErrInvalidUsername
	}

	if result := validation.ValidatePassword(password); !result.Valid {
		return nil, &WeakPasswordError{Rules: result.Errors}
	}

	existingUser, err := s.repo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, username, hashedPassword)
	if err != nil {
		// параллельная регистрация с тем же именем
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	s.logger.Infof("Зарегистрирован пользователь %s (id=%d)", user.Username, user.ID)

	return user, nil
}

// Authenticate не различает неизвестное имя и неверный пароль.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			crypto.VerifyPassword(password, crypto.DummyHash)

			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !crypto.VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
