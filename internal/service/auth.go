package service

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/taskboard-api/internal/auth"
	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type AuthService struct {
	users  repo.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repo.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	var fields []string
	if !emailRegex.MatchString(in.Email) {
		fields = append(fields, "email must be a valid address")
	}
	if len(in.Password) < 8 {
		fields = append(fields, "password must be at least 8 characters long")
	}
	if len(fields) > 0 {
		return model.User{}, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.Create(ctx, model.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         model.RoleMember,
	})
	if errors.Is(err, repo.ErrorConflict) {
		return model.User{}, ErrEmailTaken
	}
	return user, err
}

// Login сверяет пароль с хэшом и выпускает токен.
// Чужим не сообщаем, email не найден или пароль не подошел.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, model.User, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return "", model.User{}, ErrInvalidCredentials
		}
		return "", model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return "", model.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", model.User{}, err
	}
	return token, user, nil
}
