package auth

import (
	"context"
	"io"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72
)

type UserRepo interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error)
	SetPicture(ctx context.Context, id uuid.UUID, objectKey string) (string, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type ImageStorage interface {
	Upload(ctx context.Context, ownerID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, objectKey string) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

type AuthService struct {
	log        logger.Log
	jwtManager *JWTManager
	users      UserRepo
	pictures   ImageStorage
}

func NewAuthService(l logger.Log, manager *JWTManager, users UserRepo, pictures ImageStorage) *AuthService {
	return &AuthService{
		log:        l,
		jwtManager: manager,
		users:      users,
		pictures:   pictures,
	}
}

// Register creates a client account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (*models.Session, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Name == "" {
		return nil, app_errors.Invalid("name is required")
	}
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return nil, app_errors.Invalid("email %q is not valid", reg.Email)
	}

	hash, err := hashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Name:     reg.Name,
		Email:    reg.Email,
		Password: hash,
		Phone:    reg.Phone,
		Role:     models.ClientRole,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.session(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.users.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	if !checkPasswordHash(password, user.Password) {
		return nil, app_errors.ErrInvalidCredentials
	}
	return s.session(ctx, user)
}

func (s *AuthService) session(ctx context.Context, user *models.User) (*models.Session, error) {
	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &models.Session{Token: token, User: *s.withPicture(ctx, user)}, nil
}

// Actor resolves an access token to the caller it was issued for.
func (s *AuthService) Actor(ctx context.Context, token string) (models.Actor, error) {
	claims, err := s.jwtManager.AccessClaims(token)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return "", app_errors.ErrInvalidPassword
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// withPicture fills the presigned picture URL. A storage failure only drops the URL.
func (s *AuthService) withPicture(ctx context.Context, user *models.User) *models.User {
	if user.PictureObjectKey == "" || s.pictures == nil {
		return user
	}
	url, err := s.pictures.URL(ctx, user.PictureObjectKey)
	if err != nil {
		s.log.ErrorErr("failed to presign profile picture", err, "user_id", user.ID)
		return user
	}
	user.PictureURL = url
	return user
}
