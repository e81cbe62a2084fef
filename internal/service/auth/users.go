package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/internal/service/policy"
)

func (s *AuthService) User(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error) {
	if err := policy.CanActFor(actor, id); err != nil {
		return nil, err
	}
	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withPicture(ctx, user), nil
}

func (s *AuthService) ListUsers(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		s.withPicture(ctx, &users[i])
	}
	return users, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	if err := policy.CanActFor(actor, id); err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, app_errors.Invalid("name must not be empty")
		}
		upd.Name = &name
	}
	if upd.Email != nil {
		if _, err := mail.ParseAddress(*upd.Email); err != nil {
			return nil, app_errors.Invalid("email %q is not valid", *upd.Email)
		}
	}

	user, err := s.users.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return s.withPicture(ctx, user), nil
}

// UploadProfilePicture stores a new picture and removes the replaced one.
func (s *AuthService) UploadProfilePicture(ctx context.Context, actor models.Actor, id uuid.UUID, file models.Upload) (*models.User, error) {
	if err := policy.CanActFor(actor, id); err != nil {
		return nil, err
	}
	if err := file.ValidateImage(); err != nil {
		return nil, err
	}
	if _, err := s.users.UserByID(ctx, id); err != nil {
		return nil, err
	}

	key, err := s.pictures.Upload(ctx, id, file.Filename, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, app_errors.Storage(err)
	}

	previous, err := s.users.SetPicture(ctx, id, key)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	if previous != "" {
		s.removeObject(ctx, previous)
	}

	return s.User(ctx, actor, id)
}

func (s *AuthService) removeObject(ctx context.Context, key string) {
	if err := s.pictures.Delete(ctx, key); err != nil {
		s.log.ErrorErr("failed to delete profile picture", err, "object_key", key)
	}
}

func (s *AuthService) DeleteUser(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	if user.PictureObjectKey != "" {
		s.removeObject(ctx, user.PictureObjectKey)
	}
	s.log.Info("user deleted", "user_id", id, "by", actor.UserID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, actor models.Actor, id uuid.UUID, newPassword string) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hash)
}
