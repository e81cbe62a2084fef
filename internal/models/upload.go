package models

import (
	"io"
	"strings"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
)

// MaxImageSize caps level images and profile pictures.
const MaxImageSize = 5 << 20

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type Registration struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

// Session is the result of a successful register or login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ValidateImage accepts image uploads up to MaxImageSize.
func (u Upload) ValidateImage() error {
	if !strings.HasPrefix(u.ContentType, "image/") {
		return app_errors.ErrNotImage
	}
	if u.Size <= 0 || u.Size > MaxImageSize {
		return app_errors.ErrFileSize
	}
	return nil
}
