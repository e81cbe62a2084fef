// Package policy holds the role and ownership checks every operation runs
// against its actor.
package policy

import (
	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

// CanActFor allows admins, or the user acting on their own data.
func CanActFor(actor models.Actor, userID uuid.UUID) error {
	if actor.IsAdmin() || (actor.UserID != uuid.Nil && actor.UserID == userID) {
		return nil
	}
	return app_errors.ErrAccessDenied
}

func RequireAdmin(actor models.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return app_errors.ErrAdminAccessRequired
}
