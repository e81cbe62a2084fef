package policy

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

func TestCanActFor(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	tests := []struct {
		name    string
		actor   models.Actor
		target  uuid.UUID
		wantErr error
	}{
		{"self", models.Actor{UserID: self, Role: models.ClientRole}, self, nil},
		{"admin for other", models.Actor{UserID: self, Role: models.AdminRole}, other, nil},
		{"client for other", models.Actor{UserID: self, Role: models.ClientRole}, other, app_errors.ErrAccessDenied},
		{"anonymous", models.Actor{}, uuid.Nil, app_errors.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanActFor(tt.actor, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanActFor() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(models.Actor{Role: models.AdminRole}); err != nil {
		t.Errorf("RequireAdmin(admin) = %v", err)
	}
	if err := RequireAdmin(models.Actor{Role: models.ClientRole}); !errors.Is(err, app_errors.ErrAdminAccessRequired) {
		t.Errorf("RequireAdmin(client) = %v, want ErrAdminAccessRequired", err)
	}
}
