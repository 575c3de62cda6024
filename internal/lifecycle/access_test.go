package lifecycle

import (
	"errors"
	"testing"

	"github.com/iliyamo/civic-service-desk/internal/model"
)

func TestCanReadRequest(t *testing.T) {
	owner := model.Identity{UserID: 1, Role: model.RoleCitizen}
	other := model.Identity{UserID: 2, Role: model.RoleCitizen}
	admin := model.Identity{UserID: 3, Role: model.RoleAdmin}
	sr := model.ServiceRequest{ID: 10, UserID: 1}

	if !CanReadRequest(owner, sr) {
		t.Error("owner denied read of own request")
	}
	if CanReadRequest(other, sr) {
		t.Error("non-owner citizen allowed to read another citizen's request")
	}
	if !CanReadRequest(admin, sr) {
		t.Error("admin denied read")
	}
}

func TestCanMutateStatus(t *testing.T) {
	owner := model.Identity{UserID: 1, Role: model.RoleCitizen}
	admin := model.Identity{UserID: 3, Role: model.RoleAdmin}

	// Ownership never grants status-mutation rights.
	if CanMutateStatus(owner) {
		t.Error("citizen allowed to mutate status")
	}
	if !CanMutateStatus(admin) {
		t.Error("admin denied status mutation")
	}
}

func TestRequireRole(t *testing.T) {
	if err := RequireRole(model.Identity{}, model.RoleAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("zero identity: err = %v, want ErrUnauthorized", err)
	}
	citizen := model.Identity{UserID: 1, Role: model.RoleCitizen}
	if err := RequireRole(citizen, model.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Errorf("citizen vs admin: err = %v, want ErrForbidden", err)
	}
	admin := model.Identity{UserID: 2, Role: model.RoleAdmin}
	if err := RequireRole(admin, model.RoleAdmin); err != nil {
		t.Errorf("admin vs admin: err = %v, want nil", err)
	}
}
