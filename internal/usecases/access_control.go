package usecases

import (
	"context"

	"go.uber.org/zap"

	"bridge-gate.backend/internal/domain/entities"
	domainerrors "bridge-gate.backend/internal/domain/errors"
	"bridge-gate.backend/internal/domain/repositories"
	"bridge-gate.backend/pkg/crosschain"
	"bridge-gate.backend/pkg/logger"
)

// AccessControl is the capability check run at the top of every role-gated operation
type AccessControl struct {
	roleRepo repositories.RoleRepository
}

// NewAccessControl creates a role checker
func NewAccessControl(roleRepo repositories.RoleRepository) *AccessControl {
	return &AccessControl{roleRepo: roleRepo}
}

var roleErrors = map[entities.Role]error{
	entities.RoleAdmin:          domainerrors.ErrAdminBadRole,
	entities.RoleDefiController: domainerrors.ErrDefiControllerBadRole,
}

// Require fails with the role's authorization error unless caller holds role
func (a *AccessControl) Require(ctx context.Context, caller crosschain.Address, role entities.Role) error {
	if caller.IsEmpty() {
		return roleErrors[role]
	}
	ok, err := a.roleRepo.HasRole(ctx, caller, role)
	if err != nil {
		return err
	}
	if !ok {
		return roleErrors[role]
	}
	return nil
}

// HasRole reports whether addr holds role
func (a *AccessControl) HasRole(ctx context.Context, addr crosschain.Address, role entities.Role) (bool, error) {
	return a.roleRepo.HasRole(ctx, addr, role)
}

// Roles lists the roles addr holds
func (a *AccessControl) Roles(ctx context.Context, addr crosschain.Address) ([]entities.Role, error) {
	var out []entities.Role
	for _, role := range []entities.Role{entities.RoleAdmin, entities.RoleDefiController} {
		ok, err := a.roleRepo.HasRole(ctx, addr, role)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, role)
		}
	}
	return out, nil
}

// BootstrapAdmin grants the admin role to addr when no admin exists yet
func (a *AccessControl) BootstrapAdmin(ctx context.Context, addr crosschain.Address) error {
	if addr.IsEmpty() {
		return nil
	}
	admins, err := a.roleRepo.ListByRole(ctx, entities.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return nil
	}
	logger.Info(ctx, "Bootstrapping gate admin", zap.String("address", addr.String()))
	return a.roleRepo.Grant(ctx, addr, entities.RoleAdmin)
}
