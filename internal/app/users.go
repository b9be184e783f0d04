package app

import (
	"time"

	"epaperadmin/pkg/auth"
	"epaperadmin/pkg/domain"
)

// CreateUser adds an admin account. The creator from the session
// principal is recorded when the schema carries that column.
func (a *App) CreateUser(principal domain.Principal, cmd CreateUser) (domain.AdminUser, error) {
	if cmd.Username == "" {
		return domain.AdminUser{}, domain.Validationf("username is required")
	}
	if !domain.ValidRole(cmd.Role) {
		return domain.AdminUser{}, domain.Validationf("invalid role %q", cmd.Role)
	}
	if err := auth.ValidatePassword(cmd.Password); err != nil {
		return domain.AdminUser{}, domain.Validationf("password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return domain.AdminUser{}, domain.Persistence("hash password", err)
	}
	now := time.Now().UTC()
	user := domain.AdminUser{
		Username:     cmd.Username,
		PasswordHash: hash,
		FullName:     cmd.FullName,
		Email:        cmd.Email,
		Role:         cmd.Role,
		IsActive:     true,
		Department:   cmd.Department,
		Phone:        cmd.Phone,
		CreatedBy:    principal.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := a.store.CreateUser(user)
	if err != nil {
		return domain.AdminUser{}, err
	}
	user.ID = id
	return user, nil
}

// UpdateUser rewrites an account's profile. An empty password keeps
// the current hash; a non-empty one is validated and rehashed.
func (a *App) UpdateUser(cmd UpdateUser) (domain.AdminUser, error) {
	existing, ok, err := a.store.GetUser(cmd.ID)
	if err != nil {
		return domain.AdminUser{}, err
	}
	if !ok {
		return domain.AdminUser{}, domain.NotFound("user", cmd.ID)
	}
	if cmd.Username == "" {
		return domain.AdminUser{}, domain.Validationf("username is required")
	}
	if !domain.ValidRole(cmd.Role) {
		return domain.AdminUser{}, domain.Validationf("invalid role %q", cmd.Role)
	}
	user := existing
	user.Username = cmd.Username
	user.FullName = cmd.FullName
	user.Email = cmd.Email
	user.Role = cmd.Role
	user.Department = cmd.Department
	user.Phone = cmd.Phone
	user.UpdatedAt = time.Now().UTC()
	if cmd.Password != "" {
		if err := auth.ValidatePassword(cmd.Password); err != nil {
			return domain.AdminUser{}, domain.Validationf("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(cmd.Password)
		if err != nil {
			return domain.AdminUser{}, domain.Persistence("hash password", err)
		}
		user.PasswordHash = hash
	}
	if err := a.store.UpdateUser(user); err != nil {
		return domain.AdminUser{}, err
	}
	return user, nil
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (a *App) DeleteUser(principal domain.Principal, id int64) error {
	if id == principal.UserID {
		return domain.Validationf("You cannot delete your own account")
	}
	return a.store.DeleteUser(id)
}

// ToggleUserActive flips an account's active flag. Admins cannot
// disable themselves.
func (a *App) ToggleUserActive(principal domain.Principal, id int64) (bool, error) {
	if id == principal.UserID {
		return false, domain.Validationf("You cannot deactivate your own account")
	}
	user, ok, err := a.store.GetUser(id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, domain.NotFound("user", id)
	}
	active := !user.IsActive
	if err := a.store.SetUserActive(id, active); err != nil {
		return false, err
	}
	return active, nil
}

// UnlockUser clears the failed-attempt counter and lock timestamp.
// On schemas without those columns this is a no-op.
func (a *App) UnlockUser(id int64) error {
	if _, ok, err := a.store.GetUser(id); err != nil {
		return err
	} else if !ok {
		return domain.NotFound("user", id)
	}
	return a.store.UnlockUser(id)
}

// ListUsers returns every admin account.
func (a *App) ListUsers() ([]domain.AdminUser, error) {
	return a.store.ListUsers()
}
