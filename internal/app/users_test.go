package app

import (
	"errors"
	"testing"

	"epaperadmin/pkg/domain"
)

func TestCreateUserHashesPassword(t *testing.T) {
	a, mem, _ := newTestApp(t)
	adminID := seedUser(t, mem, "root", "rootpass123", domain.RoleSuperAdmin, true)
	principal := domain.Principal{UserID: adminID, Username: "root", Role: domain.RoleSuperAdmin}

	user, err := a.CreateUser(principal, CreateUser{
		Username: "reporter",
		Password: "secret-pass",
		FullName: "A Reporter",
		Email:    "reporter@example.com",
		Role:     domain.RoleEditor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.PasswordHash == "secret-pass" || user.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}
	if user.CreatedBy != adminID {
		t.Fatalf("created_by = %d", user.CreatedBy)
	}
	if !user.IsActive {
		t.Fatal("new users start active")
	}

	if _, _, err := a.Login("reporter", "secret-pass"); err != nil {
		t.Fatalf("login as new user: %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	a, mem, _ := newTestApp(t)
	adminID := seedUser(t, mem, "root", "rootpass123", domain.RoleSuperAdmin, true)
	principal := domain.Principal{UserID: adminID}

	cases := []struct {
		name string
		cmd  CreateUser
	}{
		{"empty username", CreateUser{Password: "secret-pass", Role: domain.RoleEditor}},
		{"bad role", CreateUser{Username: "x", Password: "secret-pass", Role: domain.Role("owner")}},
		{"short password", CreateUser{Username: "x", Password: "short", Role: domain.RoleEditor}},
	}
	for _, tc := range cases {
		_, err := a.CreateUser(principal, tc.cmd)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: want ValidationError, got %v", tc.name, err)
		}
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	a, mem, _ := newTestApp(t)
	adminID := seedUser(t, mem, "root", "rootpass123", domain.RoleSuperAdmin, true)
	principal := domain.Principal{UserID: adminID}

	_, err := a.CreateUser(principal, CreateUser{Username: "root", Password: "secret-pass", Role: domain.RoleEditor})
	var perr *domain.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("want PersistenceError on duplicate username, got %v", err)
	}
}

func TestUpdateUserKeepsPasswordWhenBlank(t *testing.T) {
	a, mem, _ := newTestApp(t)
	id := seedUser(t, mem, "reporter", "secret-pass", domain.RoleEditor, true)

	_, err := a.UpdateUser(UpdateUser{
		ID:       id,
		Username: "reporter",
		FullName: "Renamed Reporter",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, _, err := a.Login("reporter", "secret-pass"); err != nil {
		t.Fatalf("old password no longer works: %v", err)
	}

	if _, err := a.UpdateUser(UpdateUser{ID: id, Username: "reporter", Role: domain.RoleAdmin, Password: "new-pass-123"}); err != nil {
		t.Fatalf("update with password: %v", err)
	}
	if _, _, err := a.Login("reporter", "new-pass-123"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestDeleteUserSelfGuard(t *testing.T) {
	a, mem, _ := newTestApp(t)
	adminID := seedUser(t, mem, "root", "rootpass123", domain.RoleSuperAdmin, true)
	otherID := seedUser(t, mem, "other", "otherpass123", domain.RoleEditor, true)
	principal := domain.Principal{UserID: adminID}

	err := a.DeleteUser(principal, adminID)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError on self delete, got %v", err)
	}
	if err := a.DeleteUser(principal, otherID); err != nil {
		t.Fatalf("delete other: %v", err)
	}
	if _, ok, _ := mem.GetUser(otherID); ok {
		t.Fatal("user still present")
	}
}

func TestToggleUserActive(t *testing.T) {
	a, mem, _ := newTestApp(t)
	adminID := seedUser(t, mem, "root", "rootpass123", domain.RoleSuperAdmin, true)
	otherID := seedUser(t, mem, "other", "otherpass123", domain.RoleEditor, true)
	principal := domain.Principal{UserID: adminID}

	if _, err := a.ToggleUserActive(principal, adminID); err == nil {
		t.Fatal("self deactivation accepted")
	}

	active, err := a.ToggleUserActive(principal, otherID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if active {
		t.Fatal("expected user to be deactivated")
	}
	if _, _, err := a.Login("other", "otherpass123"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("deactivated user could log in: %v", err)
	}

	active, err = a.ToggleUserActive(principal, otherID)
	if err != nil || !active {
		t.Fatalf("second toggle: active=%v err=%v", active, err)
	}
}

func TestUnlockUserOnLegacySchema(t *testing.T) {
	a, mem, _ := newTestApp(t)
	id := seedUser(t, mem, "legacy", "legacypass1", domain.RoleEditor, true)
	mem.RestrictUserColumns()

	if mem.UserColumns().Has("locked_until") {
		t.Fatal("restricted schema still reports lock column")
	}
	if err := a.UnlockUser(id); err != nil {
		t.Fatalf("unlock on schema without lock columns: %v", err)
	}
}
