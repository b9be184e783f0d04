package app

import (
	"context"
	"strings"
	"testing"

	"epaperadmin/pkg/domain"
)

func TestExecuteCreateCategory(t *testing.T) {
	a, _, _ := newTestApp(t)

	res := a.Execute(context.Background(), domain.Principal{}, PageCategories, map[string]string{
		"action": "create",
		"name":   "Sports",
	})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Message, "Sports") {
		t.Fatalf("message = %q", res.Message)
	}

	cats, _ := a.ListCategories()
	if len(cats) != 1 {
		t.Fatalf("list after execute = %+v", cats)
	}
}

func TestExecuteValidationMessagePassesThrough(t *testing.T) {
	a, _, _ := newTestApp(t)

	res := a.Execute(context.Background(), domain.Principal{}, PageCategories, map[string]string{
		"action": "create",
	})
	if res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "category name is required" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestExecuteUnknownAction(t *testing.T) {
	a, _, _ := newTestApp(t)

	res := a.Execute(context.Background(), domain.Principal{}, PageCategories, map[string]string{
		"action": "detonate",
	})
	if res.Success || res.Message != "Invalid action" {
		t.Fatalf("result = %+v", res)
	}
}

func TestExecuteNotFoundMessage(t *testing.T) {
	a, _, _ := newTestApp(t)

	res := a.Execute(context.Background(), domain.Principal{}, PageCategories, map[string]string{
		"action": "delete",
		"id":     "77",
	})
	if res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "category 77 not found" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestExecuteDuplicateHidesStorageDetail(t *testing.T) {
	a, _, _ := newTestApp(t)

	fields := map[string]string{"action": "create", "name": "Sports"}
	if res := a.Execute(context.Background(), domain.Principal{}, PageCategories, fields); !res.Success {
		t.Fatalf("first create: %+v", res)
	}
	res := a.Execute(context.Background(), domain.Principal{}, PageCategories, fields)
	if res.Success {
		t.Fatalf("duplicate accepted: %+v", res)
	}
	if strings.Contains(res.Message, "constraint") || strings.Contains(res.Message, "duplicate") {
		t.Fatalf("storage detail leaked: %q", res.Message)
	}
}

func TestExecuteEditionPublish(t *testing.T) {
	a, _, _ := newTestApp(t)
	ed := seedEdition(t, a, "Publish Me")

	res := a.Execute(context.Background(), domain.Principal{}, PageEditions, map[string]string{
		"action": "publish",
		"id":     formatID(ed.ID),
	})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	got, _, _ := a.GetEdition(ed.ID)
	if got.Status != domain.StatusPublished {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestExecuteBulkDeleteMessage(t *testing.T) {
	a, _, _ := newTestApp(t)
	ed := seedEdition(t, a, "Clip Host")
	clip, err := a.CreateClip(CreateClip{EditionID: ed.ID, Title: "c", FilePath: "clips/c.png"})
	if err != nil {
		t.Fatalf("create clip: %v", err)
	}

	res := a.Execute(context.Background(), domain.Principal{}, PageClips, map[string]string{
		"action": "bulk_delete",
		"ids":    formatID(clip.ID) + ",4040",
	})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "Deleted 1 of 2 clips" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestExecuteUserSelfDeleteGuard(t *testing.T) {
	a, mem, _ := newTestApp(t)
	adminID := seedUser(t, mem, "root", "rootpass123", domain.RoleSuperAdmin, true)
	principal := domain.Principal{UserID: adminID, Username: "root", Role: domain.RoleSuperAdmin}

	res := a.Execute(context.Background(), principal, PageUsers, map[string]string{
		"action": "delete",
		"id":     formatID(adminID),
	})
	if res.Success {
		t.Fatalf("self delete accepted: %+v", res)
	}
	if res.Message != "You cannot delete your own account" {
		t.Fatalf("message = %q", res.Message)
	}
	if _, ok, _ := mem.GetUser(adminID); !ok {
		t.Fatal("account was deleted")
	}
}
