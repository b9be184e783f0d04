package store

import (
	"errors"
	"testing"
	"time"

	"epaperadmin/pkg/domain"
)

func TestMemoryStoreCategoryUniqueSlug(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.CreateCategory(domain.Category{Name: "Sports", Slug: "sports"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := m.CreateCategory(domain.Category{Name: "SPORTS", Slug: "sports"})
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError for duplicate slug, got %v", err)
	}
}

func TestMemoryStoreCategoriesOrderedByName(t *testing.T) {
	m := NewMemoryStore()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if _, err := m.CreateCategory(domain.Category{Name: name, Slug: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	list, err := m.ListCategories()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Alpha" || list[2].Name != "Zeta" {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestMemoryStoreDeleteAbsentIsNotFound(t *testing.T) {
	m := NewMemoryStore()
	var nf *domain.NotFoundError
	if err := m.DeleteCategory(99); !errors.As(err, &nf) {
		t.Fatalf("delete category: expected NotFoundError, got %v", err)
	}
	if err := m.DeleteEdition(99); !errors.As(err, &nf) {
		t.Fatalf("delete edition: expected NotFoundError, got %v", err)
	}
	if err := m.DeleteClip(99); !errors.As(err, &nf) {
		t.Fatalf("delete clip: expected NotFoundError, got %v", err)
	}
	if err := m.DeleteUser(99); !errors.As(err, &nf) {
		t.Fatalf("delete user: expected NotFoundError, got %v", err)
	}
}

func TestMemoryStoreEditionCascadeDelete(t *testing.T) {
	m := NewMemoryStore()
	editionID, err := m.CreateEdition(domain.Edition{Title: "Day One", Slug: "day-one", Status: domain.StatusDraft})
	if err != nil {
		t.Fatalf("create edition: %v", err)
	}
	if _, err := m.CreateClip(domain.Clip{EditionID: editionID, Title: "c1", FilePath: "clips/c1.jpg"}); err != nil {
		t.Fatalf("create clip: %v", err)
	}
	if err := m.SetEditionCategories(editionID, []int64{1, 2}); err != nil {
		t.Fatalf("set categories: %v", err)
	}
	if err := m.DeleteEdition(editionID); err != nil {
		t.Fatalf("delete edition: %v", err)
	}
	clips, _ := m.ListClipsByEdition(editionID)
	if len(clips) != 0 {
		t.Fatalf("clips must cascade, got %d", len(clips))
	}
}

func TestMemoryStoreEditionViewsMonotonic(t *testing.T) {
	m := NewMemoryStore()
	id, _ := m.CreateEdition(domain.Edition{Title: "E", Slug: "e", Status: domain.StatusPublished})
	for i := 0; i < 3; i++ {
		if err := m.IncrementEditionViews(id); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	e, ok, _ := m.GetEdition(id)
	if !ok || e.Views != 3 {
		t.Fatalf("views = %d, want 3", e.Views)
	}
}

func TestMemoryStoreEditionListFilterAndOrder(t *testing.T) {
	m := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, slug := range []string{"a", "b", "c"} {
		status := domain.StatusPublished
		if slug == "b" {
			status = domain.StatusDraft
		}
		if _, err := m.CreateEdition(domain.Edition{
			Title:     slug,
			Slug:      slug,
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	published, err := m.ListEditions(EditionFilter{Status: domain.StatusPublished})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(published) != 2 || published[0].Slug != "c" || published[1].Slug != "a" {
		t.Fatalf("unexpected filter/order result: %+v", published)
	}
}

func TestMemoryStoreBulkDeleteClipsReportsAffected(t *testing.T) {
	m := NewMemoryStore()
	id1, _ := m.CreateClip(domain.Clip{EditionID: 1, Title: "a", FilePath: "a.jpg"})
	id2, _ := m.CreateClip(domain.Clip{EditionID: 1, Title: "b", FilePath: "b.jpg"})
	affected, err := m.DeleteClips([]int64{id1, id2, 9999})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if affected != 2 {
		t.Fatalf("affected = %d, want 2", affected)
	}
}

func TestMemoryStoreSettingsSaveAndDelete(t *testing.T) {
	m := NewMemoryStore()
	if err := m.SaveSettings([]domain.Setting{{Key: "site_title", Value: "X", Type: domain.SettingString}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	rows, _ := m.ListSettings()
	if len(rows) != 1 || rows[0].Value != "X" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if err := m.DeleteSettings([]string{"site_title"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, _ = m.ListSettings()
	if len(rows) != 0 {
		t.Fatalf("expected empty settings after delete, got %+v", rows)
	}
}

func TestMemoryStoreUserUniqueUsernameAndEmail(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.CreateUser(domain.AdminUser{Username: "ed", Email: "ed@example.com", Role: domain.RoleEditor}); err != nil {
		t.Fatalf("create: %v", err)
	}
	var pe *domain.PersistenceError
	if _, err := m.CreateUser(domain.AdminUser{Username: "ed", Email: "other@example.com"}); !errors.As(err, &pe) {
		t.Fatalf("duplicate username: expected PersistenceError, got %v", err)
	}
	if _, err := m.CreateUser(domain.AdminUser{Username: "other", Email: "ed@example.com"}); !errors.As(err, &pe) {
		t.Fatalf("duplicate email: expected PersistenceError, got %v", err)
	}
}

func TestMemoryStoreRestrictedUserColumnsDropOptionalFields(t *testing.T) {
	m := NewMemoryStore()
	m.RestrictUserColumns() // core schema only
	id, err := m.CreateUser(domain.AdminUser{
		Username:   "ed",
		Email:      "ed@example.com",
		Role:       domain.RoleEditor,
		Department: "newsroom",
		Phone:      "555",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	u, ok, _ := m.GetUser(id)
	if !ok {
		t.Fatalf("user missing")
	}
	if u.Department != "" || u.Phone != "" {
		t.Fatalf("optional fields must be dropped on a core-only schema: %+v", u)
	}
	if m.UserColumns().Has("department") {
		t.Fatalf("column set must not contain department")
	}
}

func TestMemoryStoreUnlockUser(t *testing.T) {
	m := NewMemoryStore()
	locked := time.Now().Add(time.Hour)
	id, _ := m.CreateUser(domain.AdminUser{
		Username:      "ed",
		Email:         "ed@example.com",
		Role:          domain.RoleEditor,
		LoginAttempts: 5,
		LockedUntil:   &locked,
	})
	if err := m.UnlockUser(id); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	u, _, _ := m.GetUser(id)
	if u.LoginAttempts != 0 || u.LockedUntil != nil {
		t.Fatalf("unlock must clear lockout state: %+v", u)
	}
}
