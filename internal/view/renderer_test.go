package view

import (
	"strings"
	"testing"
	"time"

	"epaperadmin/pkg/domain"
)

func TestCategoriesEscapesCellValues(t *testing.T) {
	r := New()
	html, err := r.Categories([]domain.Category{
		{ID: 1, Name: "<script>alert(1)</script>", Slug: "xss", Color: "#fff"},
	}, domain.Result{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatal("markup in entity data was not escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("escaped form missing:\n%s", html)
	}
}

func TestFlashMessageRendering(t *testing.T) {
	r := New()

	html, err := r.Categories(nil, domain.Result{Success: true, Message: `Category "Sports" created`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "flash-success") {
		t.Fatalf("success flash class missing:\n%s", html)
	}

	html, err = r.Categories(nil, domain.Result{Success: false, Message: "Invalid action"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "flash-error") || !strings.Contains(html, "Invalid action") {
		t.Fatalf("error flash missing:\n%s", html)
	}

	html, err = r.Categories(nil, domain.Result{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "flash") {
		t.Fatalf("empty result rendered a flash:\n%s", html)
	}
}

func TestFlashMessageEscaped(t *testing.T) {
	r := New()
	html, err := r.Categories(nil, domain.Result{Success: false, Message: `<img src=x onerror=alert(1)>`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<img") {
		t.Fatal("flash message was not escaped")
	}
}

func TestSettingsHTMLValueDoesNotExecute(t *testing.T) {
	r := New()
	html, err := r.Settings([]domain.Setting{
		{Key: "footer_html", Value: "<b>footer</b>", Type: domain.SettingHTML},
	}, domain.Result{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<b>footer</b>") {
		t.Fatal("stored html rendered raw in the admin table")
	}
}

func TestUsersOmitsPasswordHash(t *testing.T) {
	r := New()
	last := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	html, err := r.Users([]domain.AdminUser{
		{ID: 3, Username: "chief", PasswordHash: "$2a$10$secret", Role: domain.RoleAdmin, IsActive: true, LastLogin: &last},
	}, domain.Result{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "$2a$10$secret") {
		t.Fatal("password hash leaked into markup")
	}
	if !strings.Contains(html, "2024-03-15 09:30") {
		t.Fatalf("last login missing:\n%s", html)
	}
}

func TestEditionsTable(t *testing.T) {
	r := New()
	html, err := r.Editions([]domain.Edition{
		{ID: 9, Title: "Daily", PublicationDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Status: domain.StatusPublished, TotalPages: 12, Views: 40},
	}, domain.Result{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"2024-03-15", "published", "<td>12</td>", "<td>40</td>"} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in:\n%s", want, html)
		}
	}
}
