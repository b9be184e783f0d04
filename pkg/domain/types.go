package domain

import (
	"encoding/json"
	"time"
)

type EditionStatus string

const (
	StatusDraft     EditionStatus = "draft"
	StatusPublished EditionStatus = "published"
	StatusArchived  EditionStatus = "archived"
)

// ValidEditionStatus reports whether s is a known lifecycle status.
func ValidEditionStatus(s EditionStatus) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleViewer     Role = "viewer"
)

// ValidRole reports whether r is one of the canonical roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

type SettingType string

const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
	SettingHTML    SettingType = "html"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Edition struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Description     string        `json:"description,omitempty"`
	PublicationDate time.Time     `json:"publicationDate"`
	PDFPath         string        `json:"pdfPath,omitempty"`
	ThumbnailPath   string        `json:"thumbnailPath,omitempty"`
	TotalPages      int           `json:"totalPages"`
	Views           int64         `json:"views"`
	Status          EditionStatus `json:"status"`
	Category        string        `json:"category,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type Clip struct {
	ID          int64     `json:"id"`
	EditionID   int64     `json:"editionId"`
	ImageID     string    `json:"imageId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FilePath    string    `json:"filePath"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Setting struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	Type        SettingType `json:"type"`
	Description string      `json:"description,omitempty"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// AdminUser carries the full user shape. Department, Phone, Permissions,
// LoginAttempts, LockedUntil and CreatedBy map to columns that may be
// absent from the admin_users table; the store only reads and writes
// them when the probed column set says they exist.
type AdminUser struct {
	ID            int64           `json:"id"`
	Username      string          `json:"username"`
	PasswordHash  string          `json:"-"`
	FullName      string          `json:"fullName"`
	Email         string          `json:"email"`
	Role          Role            `json:"role"`
	IsActive      bool            `json:"isActive"`
	LastLogin     *time.Time      `json:"lastLogin,omitempty"`
	Department    string          `json:"department,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Permissions   json.RawMessage `json:"permissions,omitempty"`
	LoginAttempts int             `json:"loginAttempts,omitempty"`
	LockedUntil   *time.Time      `json:"lockedUntil,omitempty"`
	CreatedBy     int64           `json:"createdBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Principal identifies the authenticated admin for one request.
type Principal struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Result is the outcome pair every admin action produces.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
