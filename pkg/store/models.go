package store

import (
	"time"

	"gorm.io/datatypes"

	"epaperadmin/pkg/domain"
)

// GORM models used for persistence. Table names match the site schema.

type CategoryModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:191;not null"`
	Slug        string `gorm:"size:191;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	Color       string `gorm:"size:16;not null;default:'#007bff'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CategoryModel) TableName() string { return "categories" }

type EditionModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Title           string `gorm:"size:255;not null"`
	Slug            string `gorm:"size:255;uniqueIndex;not null"`
	Description     string `gorm:"type:text"`
	PublicationDate time.Time
	PDFPath         string `gorm:"size:512"`
	ThumbnailPath   string `gorm:"size:512"`
	TotalPages      int    `gorm:"not null;default:0"`
	Views           int64  `gorm:"not null;default:0"`
	Status          string `gorm:"size:16;not null;default:'draft';index"`
	Category        string `gorm:"size:191"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (EditionModel) TableName() string { return "editions" }

type EditionCategoryModel struct {
	EditionID  int64 `gorm:"primaryKey"`
	CategoryID int64 `gorm:"primaryKey"`
}

func (EditionCategoryModel) TableName() string { return "edition_categories" }

type ClipModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	EditionID   int64  `gorm:"not null;index"`
	ImageID     string `gorm:"size:64;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	FilePath    string `gorm:"size:512;not null"`
	CreatedAt   time.Time
}

func (ClipModel) TableName() string { return "clips" }

type SettingModel struct {
	SettingKey   string `gorm:"primaryKey;size:100"`
	SettingValue string `gorm:"type:text"`
	SettingType  string `gorm:"size:16;not null;default:'string'"`
	Description  string `gorm:"size:255"`
	UpdatedAt    time.Time
}

func (SettingModel) TableName() string { return "settings" }

// AdminUserModel carries every admin_users column including the
// optional ones. Only the core columns are auto-migrated; optional
// columns are selected and updated when the probed column set has them.
type AdminUserModel struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Username      string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash  string `gorm:"size:255;not null"`
	FullName      string `gorm:"size:191"`
	Email         string `gorm:"size:191;uniqueIndex;not null"`
	Role          string `gorm:"size:32;not null;default:'editor'"`
	IsActive      bool   `gorm:"not null;default:true"`
	LastLogin     *time.Time
	Department    string         `gorm:"size:100;-:migration"`
	Phone         string         `gorm:"size:32;-:migration"`
	Permissions   datatypes.JSON `gorm:"-:migration"`
	LoginAttempts int            `gorm:"-:migration"`
	LockedUntil   *time.Time     `gorm:"-:migration"`
	CreatedBy     int64          `gorm:"-:migration"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (AdminUserModel) TableName() string { return "admin_users" }

func categoryToModel(c domain.Category) CategoryModel {
	return CategoryModel{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Color:       c.Color,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func categoryFromModel(m CategoryModel) domain.Category {
	return domain.Category{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Color:       m.Color,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func editionToModel(e domain.Edition) EditionModel {
	return EditionModel{
		ID:              e.ID,
		Title:           e.Title,
		Slug:            e.Slug,
		Description:     e.Description,
		PublicationDate: e.PublicationDate,
		PDFPath:         e.PDFPath,
		ThumbnailPath:   e.ThumbnailPath,
		TotalPages:      e.TotalPages,
		Views:           e.Views,
		Status:          string(e.Status),
		Category:        e.Category,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func editionFromModel(m EditionModel) domain.Edition {
	return domain.Edition{
		ID:              m.ID,
		Title:           m.Title,
		Slug:            m.Slug,
		Description:     m.Description,
		PublicationDate: m.PublicationDate,
		PDFPath:         m.PDFPath,
		ThumbnailPath:   m.ThumbnailPath,
		TotalPages:      m.TotalPages,
		Views:           m.Views,
		Status:          domain.EditionStatus(m.Status),
		Category:        m.Category,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func clipToModel(c domain.Clip) ClipModel {
	return ClipModel{
		ID:          c.ID,
		EditionID:   c.EditionID,
		ImageID:     c.ImageID,
		Title:       c.Title,
		Description: c.Description,
		FilePath:    c.FilePath,
		CreatedAt:   c.CreatedAt,
	}
}

func clipFromModel(m ClipModel) domain.Clip {
	return domain.Clip{
		ID:          m.ID,
		EditionID:   m.EditionID,
		ImageID:     m.ImageID,
		Title:       m.Title,
		Description: m.Description,
		FilePath:    m.FilePath,
		CreatedAt:   m.CreatedAt,
	}
}

func settingToModel(s domain.Setting) SettingModel {
	return SettingModel{
		SettingKey:   s.Key,
		SettingValue: s.Value,
		SettingType:  string(s.Type),
		Description:  s.Description,
		UpdatedAt:    s.UpdatedAt,
	}
}

func settingFromModel(m SettingModel) domain.Setting {
	return domain.Setting{
		Key:         m.SettingKey,
		Value:       m.SettingValue,
		Type:        domain.SettingType(m.SettingType),
		Description: m.Description,
		UpdatedAt:   m.UpdatedAt,
	}
}

func userToModel(u domain.AdminUser) AdminUserModel {
	return AdminUserModel{
		ID:            u.ID,
		Username:      u.Username,
		PasswordHash:  u.PasswordHash,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          string(u.Role),
		IsActive:      u.IsActive,
		LastLogin:     u.LastLogin,
		Department:    u.Department,
		Phone:         u.Phone,
		Permissions:   datatypes.JSON(u.Permissions),
		LoginAttempts: u.LoginAttempts,
		LockedUntil:   u.LockedUntil,
		CreatedBy:     u.CreatedBy,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func userFromModel(m AdminUserModel) domain.AdminUser {
	return domain.AdminUser{
		ID:            m.ID,
		Username:      m.Username,
		PasswordHash:  m.PasswordHash,
		FullName:      m.FullName,
		Email:         m.Email,
		Role:          domain.Role(m.Role),
		IsActive:      m.IsActive,
		LastLogin:     m.LastLogin,
		Department:    m.Department,
		Phone:         m.Phone,
		Permissions:   []byte(m.Permissions),
		LoginAttempts: m.LoginAttempts,
		LockedUntil:   m.LockedUntil,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
