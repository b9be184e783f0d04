package app

import (
	"strconv"
	"strings"
	"time"

	"epaperadmin/pkg/domain"
)

// Page names the admin screen a request came from. Each page accepts
// its own set of actions, mirroring the per-entity admin forms.
type Page string

const (
	PageCategories Page = "categories"
	PageEditions   Page = "editions"
	PageClips      Page = "clips"
	PageSettings   Page = "settings"
	PageUsers      Page = "users"
)

// Command is a decoded, typed admin action. Raw form fields never reach
// the repositories; they are coerced into one of these variants first.
type Command interface {
	isCommand()
}

type CreateCategory struct {
	Name        string
	Description string
	Color       string
}

type UpdateCategory struct {
	ID          int64
	Name        string
	Description string
	Color       string
}

type DeleteCategory struct {
	ID int64
}

type CreateEdition struct {
	Title           string
	Description     string
	PublicationDate time.Time
	PDFPath         string
	ThumbnailPath   string
	TotalPages      int
	Category        string
	CategoryIDs     []int64
}

type UpdateEdition struct {
	ID              int64
	Title           string
	Description     string
	PublicationDate time.Time
	PDFPath         string
	ThumbnailPath   string
	TotalPages      int
	Category        string
	CategoryIDs     []int64
}

type DeleteEdition struct {
	ID int64
}

type SetEditionStatus struct {
	ID     int64
	Status domain.EditionStatus
}

type CreateClip struct {
	EditionID   int64
	Title       string
	Description string
	FilePath    string
}

type DeleteClip struct {
	ID int64
}

type BulkDeleteClips struct {
	IDs []int64
}

type SaveSettings struct {
	Values map[string]string
}

type ResetSettings struct{}

type RemoveWatermark struct{}

type CreateUser struct {
	Username   string
	Password   string
	FullName   string
	Email      string
	Role       domain.Role
	Department string
	Phone      string
}

type UpdateUser struct {
	ID         int64
	Username   string
	Password   string
	FullName   string
	Email      string
	Role       domain.Role
	Department string
	Phone      string
}

type DeleteUser struct {
	ID int64
}

type ToggleUserActive struct {
	ID int64
}

type UnlockUser struct {
	ID int64
}

func (CreateCategory) isCommand()   {}
func (UpdateCategory) isCommand()   {}
func (DeleteCategory) isCommand()   {}
func (CreateEdition) isCommand()    {}
func (UpdateEdition) isCommand()    {}
func (DeleteEdition) isCommand()    {}
func (SetEditionStatus) isCommand() {}
func (CreateClip) isCommand()       {}
func (DeleteClip) isCommand()       {}
func (BulkDeleteClips) isCommand()  {}
func (SaveSettings) isCommand()     {}
func (ResetSettings) isCommand()    {}
func (RemoveWatermark) isCommand()  {}
func (CreateUser) isCommand()       {}
func (UpdateUser) isCommand()       {}
func (DeleteUser) isCommand()       {}
func (ToggleUserActive) isCommand() {}
func (UnlockUser) isCommand()       {}

// DecodeCommand coerces a flat form field map into a typed Command for
// the given page. Unknown actions yield a ValidationError.
func DecodeCommand(page Page, fields map[string]string) (Command, error) {
	action := strings.TrimSpace(fields["action"])
	switch page {
	case PageCategories:
		switch action {
		case "create":
			return CreateCategory{
				Name:        fieldString(fields, "name"),
				Description: fieldString(fields, "description"),
				Color:       fieldString(fields, "color"),
			}, nil
		case "update":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return UpdateCategory{
				ID:          id,
				Name:        fieldString(fields, "name"),
				Description: fieldString(fields, "description"),
				Color:       fieldString(fields, "color"),
			}, nil
		case "delete":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return DeleteCategory{ID: id}, nil
		}
	case PageEditions:
		switch action {
		case "create":
			pub, err := fieldDate(fields, "publication_date")
			if err != nil {
				return nil, err
			}
			return CreateEdition{
				Title:           fieldString(fields, "title"),
				Description:     fieldString(fields, "description"),
				PublicationDate: pub,
				PDFPath:         fieldString(fields, "pdf_path"),
				ThumbnailPath:   fieldString(fields, "thumbnail_path"),
				TotalPages:      fieldInt(fields, "total_pages"),
				Category:        fieldString(fields, "category"),
				CategoryIDs:     fieldIDList(fields, "category_ids"),
			}, nil
		case "update":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			pub, err := fieldDate(fields, "publication_date")
			if err != nil {
				return nil, err
			}
			return UpdateEdition{
				ID:              id,
				Title:           fieldString(fields, "title"),
				Description:     fieldString(fields, "description"),
				PublicationDate: pub,
				PDFPath:         fieldString(fields, "pdf_path"),
				ThumbnailPath:   fieldString(fields, "thumbnail_path"),
				TotalPages:      fieldInt(fields, "total_pages"),
				Category:        fieldString(fields, "category"),
				CategoryIDs:     fieldIDList(fields, "category_ids"),
			}, nil
		case "delete":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return DeleteEdition{ID: id}, nil
		case "publish":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return SetEditionStatus{ID: id, Status: domain.StatusPublished}, nil
		case "archive":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return SetEditionStatus{ID: id, Status: domain.StatusArchived}, nil
		}
	case PageClips:
		switch action {
		case "create":
			editionID, err := fieldID(fields, "edition_id")
			if err != nil {
				return nil, err
			}
			return CreateClip{
				EditionID:   editionID,
				Title:       fieldString(fields, "title"),
				Description: fieldString(fields, "description"),
				FilePath:    fieldString(fields, "file_path"),
			}, nil
		case "delete":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return DeleteClip{ID: id}, nil
		case "bulk_delete":
			ids := fieldIDList(fields, "ids")
			if len(ids) == 0 {
				return nil, domain.Validationf("no clip IDs given")
			}
			return BulkDeleteClips{IDs: ids}, nil
		}
	case PageSettings:
		switch action {
		case "save":
			values := make(map[string]string, len(fields))
			for k, v := range fields {
				if k == "action" {
					continue
				}
				values[k] = strings.TrimSpace(v)
			}
			return SaveSettings{Values: values}, nil
		case "reset_settings":
			return ResetSettings{}, nil
		case "remove_watermark":
			return RemoveWatermark{}, nil
		}
	case PageUsers:
		switch action {
		case "create":
			return CreateUser{
				Username:   fieldString(fields, "username"),
				Password:   fields["password"],
				FullName:   fieldString(fields, "full_name"),
				Email:      fieldString(fields, "email"),
				Role:       domain.Role(fieldString(fields, "role")),
				Department: fieldString(fields, "department"),
				Phone:      fieldString(fields, "phone"),
			}, nil
		case "update":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return UpdateUser{
				ID:         id,
				Username:   fieldString(fields, "username"),
				Password:   fields["password"],
				FullName:   fieldString(fields, "full_name"),
				Email:      fieldString(fields, "email"),
				Role:       domain.Role(fieldString(fields, "role")),
				Department: fieldString(fields, "department"),
				Phone:      fieldString(fields, "phone"),
			}, nil
		case "delete":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return DeleteUser{ID: id}, nil
		case "toggle_active":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return ToggleUserActive{ID: id}, nil
		case "unlock_user":
			id, err := fieldID(fields, "id")
			if err != nil {
				return nil, err
			}
			return UnlockUser{ID: id}, nil
		}
	}
	return nil, domain.Validationf("Invalid action")
}

func fieldString(fields map[string]string, key string) string {
	return strings.TrimSpace(fields[key])
}

func fieldInt(fields map[string]string, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(fields[key]))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func fieldID(fields map[string]string, key string) (int64, error) {
	raw := strings.TrimSpace(fields[key])
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("invalid %s", key)
	}
	return id, nil
}

// fieldIDList parses a comma-separated ID list, skipping blanks and
// rejecting nothing: invalid entries are dropped rather than failing
// the whole request, matching the forgiving form handling of the admin
// screens.
func fieldIDList(fields map[string]string, key string) []int64 {
	raw := strings.TrimSpace(fields[key])
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func fieldDate(fields map[string]string, key string) (time.Time, error) {
	raw := strings.TrimSpace(fields[key])
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, domain.Validationf("invalid %s", key)
	}
	return t, nil
}
