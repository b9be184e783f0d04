package store

import (
	"time"

	"epaperadmin/pkg/domain"
)

// EditionFilter narrows ListEditions. Zero values mean "no filter";
// Limit <= 0 returns everything.
type EditionFilter struct {
	Status   domain.EditionStatus
	Category string
	Limit    int
	Offset   int
}

// Store defines persistence operations for the admin entities.
// Implementations report absent IDs as domain.NotFoundError and failed
// statements (including unique violations) as domain.PersistenceError.
type Store interface {
	// categories
	CreateCategory(c domain.Category) (int64, error)
	UpdateCategory(c domain.Category) error
	DeleteCategory(id int64) error
	ListCategories() ([]domain.Category, error)
	GetCategory(id int64) (domain.Category, bool, error)

	// editions
	CreateEdition(e domain.Edition) (int64, error)
	UpdateEdition(e domain.Edition) error
	DeleteEdition(id int64) error
	ListEditions(f EditionFilter) ([]domain.Edition, error)
	GetEdition(id int64) (domain.Edition, bool, error)
	SetEditionStatus(id int64, status domain.EditionStatus) error
	IncrementEditionViews(id int64) error
	SetEditionCategories(editionID int64, categoryIDs []int64) error

	// clips
	CreateClip(c domain.Clip) (int64, error)
	DeleteClip(id int64) error
	DeleteClips(ids []int64) (int64, error)
	ListClipsByEdition(editionID int64) ([]domain.Clip, error)
	GetClip(id int64) (domain.Clip, bool, error)
	GetClipsByIDs(ids []int64) ([]domain.Clip, error)

	// settings
	ListSettings() ([]domain.Setting, error)
	SaveSettings(values []domain.Setting) error
	DeleteSettings(keys []string) error

	// admin users
	CreateUser(u domain.AdminUser) (int64, error)
	UpdateUser(u domain.AdminUser) error
	DeleteUser(id int64) error
	ListUsers() ([]domain.AdminUser, error)
	GetUser(id int64) (domain.AdminUser, bool, error)
	GetUserByUsername(username string) (domain.AdminUser, bool, error)
	SetUserActive(id int64, active bool) error
	UnlockUser(id int64) error
	RecordLogin(id int64, at time.Time) error
	UserColumns() ColumnSet
}

// SessionStore persists admin session tokens.
type SessionStore interface {
	NewSession(userID int64) (string, error)
	GetUserIDByToken(token string) (int64, bool, error)
	DeleteSession(token string) error
}

// ColumnSet is the probed capability of an evolving table: the set of
// column names that actually exist at startup. Optional admin_users
// columns are only referenced when present here.
type ColumnSet map[string]struct{}

// NewColumnSet builds a ColumnSet from names.
func NewColumnSet(names ...string) ColumnSet {
	set := make(ColumnSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Has reports whether the column exists.
func (c ColumnSet) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// OptionalUserColumns are the admin_users columns that may be missing
// from an older schema.
var OptionalUserColumns = []string{
	"department",
	"phone",
	"permissions",
	"login_attempts",
	"locked_until",
	"created_by",
}
