package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"epaperadmin/pkg/domain"
)

var errDuplicate = errors.New("duplicate value violates a unique constraint")

// MemoryStore keeps entities in-process. It backs tests and mirrors the
// GORM store's error semantics: NotFoundError for absent IDs and
// PersistenceError for unique violations.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[int64]domain.Category
	editions   map[int64]domain.Edition
	clips      map[int64]domain.Clip
	links      map[int64][]int64 // edition ID -> category IDs
	settings   map[string]domain.Setting
	users      map[int64]domain.AdminUser
	nextID     int64
	userCols   ColumnSet
}

// NewMemoryStore initializes an empty in-memory store with the full
// admin_users column set.
func NewMemoryStore() *MemoryStore {
	cols := NewColumnSet(coreUserColumns...)
	for _, opt := range OptionalUserColumns {
		cols[opt] = struct{}{}
	}
	return &MemoryStore{
		categories: make(map[int64]domain.Category),
		editions:   make(map[int64]domain.Edition),
		clips:      make(map[int64]domain.Clip),
		links:      make(map[int64][]int64),
		settings:   make(map[string]domain.Setting),
		users:      make(map[int64]domain.AdminUser),
		userCols:   cols,
	}
}

// RestrictUserColumns shrinks the admin_users column set to the core
// columns plus the given optional ones, simulating an older schema.
func (m *MemoryStore) RestrictUserColumns(optional ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cols := NewColumnSet(coreUserColumns...)
	for _, opt := range optional {
		cols[opt] = struct{}{}
	}
	m.userCols = cols
}

// UserColumns returns the simulated admin_users column set.
func (m *MemoryStore) UserColumns() ColumnSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userCols
}

func (m *MemoryStore) allocID() int64 {
	m.nextID++
	return m.nextID
}

// categories

func (m *MemoryStore) CreateCategory(c domain.Category) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Slug == c.Slug {
			return 0, domain.Persistence("create category", errDuplicate)
		}
	}
	c.ID = m.allocID()
	m.categories[c.ID] = c
	return c.ID, nil
}

func (m *MemoryStore) UpdateCategory(c domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.categories[c.ID]
	if !ok {
		return domain.NotFound("category", c.ID)
	}
	for id, other := range m.categories {
		if id != c.ID && other.Slug == c.Slug {
			return domain.Persistence("update category", errDuplicate)
		}
	}
	c.CreatedAt = existing.CreatedAt
	m.categories[c.ID] = c
	return nil
}

func (m *MemoryStore) DeleteCategory(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return domain.NotFound("category", id)
	}
	delete(m.categories, id)
	for editionID, cats := range m.links {
		filtered := cats[:0]
		for _, cid := range cats {
			if cid != id {
				filtered = append(filtered, cid)
			}
		}
		m.links[editionID] = filtered
	}
	return nil
}

func (m *MemoryStore) ListCategories() ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (m *MemoryStore) GetCategory(id int64) (domain.Category, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	return c, ok, nil
}

// editions

func (m *MemoryStore) CreateEdition(e domain.Edition) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.editions {
		if existing.Slug == e.Slug {
			return 0, domain.Persistence("create edition", errDuplicate)
		}
	}
	e.ID = m.allocID()
	m.editions[e.ID] = e
	return e.ID, nil
}

func (m *MemoryStore) UpdateEdition(e domain.Edition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.editions[e.ID]
	if !ok {
		return domain.NotFound("edition", e.ID)
	}
	for id, other := range m.editions {
		if id != e.ID && other.Slug == e.Slug {
			return domain.Persistence("update edition", errDuplicate)
		}
	}
	e.CreatedAt = existing.CreatedAt
	e.Views = existing.Views
	m.editions[e.ID] = e
	return nil
}

func (m *MemoryStore) DeleteEdition(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.editions[id]; !ok {
		return domain.NotFound("edition", id)
	}
	delete(m.editions, id)
	delete(m.links, id)
	for clipID, clip := range m.clips {
		if clip.EditionID == id {
			delete(m.clips, clipID)
		}
	}
	return nil
}

func (m *MemoryStore) ListEditions(f EditionFilter) ([]domain.Edition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Edition, 0, len(m.editions))
	for _, e := range m.editions {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	if f.Limit > 0 {
		start := f.Offset
		if start > len(res) {
			start = len(res)
		}
		end := start + f.Limit
		if end > len(res) {
			end = len(res)
		}
		res = res[start:end]
	}
	return res, nil
}

func (m *MemoryStore) GetEdition(id int64) (domain.Edition, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.editions[id]
	return e, ok, nil
}

func (m *MemoryStore) SetEditionStatus(id int64, status domain.EditionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.editions[id]
	if !ok {
		return domain.NotFound("edition", id)
	}
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	m.editions[id] = e
	return nil
}

func (m *MemoryStore) IncrementEditionViews(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.editions[id]
	if !ok {
		return domain.NotFound("edition", id)
	}
	e.Views++
	m.editions[id] = e
	return nil
}

func (m *MemoryStore) SetEditionCategories(editionID int64, categoryIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[editionID] = append([]int64(nil), categoryIDs...)
	return nil
}

// clips

func (m *MemoryStore) CreateClip(c domain.Clip) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.allocID()
	m.clips[c.ID] = c
	return c.ID, nil
}

func (m *MemoryStore) DeleteClip(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clips[id]; !ok {
		return domain.NotFound("clip", id)
	}
	delete(m.clips, id)
	return nil
}

func (m *MemoryStore) DeleteClips(ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, id := range ids {
		if _, ok := m.clips[id]; ok {
			delete(m.clips, id)
			affected++
		}
	}
	return affected, nil
}

func (m *MemoryStore) ListClipsByEdition(editionID int64) ([]domain.Clip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Clip, 0)
	for _, c := range m.clips {
		if c.EditionID == editionID {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}

func (m *MemoryStore) GetClip(id int64) (domain.Clip, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clips[id]
	return c, ok, nil
}

func (m *MemoryStore) GetClipsByIDs(ids []int64) ([]domain.Clip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Clip, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.clips[id]; ok {
			res = append(res, c)
		}
	}
	return res, nil
}

// settings

func (m *MemoryStore) ListSettings() ([]domain.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Setting, 0, len(m.settings))
	for _, s := range m.settings {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res, nil
}

func (m *MemoryStore) SaveSettings(values []domain.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, v := range values {
		v.UpdatedAt = now
		m.settings[v.Key] = v
	}
	return nil
}

func (m *MemoryStore) DeleteSettings(keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.settings, k)
	}
	return nil
}

// admin users

func (m *MemoryStore) CreateUser(u domain.AdminUser) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return 0, domain.Persistence("create user", errDuplicate)
		}
	}
	u = m.stripAbsentUserColumns(u)
	u.ID = m.allocID()
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemoryStore) UpdateUser(u domain.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return domain.NotFound("admin user", u.ID)
	}
	for id, other := range m.users {
		if id != u.ID && (other.Username == u.Username || other.Email == u.Email) {
			return domain.Persistence("update user", errDuplicate)
		}
	}
	if u.PasswordHash == "" {
		u.PasswordHash = existing.PasswordHash
	}
	u = m.stripAbsentUserColumns(u)
	u.CreatedAt = existing.CreatedAt
	u.LastLogin = existing.LastLogin
	m.users[u.ID] = u
	return nil
}

func (m *MemoryStore) DeleteUser(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.NotFound("admin user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) ListUsers() ([]domain.AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.AdminUser, 0, len(m.users))
	for _, u := range m.users {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Username < res[j].Username })
	return res, nil
}

func (m *MemoryStore) GetUser(id int64) (domain.AdminUser, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (domain.AdminUser, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return domain.AdminUser{}, false, nil
}

func (m *MemoryStore) SetUserActive(id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.NotFound("admin user", id)
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return nil
}

func (m *MemoryStore) UnlockUser(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.NotFound("admin user", id)
	}
	if m.userCols.Has("login_attempts") {
		u.LoginAttempts = 0
	}
	if m.userCols.Has("locked_until") {
		u.LockedUntil = nil
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return nil
}

func (m *MemoryStore) RecordLogin(id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.NotFound("admin user", id)
	}
	u.LastLogin = &at
	if m.userCols.Has("login_attempts") {
		u.LoginAttempts = 0
	}
	m.users[id] = u
	return nil
}

func (m *MemoryStore) stripAbsentUserColumns(u domain.AdminUser) domain.AdminUser {
	if !m.userCols.Has("department") {
		u.Department = ""
	}
	if !m.userCols.Has("phone") {
		u.Phone = ""
	}
	if !m.userCols.Has("permissions") {
		u.Permissions = nil
	}
	if !m.userCols.Has("login_attempts") {
		u.LoginAttempts = 0
	}
	if !m.userCols.Has("locked_until") {
		u.LockedUntil = nil
	}
	if !m.userCols.Has("created_by") {
		u.CreatedBy = 0
	}
	return u
}
