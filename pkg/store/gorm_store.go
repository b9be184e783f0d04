package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"epaperadmin/pkg/domain"
)

// GormStore implements Store on GORM with a Postgres or MySQL backend.
type GormStore struct {
	db       *gorm.DB
	userCols ColumnSet
}

// NewGormStore opens the database, runs auto-migrations for the core
// tables and probes the admin_users column set once. Optional
// admin_users columns are never created here; an operator adds them and
// the store picks them up on the next start.
func NewGormStore(driver, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "", "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&CategoryModel{},
		&EditionModel{},
		&EditionCategoryModel{},
		&ClipModel{},
		&SettingModel{},
		&AdminUserModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	cols, err := probeUserColumns(db)
	if err != nil {
		return nil, fmt.Errorf("probe admin_users columns: %w", err)
	}
	return &GormStore{db: db, userCols: cols}, nil
}

func probeUserColumns(db *gorm.DB) (ColumnSet, error) {
	types, err := db.Migrator().ColumnTypes(&AdminUserModel{})
	if err != nil {
		return nil, err
	}
	set := make(ColumnSet, len(types))
	for _, ct := range types {
		set[strings.ToLower(ct.Name())] = struct{}{}
	}
	return set, nil
}

// UserColumns returns the admin_users column set probed at startup.
func (s *GormStore) UserColumns() ColumnSet { return s.userCols }

func persistErr(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Persistence(op, errors.New("duplicate value violates a unique constraint"))
	}
	return domain.Persistence(op, err)
}

// categories

func (s *GormStore) CreateCategory(c domain.Category) (int64, error) {
	model := categoryToModel(c)
	if err := s.db.Create(&model).Error; err != nil {
		return 0, persistErr("create category", err)
	}
	return model.ID, nil
}

func (s *GormStore) UpdateCategory(c domain.Category) error {
	var existing CategoryModel
	if err := s.db.First(&existing, "id = ?", c.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("category", c.ID)
		}
		return persistErr("update category", err)
	}
	model := categoryToModel(c)
	model.CreatedAt = existing.CreatedAt
	if err := s.db.Save(&model).Error; err != nil {
		return persistErr("update category", err)
	}
	return nil
}

func (s *GormStore) DeleteCategory(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&CategoryModel{}, "id = ?", id)
		if res.Error != nil {
			return persistErr("delete category", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("category", id)
		}
		if err := tx.Delete(&EditionCategoryModel{}, "category_id = ?", id).Error; err != nil {
			return persistErr("delete category links", err)
		}
		return nil
	})
}

func (s *GormStore) ListCategories() ([]domain.Category, error) {
	var models []CategoryModel
	if err := s.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, persistErr("list categories", err)
	}
	res := make([]domain.Category, 0, len(models))
	for _, m := range models {
		res = append(res, categoryFromModel(m))
	}
	return res, nil
}

func (s *GormStore) GetCategory(id int64) (domain.Category, bool, error) {
	var model CategoryModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, false, nil
		}
		return domain.Category{}, false, persistErr("get category", err)
	}
	return categoryFromModel(model), true, nil
}

// editions

func (s *GormStore) CreateEdition(e domain.Edition) (int64, error) {
	model := editionToModel(e)
	if err := s.db.Create(&model).Error; err != nil {
		return 0, persistErr("create edition", err)
	}
	return model.ID, nil
}

func (s *GormStore) UpdateEdition(e domain.Edition) error {
	var existing EditionModel
	if err := s.db.First(&existing, "id = ?", e.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("edition", e.ID)
		}
		return persistErr("update edition", err)
	}
	model := editionToModel(e)
	model.CreatedAt = existing.CreatedAt
	model.Views = existing.Views
	if err := s.db.Save(&model).Error; err != nil {
		return persistErr("update edition", err)
	}
	return nil
}

// DeleteEdition removes the edition row together with its clips and
// category links in one transaction. File and object cleanup is the
// caller's responsibility.
func (s *GormStore) DeleteEdition(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ClipModel{}, "edition_id = ?", id).Error; err != nil {
			return persistErr("delete edition clips", err)
		}
		if err := tx.Delete(&EditionCategoryModel{}, "edition_id = ?", id).Error; err != nil {
			return persistErr("delete edition categories", err)
		}
		res := tx.Delete(&EditionModel{}, "id = ?", id)
		if res.Error != nil {
			return persistErr("delete edition", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("edition", id)
		}
		return nil
	})
}

func (s *GormStore) ListEditions(f EditionFilter) ([]domain.Edition, error) {
	tx := s.db.Order("created_at DESC")
	if f.Status != "" {
		tx = tx.Where("status = ?", string(f.Status))
	}
	if f.Category != "" {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit).Offset(f.Offset)
	}
	var models []EditionModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, persistErr("list editions", err)
	}
	res := make([]domain.Edition, 0, len(models))
	for _, m := range models {
		res = append(res, editionFromModel(m))
	}
	return res, nil
}

func (s *GormStore) GetEdition(id int64) (domain.Edition, bool, error) {
	var model EditionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Edition{}, false, nil
		}
		return domain.Edition{}, false, persistErr("get edition", err)
	}
	return editionFromModel(model), true, nil
}

func (s *GormStore) SetEditionStatus(id int64, status domain.EditionStatus) error {
	res := s.db.Model(&EditionModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return persistErr("set edition status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("edition", id)
	}
	return nil
}

func (s *GormStore) IncrementEditionViews(id int64) error {
	res := s.db.Model(&EditionModel{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return persistErr("increment views", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("edition", id)
	}
	return nil
}

func (s *GormStore) SetEditionCategories(editionID int64, categoryIDs []int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&EditionCategoryModel{}, "edition_id = ?", editionID).Error; err != nil {
			return persistErr("clear edition categories", err)
		}
		if len(categoryIDs) == 0 {
			return nil
		}
		rows := make([]EditionCategoryModel, 0, len(categoryIDs))
		for _, cid := range categoryIDs {
			rows = append(rows, EditionCategoryModel{EditionID: editionID, CategoryID: cid})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return persistErr("link edition categories", err)
		}
		return nil
	})
}

// clips

func (s *GormStore) CreateClip(c domain.Clip) (int64, error) {
	model := clipToModel(c)
	if err := s.db.Create(&model).Error; err != nil {
		return 0, persistErr("create clip", err)
	}
	return model.ID, nil
}

func (s *GormStore) DeleteClip(id int64) error {
	res := s.db.Delete(&ClipModel{}, "id = ?", id)
	if res.Error != nil {
		return persistErr("delete clip", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("clip", id)
	}
	return nil
}

// DeleteClips removes every clip whose ID is in ids and reports the
// number of rows actually deleted, which may be lower than len(ids).
func (s *GormStore) DeleteClips(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.Delete(&ClipModel{}, "id IN ?", ids)
	if res.Error != nil {
		return 0, persistErr("bulk delete clips", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) ListClipsByEdition(editionID int64) ([]domain.Clip, error) {
	var models []ClipModel
	if err := s.db.Where("edition_id = ?", editionID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, persistErr("list clips", err)
	}
	res := make([]domain.Clip, 0, len(models))
	for _, m := range models {
		res = append(res, clipFromModel(m))
	}
	return res, nil
}

func (s *GormStore) GetClip(id int64) (domain.Clip, bool, error) {
	var model ClipModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Clip{}, false, nil
		}
		return domain.Clip{}, false, persistErr("get clip", err)
	}
	return clipFromModel(model), true, nil
}

func (s *GormStore) GetClipsByIDs(ids []int64) ([]domain.Clip, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ClipModel
	if err := s.db.Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, persistErr("get clips", err)
	}
	res := make([]domain.Clip, 0, len(models))
	for _, m := range models {
		res = append(res, clipFromModel(m))
	}
	return res, nil
}

// settings

func (s *GormStore) ListSettings() ([]domain.Setting, error) {
	var models []SettingModel
	if err := s.db.Order("setting_key ASC").Find(&models).Error; err != nil {
		return nil, persistErr("list settings", err)
	}
	res := make([]domain.Setting, 0, len(models))
	for _, m := range models {
		res = append(res, settingFromModel(m))
	}
	return res, nil
}

// SaveSettings upserts all values in one transaction so a partial bulk
// save never commits.
func (s *GormStore) SaveSettings(values []domain.Setting) error {
	if len(values) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, v := range values {
			model := settingToModel(v)
			model.UpdatedAt = now
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"setting_value", "setting_type", "description", "updated_at"}),
			}).Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return persistErr("save settings", err)
	}
	return nil
}

func (s *GormStore) DeleteSettings(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.Delete(&SettingModel{}, "setting_key IN ?", keys).Error; err != nil {
		return persistErr("delete settings", err)
	}
	return nil
}

// admin users

func (s *GormStore) CreateUser(u domain.AdminUser) (int64, error) {
	model := userToModel(u)
	if err := s.db.Select(s.userWriteColumns()).Create(&model).Error; err != nil {
		return 0, persistErr("create user", err)
	}
	return model.ID, nil
}

func (s *GormStore) UpdateUser(u domain.AdminUser) error {
	var existing AdminUserModel
	if err := s.db.Select(s.userReadColumns()).First(&existing, "id = ?", u.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("admin user", u.ID)
		}
		return persistErr("update user", err)
	}
	updates := map[string]any{
		"username":   u.Username,
		"full_name":  u.FullName,
		"email":      u.Email,
		"role":       string(u.Role),
		"is_active":  u.IsActive,
		"updated_at": time.Now().UTC(),
	}
	if u.PasswordHash != "" {
		updates["password_hash"] = u.PasswordHash
	}
	if s.userCols.Has("department") {
		updates["department"] = u.Department
	}
	if s.userCols.Has("phone") {
		updates["phone"] = u.Phone
	}
	if s.userCols.Has("permissions") && len(u.Permissions) > 0 {
		updates["permissions"] = []byte(u.Permissions)
	}
	if err := s.db.Model(&AdminUserModel{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
		return persistErr("update user", err)
	}
	return nil
}

func (s *GormStore) DeleteUser(id int64) error {
	res := s.db.Delete(&AdminUserModel{}, "id = ?", id)
	if res.Error != nil {
		return persistErr("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("admin user", id)
	}
	return nil
}

func (s *GormStore) ListUsers() ([]domain.AdminUser, error) {
	var models []AdminUserModel
	if err := s.db.Select(s.userReadColumns()).Order("username ASC").Find(&models).Error; err != nil {
		return nil, persistErr("list users", err)
	}
	res := make([]domain.AdminUser, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

func (s *GormStore) GetUser(id int64) (domain.AdminUser, bool, error) {
	return s.getUser("id = ?", id)
}

func (s *GormStore) GetUserByUsername(username string) (domain.AdminUser, bool, error) {
	return s.getUser("username = ?", username)
}

func (s *GormStore) getUser(cond string, arg any) (domain.AdminUser, bool, error) {
	var model AdminUserModel
	if err := s.db.Select(s.userReadColumns()).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AdminUser{}, false, nil
		}
		return domain.AdminUser{}, false, persistErr("get user", err)
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) SetUserActive(id int64, active bool) error {
	res := s.db.Model(&AdminUserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return persistErr("set user active", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("admin user", id)
	}
	return nil
}

// UnlockUser clears the lockout columns when the schema has them. On a
// core-only schema there is nothing to clear, so the call only verifies
// the user exists.
func (s *GormStore) UnlockUser(id int64) error {
	_, ok, err := s.GetUser(id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("admin user", id)
	}
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if s.userCols.Has("login_attempts") {
		updates["login_attempts"] = 0
	}
	if s.userCols.Has("locked_until") {
		updates["locked_until"] = nil
	}
	if len(updates) == 1 {
		return nil
	}
	if err := s.db.Model(&AdminUserModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return persistErr("unlock user", err)
	}
	return nil
}

func (s *GormStore) RecordLogin(id int64, at time.Time) error {
	updates := map[string]any{"last_login": at}
	if s.userCols.Has("login_attempts") {
		updates["login_attempts"] = 0
	}
	res := s.db.Model(&AdminUserModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return persistErr("record login", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("admin user", id)
	}
	return nil
}

var coreUserColumns = []string{
	"id", "username", "password_hash", "full_name", "email",
	"role", "is_active", "last_login", "created_at", "updated_at",
}

func (s *GormStore) userReadColumns() []string {
	cols := make([]string, 0, len(coreUserColumns)+len(OptionalUserColumns))
	cols = append(cols, coreUserColumns...)
	for _, opt := range OptionalUserColumns {
		if s.userCols.Has(opt) {
			cols = append(cols, opt)
		}
	}
	return cols
}

func (s *GormStore) userWriteColumns() []string {
	cols := make([]string, 0, len(coreUserColumns)+len(OptionalUserColumns))
	for _, c := range coreUserColumns {
		if c == "id" {
			continue
		}
		cols = append(cols, c)
	}
	for _, opt := range OptionalUserColumns {
		if s.userCols.Has(opt) {
			cols = append(cols, opt)
		}
	}
	return cols
}
