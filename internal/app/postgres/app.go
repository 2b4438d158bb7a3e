package postgres

import (
	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/app"

	access "github.com/frahmantamala/admin-access/internal/core/datamodel/access"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func toApp(row *access.App) *app.App {
	return &app.App{ID: row.ID, Name: row.Name, IsActive: row.IsActive}
}

func (r *Repository) List(params app.ListParams) ([]*app.App, int64, error) {
	query := r.db.Model(&access.App{})

	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.Search != "" {
		query = query.Where("name LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, access.TranslateError(err, "app")
	}

	var rows []access.App
	err := query.Order("id").Offset(params.Offset).Limit(params.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, access.TranslateError(err, "app")
	}

	apps := make([]*app.App, 0, len(rows))
	for i := range rows {
		apps = append(apps, toApp(&rows[i]))
	}
	return apps, total, nil
}

func (r *Repository) GetByID(id int64) (*app.App, error) {
	var row access.App
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, access.TranslateError(err, "app")
	}
	return toApp(&row), nil
}

func (r *Repository) Create(name string) (*app.App, error) {
	row := access.App{Name: name, IsActive: true}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, access.TranslateError(err, "app")
	}
	return toApp(&row), nil
}

func (r *Repository) Update(id int64, name string) (*app.App, error) {
	return r.update(id, map[string]interface{}{"name": name})
}

func (r *Repository) SetActive(id int64, active bool) (*app.App, error) {
	return r.update(id, map[string]interface{}{"is_active": active})
}

func (r *Repository) update(id int64, updates map[string]interface{}) (*app.App, error) {
	result := r.db.Model(&access.App{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, access.TranslateError(result.Error, "app")
	}
	if result.RowsAffected == 0 {
		return nil, internal.NewNotFoundError("app", id)
	}
	return r.GetByID(id)
}

// SetForUser reconciles app_users for one user and bumps access_version in
// the same transaction, so every token issued before the change is rejected
// on its next validation.
func (r *Repository) SetForUser(userID int64, appIDs []int64) ([]*app.App, error) {
	desired := map[int64]struct{}{}
	for _, appID := range appIDs {
		desired[appID] = struct{}{}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var current []access.AppUser
		if err := tx.Where("user_id = ?", userID).Find(&current).Error; err != nil {
			return access.TranslateError(err, "app grant")
		}

		existing := map[int64]struct{}{}
		var removeIDs []int64
		for _, grant := range current {
			existing[grant.AppID] = struct{}{}
			if _, keep := desired[grant.AppID]; !keep {
				removeIDs = append(removeIDs, grant.AppID)
			}
		}

		changed := len(removeIDs) > 0

		if len(removeIDs) > 0 {
			err := tx.Where("user_id = ? AND app_id IN ?", userID, removeIDs).
				Delete(&access.AppUser{}).Error
			if err != nil {
				return access.TranslateError(err, "app grant")
			}
		}

		for _, appID := range appIDs {
			if _, have := existing[appID]; have {
				continue
			}
			grant := access.AppUser{UserID: userID, AppID: appID}
			if err := tx.Create(&grant).Error; err != nil {
				return access.TranslateError(err, "app grant")
			}
			changed = true
		}

		if !changed {
			return nil
		}
		return bumpAccessVersion(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return r.GrantedToUser(userID)
}

func bumpAccessVersion(tx *gorm.DB, userID int64) error {
	result := tx.Model(&access.User{}).
		Where("id = ?", userID).
		Update("access_version", gorm.Expr("access_version + 1"))
	if result.Error != nil {
		return access.TranslateError(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return internal.NewNotFoundError("user", userID)
	}
	return nil
}

func (r *Repository) GrantedToUser(userID int64) ([]*app.App, error) {
	var rows []access.App
	err := r.db.
		Joins("JOIN app_users au ON au.app_id = apps.id").
		Where("au.user_id = ?", userID).
		Order("au.id").
		Find(&rows).Error
	if err != nil {
		return nil, access.TranslateError(err, "app")
	}

	apps := make([]*app.App, 0, len(rows))
	for i := range rows {
		apps = append(apps, toApp(&rows[i]))
	}
	return apps, nil
}

// AvailableForUser lists active apps not yet granted to the user.
func (r *Repository) AvailableForUser(userID int64) ([]*app.App, error) {
	var rows []access.App
	err := r.db.
		Where("is_active = ?", true).
		Where("id NOT IN (?)",
			r.db.Model(&access.AppUser{}).
				Select("app_id").
				Where("user_id = ?", userID),
		).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, access.TranslateError(err, "app")
	}

	apps := make([]*app.App, 0, len(rows))
	for i := range rows {
		apps = append(apps, toApp(&rows[i]))
	}
	return apps, nil
}

var _ app.Repository = (*Repository)(nil)
