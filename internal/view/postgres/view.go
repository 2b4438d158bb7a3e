package postgres

import (
	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/view"

	access "github.com/frahmantamala/admin-access/internal/core/datamodel/access"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func toView(row *access.View) *view.View {
	return &view.View{ID: row.ID, Name: row.Name, IsActive: row.IsActive}
}

func (r *Repository) List(params view.ListParams) ([]*view.View, int64, error) {
	query := r.db.Model(&access.View{})

	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.Search != "" {
		query = query.Where("name LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, access.TranslateError(err, "view")
	}

	var rows []access.View
	err := query.Order("id").Offset(params.Offset).Limit(params.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, access.TranslateError(err, "view")
	}

	views := make([]*view.View, 0, len(rows))
	for i := range rows {
		views = append(views, toView(&rows[i]))
	}
	return views, total, nil
}

func (r *Repository) GetByID(id int64) (*view.View, error) {
	var row access.View
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, access.TranslateError(err, "view")
	}
	return toView(&row), nil
}

func (r *Repository) Create(name string) (*view.View, error) {
	row := access.View{Name: name, IsActive: true}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, access.TranslateError(err, "view")
	}
	return toView(&row), nil
}

func (r *Repository) Update(id int64, name string) (*view.View, error) {
	return r.update(id, map[string]interface{}{"name": name})
}

func (r *Repository) SetActive(id int64, active bool) (*view.View, error) {
	return r.update(id, map[string]interface{}{"is_active": active})
}

func (r *Repository) update(id int64, updates map[string]interface{}) (*view.View, error) {
	result := r.db.Model(&access.View{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, access.TranslateError(result.Error, "view")
	}
	if result.RowsAffected == 0 {
		return nil, internal.NewNotFoundError("view", id)
	}
	return r.GetByID(id)
}

// SetForUser reconciles the user's direct view rows and bumps access_version
// in the same transaction when anything changed.
func (r *Repository) SetForUser(userID int64, viewIDs []int64) ([]*view.View, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		changed, err := reconcileAttachments(tx, "user_id", userID, viewIDs)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return bumpAccessVersion(tx, "id = ?", userID)
	})
	if err != nil {
		return nil, err
	}
	return r.GrantedToUser(userID)
}

// SetForApp reconciles an app's view rows. Every user holding the app
// inherits these views in their token bundle, so all of them get an
// access_version bump in the same transaction.
func (r *Repository) SetForApp(appID int64, viewIDs []int64) ([]*view.View, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		changed, err := reconcileAttachments(tx, "app_id", appID, viewIDs)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return bumpAccessVersion(tx,
			"id IN (SELECT user_id FROM app_users WHERE app_id = ?)", appID)
	})
	if err != nil {
		return nil, err
	}
	return r.GrantedToApp(appID)
}

func reconcileAttachments(tx *gorm.DB, subjectColumn string, subjectID int64, viewIDs []int64) (bool, error) {
	desired := map[int64]struct{}{}
	for _, viewID := range viewIDs {
		desired[viewID] = struct{}{}
	}

	var current []access.AppViewUser
	if err := tx.Where(subjectColumn+" = ?", subjectID).Find(&current).Error; err != nil {
		return false, access.TranslateError(err, "view grant")
	}

	existing := map[int64]struct{}{}
	var removeIDs []int64
	for _, grant := range current {
		existing[grant.ViewID] = struct{}{}
		if _, keep := desired[grant.ViewID]; !keep {
			removeIDs = append(removeIDs, grant.ViewID)
		}
	}

	changed := len(removeIDs) > 0

	if len(removeIDs) > 0 {
		err := tx.Where(subjectColumn+" = ? AND view_id IN ?", subjectID, removeIDs).
			Delete(&access.AppViewUser{}).Error
		if err != nil {
			return false, access.TranslateError(err, "view grant")
		}
	}

	for _, viewID := range viewIDs {
		if _, have := existing[viewID]; have {
			continue
		}
		grant := access.AppViewUser{ViewID: viewID}
		if subjectColumn == "user_id" {
			grant.UserID = &subjectID
		} else {
			grant.AppID = &subjectID
		}
		if err := tx.Create(&grant).Error; err != nil {
			return false, access.TranslateError(err, "view grant")
		}
		changed = true
	}

	return changed, nil
}

func bumpAccessVersion(tx *gorm.DB, condition string, arg int64) error {
	err := tx.Model(&access.User{}).
		Where(condition, arg).
		Update("access_version", gorm.Expr("access_version + 1")).Error
	if err != nil {
		return access.TranslateError(err, "user")
	}
	return nil
}

func (r *Repository) GrantedToUser(userID int64) ([]*view.View, error) {
	return r.granted("avu.user_id", userID)
}

func (r *Repository) GrantedToApp(appID int64) ([]*view.View, error) {
	return r.granted("avu.app_id", appID)
}

func (r *Repository) granted(subjectColumn string, subjectID int64) ([]*view.View, error) {
	var rows []access.View
	err := r.db.
		Joins("JOIN app_view_users avu ON avu.view_id = views.id").
		Where(subjectColumn+" = ?", subjectID).
		Order("avu.id").
		Find(&rows).Error
	if err != nil {
		return nil, access.TranslateError(err, "view")
	}

	views := make([]*view.View, 0, len(rows))
	for i := range rows {
		views = append(views, toView(&rows[i]))
	}
	return views, nil
}

func (r *Repository) AvailableForUser(userID int64) ([]*view.View, error) {
	return r.available("user_id", userID)
}

func (r *Repository) AvailableForApp(appID int64) ([]*view.View, error) {
	return r.available("app_id", appID)
}

// available lists active views not yet attached to the subject.
func (r *Repository) available(subjectColumn string, subjectID int64) ([]*view.View, error) {
	var rows []access.View
	err := r.db.
		Where("is_active = ?", true).
		Where("id NOT IN (?)",
			r.db.Model(&access.AppViewUser{}).
				Select("view_id").
				Where(subjectColumn+" = ?", subjectID),
		).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, access.TranslateError(err, "view")
	}

	views := make([]*view.View, 0, len(rows))
	for i := range rows {
		views = append(views, toView(&rows[i]))
	}
	return views, nil
}

var _ view.Repository = (*Repository)(nil)
