package postgres

import (
	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/usergroup"

	access "github.com/frahmantamala/admin-access/internal/core/datamodel/access"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func toGroup(row *access.UserGroup) *usergroup.Group {
	return &usergroup.Group{ID: row.ID, Name: row.Name, IsActive: row.IsActive}
}

func (r *Repository) List(params usergroup.ListParams) ([]*usergroup.Group, int64, error) {
	query := r.db.Model(&access.UserGroup{})

	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.Search != "" {
		query = query.Where("name LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, access.TranslateError(err, "user group")
	}

	var rows []access.UserGroup
	err := query.Order("id").Offset(params.Offset).Limit(params.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, access.TranslateError(err, "user group")
	}

	groups := make([]*usergroup.Group, 0, len(rows))
	for i := range rows {
		groups = append(groups, toGroup(&rows[i]))
	}
	return groups, total, nil
}

func (r *Repository) GetByID(id int64) (*usergroup.GroupDetail, error) {
	var row access.UserGroup
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, access.TranslateError(err, "user group")
	}

	var perms []access.Permission
	err := r.db.
		Joins("JOIN user_permission_groups upg ON upg.permission_id = permissions.id").
		Where("upg.group_id = ?", id).
		Order("upg.id").
		Find(&perms).Error
	if err != nil {
		return nil, access.TranslateError(err, "user group")
	}

	detail := &usergroup.GroupDetail{
		Group:       *toGroup(&row),
		Permissions: make([]usergroup.GrantedPermission, 0, len(perms)),
	}
	for _, p := range perms {
		detail.Permissions = append(detail.Permissions, usergroup.GrantedPermission{
			ID:       p.ID,
			Name:     p.Name,
			IsActive: p.IsActive,
		})
	}
	return detail, nil
}

func (r *Repository) Create(name string) (*usergroup.Group, error) {
	row := access.UserGroup{Name: name, IsActive: true}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, access.TranslateError(err, "user group")
	}
	return toGroup(&row), nil
}

func (r *Repository) Update(id int64, name string) (*usergroup.Group, error) {
	return r.update(id, map[string]interface{}{"name": name})
}

func (r *Repository) SetActive(id int64, active bool) (*usergroup.Group, error) {
	return r.update(id, map[string]interface{}{"is_active": active})
}

func (r *Repository) update(id int64, updates map[string]interface{}) (*usergroup.Group, error) {
	result := r.db.Model(&access.UserGroup{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, access.TranslateError(result.Error, "user group")
	}
	if result.RowsAffected == 0 {
		return nil, internal.NewNotFoundError("user group", id)
	}

	var row access.UserGroup
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, access.TranslateError(err, "user group")
	}
	return toGroup(&row), nil
}

var _ usergroup.Repository = (*Repository)(nil)
