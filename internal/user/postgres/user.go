package postgres

import (
	"errors"

	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/user"

	access "github.com/frahmantamala/admin-access/internal/core/datamodel/access"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(params user.ListParams) ([]*user.User, int64, error) {
	query := r.db.Model(&access.User{})

	if params.Active != nil {
		query = query.Where("users.is_active = ?", *params.Active)
	}
	if params.Group != nil {
		query = query.Where("users.user_group_id = ?", *params.Group)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where(
			"users.username LIKE ? OR users.first_name LIKE ? OR users.last_name LIKE ? OR users.email LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, access.TranslateError(err, "user")
	}

	var rows []access.User
	err := query.Order("users.id").Offset(params.Offset).Limit(params.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, access.TranslateError(err, "user")
	}

	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		u := user.FromRow(&rows[i])
		users = append(users, u)
	}
	if err := r.fillGroupNames(users); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	var row access.User
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, access.TranslateError(err, "user")
	}

	found := user.FromRow(&row)
	if err := r.fillGroupNames([]*user.User{found}); err != nil {
		return nil, err
	}
	return found, nil
}

func (r *Repository) Create(row *access.User) (*user.User, error) {
	if err := r.db.Create(row).Error; err != nil {
		return nil, access.TranslateError(err, "user")
	}
	return r.GetByID(row.ID)
}

func (r *Repository) Update(id int64, updates map[string]interface{}) (*user.User, error) {
	result := r.db.Model(&access.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, access.TranslateError(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return nil, internal.NewNotFoundError("user", id)
	}
	return r.GetByID(id)
}

func (r *Repository) SetActive(id int64, active bool) (*user.User, error) {
	return r.Update(id, map[string]interface{}{"is_active": active})
}

func (r *Repository) SetTempPassword(id int64, passwordHash, tempHash string) (*user.User, error) {
	return r.Update(id, map[string]interface{}{
		"password_hash": passwordHash,
		"password_temp": tempHash,
	})
}

// fillGroupNames resolves user_group_id to the group name for display. Group
// lookups tolerate dangling references so a deleted group does not break the
// listing.
func (r *Repository) fillGroupNames(users []*user.User) error {
	ids := map[int64]struct{}{}
	for _, u := range users {
		if u.UserGroupID != nil {
			ids[*u.UserGroupID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	groupIDs := make([]int64, 0, len(ids))
	for id := range ids {
		groupIDs = append(groupIDs, id)
	}

	var groups []access.UserGroup
	if err := r.db.Where("id IN ?", groupIDs).Find(&groups).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return access.TranslateError(err, "user group")
	}

	names := make(map[int64]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	for _, u := range users {
		if u.UserGroupID != nil {
			u.UserGroupName = names[*u.UserGroupID]
		}
	}
	return nil
}

var _ user.Repository = (*Repository)(nil)
