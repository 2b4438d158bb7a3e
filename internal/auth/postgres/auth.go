package postgres

import (
	"errors"

	"github.com/frahmantamala/admin-access/internal/auth"
	access "github.com/frahmantamala/admin-access/internal/core/datamodel/access"
	"gorm.io/gorm"
)

// Repository implements auth.Repository against the relational credential
// store. All reads run against current rows; nothing is cached between
// calls.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func toDomainUser(row *access.User) *auth.User {
	return &auth.User{
		ID:              row.ID,
		Username:        row.Username,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		Email:           row.Email,
		Phone:           row.Phone,
		PasswordHash:    row.PasswordHash,
		PasswordTemp:    row.PasswordTemp,
		PasswordVersion: row.PasswordVersion,
		AccessVersion:   row.AccessVersion,
		IsActive:        row.IsActive,
		UserGroupID:     row.UserGroupID,
	}
}

func (r *Repository) GetUserByID(id int64) (*auth.User, error) {
	var row access.User
	err := r.db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(&row), nil
}

// GetUserByIdentifier matches the identifier against username, email or
// phone; the caller does not say which one it is.
func (r *Repository) GetUserByIdentifier(identifier string) (*auth.User, error) {
	var row access.User
	err := r.db.Where("username = ? OR email = ? OR phone = ?", identifier, identifier, identifier).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(&row), nil
}

// ActiveAppsForUser returns the user's active apps in grant-creation order.
func (r *Repository) ActiveAppsForUser(userID int64) ([]auth.AppRef, error) {
	rows, err := r.db.Model(&access.App{}).
		Select("apps.id, apps.name").
		Joins("JOIN app_users ON app_users.app_id = apps.id").
		Where("app_users.user_id = ? AND apps.is_active = ?", userID, true).
		Order("app_users.id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []auth.AppRef
	for rows.Next() {
		var app auth.AppRef
		if err := rows.Scan(&app.ID, &app.Name); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *Repository) ActiveViewNamesForUser(userID int64) ([]string, error) {
	return r.viewNames("app_view_users.user_id = ?", userID)
}

func (r *Repository) ActiveViewNamesForApp(appID int64) ([]string, error) {
	return r.viewNames("app_view_users.app_id = ?", appID)
}

func (r *Repository) viewNames(cond string, arg int64) ([]string, error) {
	rows, err := r.db.Model(&access.View{}).
		Select("views.name").
		Joins("JOIN app_view_users ON app_view_users.view_id = views.id").
		Where(cond, arg).
		Where("views.is_active = ?", true).
		Order("app_view_users.id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PermissionForFunction returns the permission linked to a function, or nil
// when the function is unmapped (and therefore open).
func (r *Repository) PermissionForFunction(functionID int64) (*auth.PermissionRef, error) {
	var link access.PermissionFunction
	err := r.db.Where("function_id = ?", functionID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var perm access.Permission
	if err := r.db.Where("id = ?", link.PermissionID).First(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &auth.PermissionRef{ID: perm.ID, Name: perm.Name, IsActive: perm.IsActive}, nil
}

func (r *Repository) GroupHasPermissionNamed(groupID int64, name string) (bool, error) {
	return r.grantExists("user_permission_groups.group_id = ?", groupID, name)
}

func (r *Repository) UserHasPermissionNamed(userID int64, name string) (bool, error) {
	return r.grantExists("user_permission_groups.user_id = ?", userID, name)
}

// grantExists joins grants to permissions and matches by permission name,
// preserving the name-keyed comparison of the deployed system.
func (r *Repository) grantExists(cond string, id int64, name string) (bool, error) {
	var count int64
	err := r.db.Model(&access.UserPermissionGroup{}).
		Joins("JOIN permissions ON permissions.id = user_permission_groups.permission_id").
		Where(cond, id).
		Where("permissions.name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdatePassword applies the credential change and the version bump in a
// single transaction so no token can observe one without the other.
func (r *Repository) UpdatePassword(userID int64, passwordHash string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&access.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"password_hash":    passwordHash,
				"password_temp":    nil,
				"password_version": gorm.Expr("password_version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

var _ auth.Repository = (*Repository)(nil)
