package postgres

import (
	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/permission"

	access "github.com/frahmantamala/admin-access/internal/core/datamodel/access"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func toPermission(row *access.Permission) *permission.Permission {
	return &permission.Permission{ID: row.ID, Name: row.Name, IsActive: row.IsActive}
}

func toFunction(row *access.Function) *permission.Function {
	return &permission.Function{ID: row.ID, Name: row.Name, IsAssigned: row.IsAssigned}
}

func (r *Repository) List(params permission.ListParams) ([]*permission.Permission, int64, error) {
	query := r.db.Model(&access.Permission{})

	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.Search != "" {
		query = query.Where("name LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, access.TranslateError(err, "permission")
	}

	var rows []access.Permission
	err := query.Order("id").Offset(params.Offset).Limit(params.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, access.TranslateError(err, "permission")
	}

	perms := make([]*permission.Permission, 0, len(rows))
	for i := range rows {
		perms = append(perms, toPermission(&rows[i]))
	}
	return perms, total, nil
}

func (r *Repository) GetByID(id int64) (*permission.PermissionDetail, error) {
	return r.detail(r.db, id)
}

func (r *Repository) detail(tx *gorm.DB, id int64) (*permission.PermissionDetail, error) {
	var row access.Permission
	if err := tx.First(&row, id).Error; err != nil {
		return nil, access.TranslateError(err, "permission")
	}

	var fns []access.Function
	err := tx.
		Joins("JOIN permission_functions pf ON pf.function_id = functions.id").
		Where("pf.permission_id = ?", id).
		Order("pf.id").
		Find(&fns).Error
	if err != nil {
		return nil, access.TranslateError(err, "permission")
	}

	detail := &permission.PermissionDetail{
		Permission: *toPermission(&row),
		Functions:  make([]permission.Function, 0, len(fns)),
	}
	for i := range fns {
		detail.Functions = append(detail.Functions, *toFunction(&fns[i]))
	}
	return detail, nil
}

func (r *Repository) Create(name string) (*permission.Permission, error) {
	row := access.Permission{Name: name, IsActive: true}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, access.TranslateError(err, "permission")
	}
	return toPermission(&row), nil
}

func (r *Repository) Update(id int64, name string) (*permission.Permission, error) {
	result := r.db.Model(&access.Permission{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return nil, access.TranslateError(result.Error, "permission")
	}
	if result.RowsAffected == 0 {
		return nil, internal.NewNotFoundError("permission", id)
	}
	return r.get(id)
}

func (r *Repository) get(id int64) (*permission.Permission, error) {
	var row access.Permission
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, access.TranslateError(err, "permission")
	}
	return toPermission(&row), nil
}

// SetActive disables or enables a permission. Disabling also clears its
// function links and returns the detached functions to the assignable pool,
// all in one transaction so the route table never observes a half-cascaded
// state.
func (r *Repository) SetActive(id int64, active bool) (*permission.Permission, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&access.Permission{}).Where("id = ?", id).Update("is_active", active)
		if result.Error != nil {
			return access.TranslateError(result.Error, "permission")
		}
		if result.RowsAffected == 0 {
			return internal.NewNotFoundError("permission", id)
		}
		if active {
			return nil
		}

		var linkedIDs []int64
		err := tx.Model(&access.PermissionFunction{}).
			Where("permission_id = ?", id).
			Pluck("function_id", &linkedIDs).Error
		if err != nil {
			return access.TranslateError(err, "permission")
		}
		if len(linkedIDs) == 0 {
			return nil
		}

		if err := tx.Where("permission_id = ?", id).Delete(&access.PermissionFunction{}).Error; err != nil {
			return access.TranslateError(err, "permission")
		}
		err = tx.Model(&access.Function{}).
			Where("id IN ?", linkedIDs).
			Update("is_assigned", false).Error
		if err != nil {
			return access.TranslateError(err, "function")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.get(id)
}

// SetFunctions reconciles permission_functions against the desired set:
// links absent from the set are removed and their functions unassigned,
// missing links are inserted and their functions marked assigned. Existing
// links are untouched, so repeated calls with the same set are no-ops.
func (r *Repository) SetFunctions(permissionID int64, functionIDs []int64) (*permission.PermissionDetail, error) {
	desired := map[int64]struct{}{}
	for _, fnID := range functionIDs {
		desired[fnID] = struct{}{}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row access.Permission
		if err := tx.First(&row, permissionID).Error; err != nil {
			return access.TranslateError(err, "permission")
		}

		var current []access.PermissionFunction
		err := tx.Where("permission_id = ?", permissionID).Find(&current).Error
		if err != nil {
			return access.TranslateError(err, "permission")
		}

		existing := map[int64]struct{}{}
		var removeIDs []int64
		for _, link := range current {
			existing[link.FunctionID] = struct{}{}
			if _, keep := desired[link.FunctionID]; !keep {
				removeIDs = append(removeIDs, link.FunctionID)
			}
		}

		var addIDs []int64
		for _, fnID := range functionIDs {
			if _, have := existing[fnID]; !have {
				addIDs = append(addIDs, fnID)
			}
		}

		if len(removeIDs) > 0 {
			err := tx.Where("permission_id = ? AND function_id IN ?", permissionID, removeIDs).
				Delete(&access.PermissionFunction{}).Error
			if err != nil {
				return access.TranslateError(err, "permission")
			}
			err = tx.Model(&access.Function{}).
				Where("id IN ?", removeIDs).
				Update("is_assigned", false).Error
			if err != nil {
				return access.TranslateError(err, "function")
			}
		}

		for _, fnID := range addIDs {
			link := access.PermissionFunction{PermissionID: permissionID, FunctionID: fnID}
			if err := tx.Create(&link).Error; err != nil {
				return access.TranslateError(err, "function")
			}
		}
		if len(addIDs) > 0 {
			err := tx.Model(&access.Function{}).
				Where("id IN ?", addIDs).
				Update("is_assigned", true).Error
			if err != nil {
				return access.TranslateError(err, "function")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.detail(r.db, permissionID)
}

func (r *Repository) SetForUser(userID int64, permissionIDs []int64) ([]*permission.Permission, error) {
	err := r.reconcileGrants("user_id", userID, permissionIDs)
	if err != nil {
		return nil, err
	}
	return r.GrantedToUser(userID)
}

func (r *Repository) SetForGroup(groupID int64, permissionIDs []int64) ([]*permission.Permission, error) {
	err := r.reconcileGrants("group_id", groupID, permissionIDs)
	if err != nil {
		return nil, err
	}
	return r.GrantedToGroup(groupID)
}

// reconcileGrants diffs user_permission_groups rows for one subject column
// against the desired permission set. Grant changes leave access_version
// alone; verification reads grants live per request.
func (r *Repository) reconcileGrants(subjectColumn string, subjectID int64, permissionIDs []int64) error {
	desired := map[int64]struct{}{}
	for _, permID := range permissionIDs {
		desired[permID] = struct{}{}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var current []access.UserPermissionGroup
		err := tx.Where(subjectColumn+" = ?", subjectID).Find(&current).Error
		if err != nil {
			return access.TranslateError(err, "permission grant")
		}

		existing := map[int64]struct{}{}
		var removeIDs []int64
		for _, grant := range current {
			existing[grant.PermissionID] = struct{}{}
			if _, keep := desired[grant.PermissionID]; !keep {
				removeIDs = append(removeIDs, grant.PermissionID)
			}
		}

		if len(removeIDs) > 0 {
			err := tx.Where(subjectColumn+" = ? AND permission_id IN ?", subjectID, removeIDs).
				Delete(&access.UserPermissionGroup{}).Error
			if err != nil {
				return access.TranslateError(err, "permission grant")
			}
		}

		for _, permID := range permissionIDs {
			if _, have := existing[permID]; have {
				continue
			}
			grant := access.UserPermissionGroup{PermissionID: permID}
			if subjectColumn == "user_id" {
				grant.UserID = &subjectID
			} else {
				grant.GroupID = &subjectID
			}
			if err := tx.Create(&grant).Error; err != nil {
				return access.TranslateError(err, "permission grant")
			}
		}
		return nil
	})
}

func (r *Repository) GrantedToUser(userID int64) ([]*permission.Permission, error) {
	return r.granted("upg.user_id", userID)
}

func (r *Repository) GrantedToGroup(groupID int64) ([]*permission.Permission, error) {
	return r.granted("upg.group_id", groupID)
}

func (r *Repository) granted(subjectColumn string, subjectID int64) ([]*permission.Permission, error) {
	var rows []access.Permission
	err := r.db.
		Joins("JOIN user_permission_groups upg ON upg.permission_id = permissions.id").
		Where(subjectColumn+" = ?", subjectID).
		Order("upg.id").
		Find(&rows).Error
	if err != nil {
		return nil, access.TranslateError(err, "permission")
	}

	perms := make([]*permission.Permission, 0, len(rows))
	for i := range rows {
		perms = append(perms, toPermission(&rows[i]))
	}
	return perms, nil
}

func (r *Repository) AvailableForUser(userID int64) ([]*permission.Permission, error) {
	return r.available("user_id", userID)
}

func (r *Repository) AvailableForGroup(groupID int64) ([]*permission.Permission, error) {
	return r.available("group_id", groupID)
}

// available lists active permissions not yet granted to the subject.
func (r *Repository) available(subjectColumn string, subjectID int64) ([]*permission.Permission, error) {
	var rows []access.Permission
	err := r.db.
		Where("is_active = ?", true).
		Where("id NOT IN (?)",
			r.db.Model(&access.UserPermissionGroup{}).
				Select("permission_id").
				Where(subjectColumn+" = ?", subjectID),
		).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, access.TranslateError(err, "permission")
	}

	perms := make([]*permission.Permission, 0, len(rows))
	for i := range rows {
		perms = append(perms, toPermission(&rows[i]))
	}
	return perms, nil
}

func (r *Repository) ListFunctions(params permission.FunctionListParams) ([]*permission.Function, int64, error) {
	query := r.db.Model(&access.Function{})

	if params.Search != "" {
		query = query.Where("functions.name LIKE ?", "%"+params.Search+"%")
	}
	if params.Available != nil {
		query = query.Where("functions.is_assigned = ?", !*params.Available)
	}
	if params.Permission != nil {
		query = query.
			Joins("JOIN permission_functions pf ON pf.function_id = functions.id").
			Where("pf.permission_id = ?", *params.Permission)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, access.TranslateError(err, "function")
	}

	var rows []access.Function
	err := query.Order("functions.id").Offset(params.Offset).Limit(params.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, access.TranslateError(err, "function")
	}

	fns := make([]*permission.Function, 0, len(rows))
	for i := range rows {
		fns = append(fns, toFunction(&rows[i]))
	}
	return fns, total, nil
}

func (r *Repository) GetFunction(id int64) (*permission.Function, error) {
	var row access.Function
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, access.TranslateError(err, "function")
	}
	return toFunction(&row), nil
}

var _ permission.Repository = (*Repository)(nil)
