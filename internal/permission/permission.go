package permission

// Permission is a named capability. Functions attach to it through link rows;
// disabling a permission detaches its functions in the same transaction so
// they return to the assignable pool.
type Permission struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// PermissionDetail includes the functions currently linked to the permission.
type PermissionDetail struct {
	Permission
	Functions []Function `json:"functions"`
}

// Function is a protected operation identifier, referenced by the route
// table. IsAssigned mirrors whether any permission currently links it.
type Function struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsAssigned bool   `json:"is_assigned"`
}

type Repository interface {
	List(params ListParams) ([]*Permission, int64, error)
	GetByID(id int64) (*PermissionDetail, error)
	Create(name string) (*Permission, error)
	Update(id int64, name string) (*Permission, error)

	// SetActive(false) clears the permission's function links and resets
	// their is_assigned flags atomically with the flag change.
	SetActive(id int64, active bool) (*Permission, error)

	// SetFunctions reconciles the permission's function links against the
	// desired set in one transaction, maintaining functions.is_assigned.
	SetFunctions(permissionID int64, functionIDs []int64) (*PermissionDetail, error)

	// SetForUser and SetForGroup reconcile direct permission grants. Grant
	// changes do not touch access_version; verification reads grants live.
	SetForUser(userID int64, permissionIDs []int64) ([]*Permission, error)
	SetForGroup(groupID int64, permissionIDs []int64) ([]*Permission, error)

	GrantedToUser(userID int64) ([]*Permission, error)
	GrantedToGroup(groupID int64) ([]*Permission, error)
	AvailableForUser(userID int64) ([]*Permission, error)
	AvailableForGroup(groupID int64) ([]*Permission, error)

	ListFunctions(params FunctionListParams) ([]*Function, int64, error)
	GetFunction(id int64) (*Function, error)
}
