package usergroup

// Group is a named role bundle. Permissions are attached via the grant
// reconciler and resolved live at verification time.
type Group struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// GroupDetail includes the permissions currently granted to the group.
type GroupDetail struct {
	Group
	Permissions []GrantedPermission `json:"permissions"`
}

type GrantedPermission struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type Repository interface {
	List(params ListParams) ([]*Group, int64, error)
	GetByID(id int64) (*GroupDetail, error)
	Create(name string) (*Group, error)
	Update(id int64, name string) (*Group, error)
	SetActive(id int64, active bool) (*Group, error)
}
