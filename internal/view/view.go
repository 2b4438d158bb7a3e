package view

// View is a UI surface identifier. Views reach users either directly or via
// an app; both attachment kinds live in app_view_users and both feed the
// token bundle.
type View struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type Repository interface {
	List(params ListParams) ([]*View, int64, error)
	GetByID(id int64) (*View, error)
	Create(name string) (*View, error)
	Update(id int64, name string) (*View, error)
	SetActive(id int64, active bool) (*View, error)

	// SetForUser reconciles the user's direct view attachments and bumps
	// the user's access_version in the same transaction.
	SetForUser(userID int64, viewIDs []int64) ([]*View, error)

	// SetForApp reconciles an app's view attachments and bumps
	// access_version for every user granted that app, same transaction.
	SetForApp(appID int64, viewIDs []int64) ([]*View, error)

	GrantedToUser(userID int64) ([]*View, error)
	GrantedToApp(appID int64) ([]*View, error)
	AvailableForUser(userID int64) ([]*View, error)
	AvailableForApp(appID int64) ([]*View, error)
}
