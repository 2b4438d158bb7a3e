package app

// App is a product surface users can be granted access to. App grants feed
// the token bundle, so grant changes invalidate outstanding tokens via an
// access_version bump.
type App struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type Repository interface {
	List(params ListParams) ([]*App, int64, error)
	GetByID(id int64) (*App, error)
	Create(name string) (*App, error)
	Update(id int64, name string) (*App, error)
	SetActive(id int64, active bool) (*App, error)

	// SetForUser reconciles app_users rows against the desired set and bumps
	// the user's access_version in the same transaction.
	SetForUser(userID int64, appIDs []int64) ([]*App, error)

	GrantedToUser(userID int64) ([]*App, error)
	AvailableForUser(userID int64) ([]*App, error)
}
