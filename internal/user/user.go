package user

import (
	access "github.com/frahmantamala/admin-access/internal/core/datamodel/access"
)

// User is the administrative projection of an account. The password digest
// never leaves the store layer; TempPassword is populated only on the
// create/reset responses that generated it.
type User struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	PasswordVersion int     `json:"password_version"`
	AccessVersion   int     `json:"access_version"`
	IsActive        bool    `json:"is_active"`
	UserGroupID     *int64  `json:"user_group"`
	UserGroupName   string  `json:"user_group_name,omitempty"`
	ForcedChange    bool    `json:"password_change_required"`
}

// Repository is the store surface for user administration. Mutations that
// change authorization-relevant state run in one transaction with their
// version bumps.
type Repository interface {
	List(params ListParams) ([]*User, int64, error)
	GetByID(id int64) (*User, error)
	Create(row *access.User) (*User, error)
	Update(id int64, updates map[string]interface{}) (*User, error)
	SetActive(id int64, active bool) (*User, error)

	// SetTempPassword stores a new digest and its temp marker without
	// bumping password_version; old tokens are locked out by the temp flag.
	SetTempPassword(id int64, passwordHash, tempHash string) (*User, error)
}

func FromRow(row *access.User) *User {
	return &User{
		ID:              row.ID,
		Username:        row.Username,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		Email:           row.Email,
		Phone:           row.Phone,
		PasswordVersion: row.PasswordVersion,
		AccessVersion:   row.AccessVersion,
		IsActive:        row.IsActive,
		UserGroupID:     row.UserGroupID,
		ForcedChange:    row.PasswordTemp != nil,
	}
}
