package user

import "strings"

const (
	DefaultLimit = 150
	MaxLimit     = 500
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ListParams carries the query filters for the user listing.
type ListParams struct {
	Active     *bool
	Group      *int64
	Search     string
	Offset     int
	Limit      int
	ModeSelect bool
}

func (p *ListParams) Normalize() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

type CreateUserDTO struct {
	Username    string  `json:"username"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	UserGroupID *int64  `json:"user_group"`
}

func (d *CreateUserDTO) Validate() error {
	d.Username = strings.TrimSpace(d.Username)
	d.FirstName = strings.TrimSpace(d.FirstName)
	if d.Username == "" {
		return &ValidationError{Msg: "username is required"}
	}
	if d.FirstName == "" {
		return &ValidationError{Msg: "first_name is required"}
	}
	return nil
}

// UpdateUserDTO uses pointers so absent fields are left untouched.
type UpdateUserDTO struct {
	Username    *string `json:"username"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	UserGroupID *int64  `json:"user_group"`
}

func (d *UpdateUserDTO) Updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if d.Username != nil {
		updates["username"] = strings.TrimSpace(*d.Username)
	}
	if d.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*d.FirstName)
	}
	if d.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*d.LastName)
	}
	if d.Email != nil {
		updates["email"] = *d.Email
	}
	if d.Phone != nil {
		updates["phone"] = *d.Phone
	}
	if d.UserGroupID != nil {
		updates["user_group_id"] = *d.UserGroupID
	}
	return updates
}

type OnOffDTO struct {
	IsActive *bool `json:"is_active"`
}

func (d *OnOffDTO) Validate() error {
	if d.IsActive == nil {
		return &ValidationError{Msg: "is_active is required"}
	}
	return nil
}

// SelectOption is the label/value projection for dropdown consumers.
type SelectOption struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type ListResponse struct {
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
	Total  int64   `json:"total"`
	Data   []*User `json:"data"`
}

type SelectResponse struct {
	Data []SelectOption `json:"data"`
}

// CreatedUser carries the one-time temp password back to the operator.
type CreatedUser struct {
	*User
	TempPassword string `json:"temp_password"`
}
