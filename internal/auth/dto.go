package auth

// LoginDTO accepts a username, email or phone as the identifier.
type LoginDTO struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type ChangePasswordDTO struct {
	NewPassword string `json:"new_password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d LoginDTO) Validate() error {
	if d.Identifier == "" {
		return ValidationError{Msg: "identifier is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d ChangePasswordDTO) Validate() error {
	if len(d.NewPassword) < 8 {
		return ValidationError{Msg: "new_password must be at least 8 characters"}
	}
	return nil
}
