package permission

import "strings"

const (
	DefaultLimit = 150
	MaxLimit     = 500
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type ListParams struct {
	Active     *bool
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

// FunctionListParams filters the function registry. Available selects
// functions no permission has claimed; Permission selects those linked to a
// specific permission.
type FunctionListParams struct {
	Search     string
	Available  *bool
	Permission *int64
	Offset     int
	Limit      int
}

func (p *FunctionListParams) Normalize() {
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

type PermissionDTO struct {
	Name string `json:"name"`
}

func (d *PermissionDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return &ValidationError{Msg: "name is required"}
	}
	return nil
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

type SetFunctionsDTO struct {
	FunctionIDs []int64 `json:"functions"`
}

type SetGrantsDTO struct {
	PermissionIDs []int64 `json:"permissions"`
}

type SelectOption struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type ListResponse struct {
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
	Total  int64         `json:"total"`
	Data   []*Permission `json:"data"`
}

type SelectResponse struct {
	Data []SelectOption `json:"data"`
}

type GrantsResponse struct {
	Data []*Permission `json:"data"`
}

type FunctionListResponse struct {
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
	Total  int64       `json:"total"`
	Data   []*Function `json:"data"`
}
