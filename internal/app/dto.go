package app

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

type AppDTO struct {
	Name string `json:"name"`
}

func (d *AppDTO) Validate() error {
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

type SetGrantsDTO struct {
	AppIDs []int64 `json:"apps"`
}

type SelectOption struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type ListResponse struct {
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Total  int64  `json:"total"`
	Data   []*App `json:"data"`
}

type SelectResponse struct {
	Data []SelectOption `json:"data"`
}

type GrantsResponse struct {
	Data []*App `json:"data"`
}
