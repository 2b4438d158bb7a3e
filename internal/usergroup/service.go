package usergroup

import "log/slog"

type ServiceAPI interface {
	List(params ListParams) ([]*Group, int64, error)
	GetByID(id int64) (*GroupDetail, error)
	Create(dto GroupDTO) (*Group, error)
	Update(id int64, dto GroupDTO) (*Group, error)
	SetActive(id int64, active bool) (*Group, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(params ListParams) ([]*Group, int64, error) {
	params.Normalize()
	return s.repo.List(params)
}

func (s *Service) GetByID(id int64) (*GroupDetail, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto GroupDTO) (*Group, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(dto.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user group created", "group_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) Update(id int64, dto GroupDTO) (*Group, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(id, dto.Name)
}

// SetActive flips the group flag only. Member tokens stay valid.
func (s *Service) SetActive(id int64, active bool) (*Group, error) {
	updated, err := s.repo.SetActive(id, active)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user group active flag changed", "group_id", id, "is_active", active)
	return updated, nil
}

var _ ServiceAPI = (*Service)(nil)
