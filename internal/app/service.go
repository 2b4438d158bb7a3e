package app

import "log/slog"

type ServiceAPI interface {
	List(params ListParams) ([]*App, int64, error)
	GetByID(id int64) (*App, error)
	Create(dto AppDTO) (*App, error)
	Update(id int64, dto AppDTO) (*App, error)
	SetActive(id int64, active bool) (*App, error)
	SetForUser(userID int64, dto SetGrantsDTO) ([]*App, error)
	GrantedToUser(userID int64) ([]*App, error)
	AvailableForUser(userID int64) ([]*App, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(params ListParams) ([]*App, int64, error) {
	params.Normalize()
	return s.repo.List(params)
}

func (s *Service) GetByID(id int64) (*App, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto AppDTO) (*App, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(dto.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("app created", "app_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) Update(id int64, dto AppDTO) (*App, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(id, dto.Name)
}

func (s *Service) SetActive(id int64, active bool) (*App, error) {
	updated, err := s.repo.SetActive(id, active)
	if err != nil {
		return nil, err
	}
	s.logger.Info("app active flag changed", "app_id", id, "is_active", active)
	return updated, nil
}

func (s *Service) SetForUser(userID int64, dto SetGrantsDTO) ([]*App, error) {
	granted, err := s.repo.SetForUser(userID, dto.AppIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user apps reconciled", "user_id", userID, "count", len(granted))
	return granted, nil
}

func (s *Service) GrantedToUser(userID int64) ([]*App, error) {
	return s.repo.GrantedToUser(userID)
}

func (s *Service) AvailableForUser(userID int64) ([]*App, error) {
	return s.repo.AvailableForUser(userID)
}

var _ ServiceAPI = (*Service)(nil)
