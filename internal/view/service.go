package view

import "log/slog"

type ServiceAPI interface {
	List(params ListParams) ([]*View, int64, error)
	GetByID(id int64) (*View, error)
	Create(dto ViewDTO) (*View, error)
	Update(id int64, dto ViewDTO) (*View, error)
	SetActive(id int64, active bool) (*View, error)
	SetForUser(userID int64, dto SetGrantsDTO) ([]*View, error)
	SetForApp(appID int64, dto SetGrantsDTO) ([]*View, error)
	GrantedToUser(userID int64) ([]*View, error)
	GrantedToApp(appID int64) ([]*View, error)
	AvailableForUser(userID int64) ([]*View, error)
	AvailableForApp(appID int64) ([]*View, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(params ListParams) ([]*View, int64, error) {
	params.Normalize()
	return s.repo.List(params)
}

func (s *Service) GetByID(id int64) (*View, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto ViewDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(dto.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("view created", "view_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) Update(id int64, dto ViewDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(id, dto.Name)
}

func (s *Service) SetActive(id int64, active bool) (*View, error) {
	updated, err := s.repo.SetActive(id, active)
	if err != nil {
		return nil, err
	}
	s.logger.Info("view active flag changed", "view_id", id, "is_active", active)
	return updated, nil
}

func (s *Service) SetForUser(userID int64, dto SetGrantsDTO) ([]*View, error) {
	granted, err := s.repo.SetForUser(userID, dto.ViewIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user views reconciled", "user_id", userID, "count", len(granted))
	return granted, nil
}

func (s *Service) SetForApp(appID int64, dto SetGrantsDTO) ([]*View, error) {
	granted, err := s.repo.SetForApp(appID, dto.ViewIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("app views reconciled", "app_id", appID, "count", len(granted))
	return granted, nil
}

func (s *Service) GrantedToUser(userID int64) ([]*View, error) {
	return s.repo.GrantedToUser(userID)
}

func (s *Service) GrantedToApp(appID int64) ([]*View, error) {
	return s.repo.GrantedToApp(appID)
}

func (s *Service) AvailableForUser(userID int64) ([]*View, error) {
	return s.repo.AvailableForUser(userID)
}

func (s *Service) AvailableForApp(appID int64) ([]*View, error) {
	return s.repo.AvailableForApp(appID)
}

var _ ServiceAPI = (*Service)(nil)
