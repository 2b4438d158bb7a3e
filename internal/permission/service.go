package permission

import "log/slog"

type ServiceAPI interface {
	List(params ListParams) ([]*Permission, int64, error)
	GetByID(id int64) (*PermissionDetail, error)
	Create(dto PermissionDTO) (*Permission, error)
	Update(id int64, dto PermissionDTO) (*Permission, error)
	SetActive(id int64, active bool) (*Permission, error)
	SetFunctions(permissionID int64, dto SetFunctionsDTO) (*PermissionDetail, error)

	SetForUser(userID int64, dto SetGrantsDTO) ([]*Permission, error)
	SetForGroup(groupID int64, dto SetGrantsDTO) ([]*Permission, error)
	GrantedToUser(userID int64) ([]*Permission, error)
	GrantedToGroup(groupID int64) ([]*Permission, error)
	AvailableForUser(userID int64) ([]*Permission, error)
	AvailableForGroup(groupID int64) ([]*Permission, error)

	ListFunctions(params FunctionListParams) ([]*Function, int64, error)
	GetFunction(id int64) (*Function, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(params ListParams) ([]*Permission, int64, error) {
	params.Normalize()
	return s.repo.List(params)
}

func (s *Service) GetByID(id int64) (*PermissionDetail, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto PermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(dto.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("permission created", "permission_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) Update(id int64, dto PermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(id, dto.Name)
}

func (s *Service) SetActive(id int64, active bool) (*Permission, error) {
	updated, err := s.repo.SetActive(id, active)
	if err != nil {
		return nil, err
	}
	s.logger.Info("permission active flag changed", "permission_id", id, "is_active", active)
	return updated, nil
}

func (s *Service) SetFunctions(permissionID int64, dto SetFunctionsDTO) (*PermissionDetail, error) {
	detail, err := s.repo.SetFunctions(permissionID, dto.FunctionIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("permission functions reconciled",
		"permission_id", permissionID, "function_count", len(detail.Functions))
	return detail, nil
}

func (s *Service) SetForUser(userID int64, dto SetGrantsDTO) ([]*Permission, error) {
	granted, err := s.repo.SetForUser(userID, dto.PermissionIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user permissions reconciled", "user_id", userID, "count", len(granted))
	return granted, nil
}

func (s *Service) SetForGroup(groupID int64, dto SetGrantsDTO) ([]*Permission, error) {
	granted, err := s.repo.SetForGroup(groupID, dto.PermissionIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("group permissions reconciled", "group_id", groupID, "count", len(granted))
	return granted, nil
}

func (s *Service) GrantedToUser(userID int64) ([]*Permission, error) {
	return s.repo.GrantedToUser(userID)
}

func (s *Service) GrantedToGroup(groupID int64) ([]*Permission, error) {
	return s.repo.GrantedToGroup(groupID)
}

func (s *Service) AvailableForUser(userID int64) ([]*Permission, error) {
	return s.repo.AvailableForUser(userID)
}

func (s *Service) AvailableForGroup(groupID int64) ([]*Permission, error) {
	return s.repo.AvailableForGroup(groupID)
}

func (s *Service) ListFunctions(params FunctionListParams) ([]*Function, int64, error) {
	params.Normalize()
	return s.repo.ListFunctions(params)
}

func (s *Service) GetFunction(id int64) (*Function, error) {
	return s.repo.GetFunction(id)
}

var _ ServiceAPI = (*Service)(nil)
