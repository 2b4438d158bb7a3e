package user

import (
	"log/slog"

	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/auth"
	access "github.com/frahmantamala/admin-access/internal/core/datamodel/access"
)

type ServiceAPI interface {
	List(params ListParams) ([]*User, int64, error)
	GetByID(id int64) (*User, error)
	Create(dto CreateUserDTO) (*CreatedUser, error)
	Update(id int64, dto UpdateUserDTO) (*User, error)
	SetActive(id int64, active bool) (*User, error)
	ResetPassword(id int64) (*CreatedUser, error)
}

type Service struct {
	repo        Repository
	bcryptCost  int
	tempPassLen int
	logger      *slog.Logger
}

func NewService(repo Repository, bcryptCost, tempPassLen int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		bcryptCost:  bcryptCost,
		tempPassLen: tempPassLen,
		logger:      logger,
	}
}

func (s *Service) List(params ListParams) ([]*User, int64, error) {
	params.Normalize()
	return s.repo.List(params)
}

func (s *Service) GetByID(id int64) (*User, error) {
	return s.repo.GetByID(id)
}

// Create provisions an account locked behind a generated temp password. The
// plaintext is returned exactly once; only bcrypt digests are stored.
func (s *Service) Create(dto CreateUserDTO) (*CreatedUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	plain, err := auth.GenerateTempPassword(s.tempPassLen)
	if err != nil {
		return nil, internal.NewInternalError("generate temp password", err)
	}

	hash, err := auth.HashPassword(plain, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("hash password", err)
	}

	row := &access.User{
		Username:        dto.Username,
		FirstName:       dto.FirstName,
		LastName:        dto.LastName,
		Email:           dto.Email,
		Phone:           dto.Phone,
		PasswordHash:    hash,
		PasswordTemp:    &hash,
		PasswordVersion: 1,
		AccessVersion:   1,
		IsActive:        true,
		UserGroupID:     dto.UserGroupID,
	}

	created, err := s.repo.Create(row)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", created.ID, "username", created.Username)
	return &CreatedUser{User: created, TempPassword: plain}, nil
}

func (s *Service) Update(id int64, dto UpdateUserDTO) (*User, error) {
	updates := dto.Updates()
	if len(updates) == 0 {
		return s.repo.GetByID(id)
	}
	return s.repo.Update(id, updates)
}

func (s *Service) SetActive(id int64, active bool) (*User, error) {
	updated, err := s.repo.SetActive(id, active)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user active flag changed", "user_id", id, "is_active", active)
	return updated, nil
}

// ResetPassword issues a fresh temp password. password_version is left alone;
// the temp marker alone locks out previously issued tokens.
func (s *Service) ResetPassword(id int64) (*CreatedUser, error) {
	plain, err := auth.GenerateTempPassword(s.tempPassLen)
	if err != nil {
		return nil, internal.NewInternalError("generate temp password", err)
	}

	hash, err := auth.HashPassword(plain, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("hash password", err)
	}

	updated, err := s.repo.SetTempPassword(id, hash, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user password reset", "user_id", id)
	return &CreatedUser{User: updated, TempPassword: plain}, nil
}

var _ ServiceAPI = (*Service)(nil)
