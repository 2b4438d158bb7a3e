package auth

import (
	"log/slog"

	"github.com/frahmantamala/admin-access/internal"
)

// Service wires the codec, resolver, validator and verifier into the
// operations transport consumes.
type Service struct {
	repo       Repository
	codec      *TokenCodec
	resolver   *AccessResolver
	validator  *TokenValidator
	verifier   *PermissionVerifier
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, codec *TokenCodec, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		codec:      codec,
		resolver:   NewAccessResolver(repo),
		validator:  NewTokenValidator(codec, repo),
		verifier:   NewPermissionVerifier(repo, logger),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login verifies credentials and issues a token. Failures are reported
// without distinguishing which factor was wrong.
func (s *Service) Login(dto LoginDTO) (*AccessToken, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByIdentifier(dto.Identifier)
	if err != nil {
		return nil, internal.NewInternalError("login lookup failed", err)
	}
	if user == nil || !VerifyPassword(user.PasswordHash, dto.Password) {
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return token, nil
}

func (s *Service) ValidateToken(bearer string) (*Principal, error) {
	return s.validator.Validate(bearer)
}

func (s *Service) ValidateTempPasswordToken(bearer string) (*Principal, error) {
	return s.validator.ValidateTempPassword(bearer)
}

// ChangePassword stores the new digest, clears the temp-password state and
// bumps password_version in one transaction, then re-issues a token against
// the fresh row.
func (s *Service) ChangePassword(userID int64, dto ChangePasswordDTO) (*AccessToken, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, internal.NewInternalError("change password lookup failed", err)
	}
	if user == nil {
		return nil, internal.NewNotFoundError("user", userID)
	}

	hash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("password hashing failed", err)
	}

	if err := s.repo.UpdatePassword(userID, hash); err != nil {
		return nil, internal.NewInternalError("password update failed", err)
	}

	user, err = s.repo.GetUserByID(userID)
	if err != nil || user == nil {
		return nil, internal.NewInternalError("reload after password change failed", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("password changed", "user_id", userID, "password_version", user.PasswordVersion)
	return token, nil
}

func (s *Service) VerifyPermission(functionID int64, principal *Principal) (bool, error) {
	return s.verifier.Verify(functionID, principal)
}

func (s *Service) issueToken(user *User) (*AccessToken, error) {
	claims, err := s.resolver.Resolve(user)
	if err != nil {
		return nil, internal.NewInternalError("access resolution failed", err)
	}

	signed, err := s.codec.Encode(claims)
	if err != nil {
		return nil, internal.NewInternalError("token signing failed", err)
	}

	return &AccessToken{Claims: *claims, Token: signed}, nil
}

// IssueTokenFor re-resolves grants and signs a fresh token for an already
// authenticated user, used by admin flows that hand tokens back after
// mutating a user record.
func (s *Service) IssueTokenFor(userID int64) (*AccessToken, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, internal.NewInternalError("token reissue lookup failed", err)
	}
	if user == nil {
		return nil, internal.NewNotFoundError("user", userID)
	}
	return s.issueToken(user)
}

var _ ServiceAPI = (*Service)(nil)
