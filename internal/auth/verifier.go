package auth

import (
	"fmt"
	"log/slog"
)

// PermissionVerifier decides whether a principal may invoke a protected
// function. Grants are read live on every call, never from token claims, so
// a revocation takes effect immediately even for tokens that remain
// otherwise valid.
type PermissionVerifier struct {
	repo   Repository
	logger *slog.Logger
}

func NewPermissionVerifier(repo Repository, logger *slog.Logger) *PermissionVerifier {
	return &PermissionVerifier{repo: repo, logger: logger}
}

// Verify resolves the function's linked permission and checks the two grant
// paths. A function with no permission link is open: any authenticated
// principal passes. Grants are matched by permission NAME, preserving the
// behavior of the deployed system.
func (pv *PermissionVerifier) Verify(functionID int64, principal *Principal) (bool, error) {
	perm, err := pv.repo.PermissionForFunction(functionID)
	if err != nil {
		return false, fmt.Errorf("permission for function %d: %w", functionID, err)
	}
	if perm == nil {
		// Unmapped function: default-allow.
		return true, nil
	}

	if !perm.IsActive {
		return false, nil
	}

	// Group membership comes from the live user row, not the token.
	user, err := pv.repo.GetUserByID(principal.ID)
	if err != nil {
		return false, fmt.Errorf("load user %d: %w", principal.ID, err)
	}
	if user == nil {
		return false, nil
	}

	if user.UserGroupID != nil {
		ok, err := pv.repo.GroupHasPermissionNamed(*user.UserGroupID, perm.Name)
		if err != nil {
			return false, fmt.Errorf("group grant lookup: %w", err)
		}
		if ok {
			return true, nil
		}
	}

	ok, err := pv.repo.UserHasPermissionNamed(user.ID, perm.Name)
	if err != nil {
		return false, fmt.Errorf("user grant lookup: %w", err)
	}
	if !ok {
		pv.logger.Warn("permission denied",
			"user_id", user.ID,
			"function_id", functionID,
			"permission", perm.Name)
	}
	return ok, nil
}
