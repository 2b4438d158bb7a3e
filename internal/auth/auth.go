package auth

import (
	"context"

	"github.com/frahmantamala/admin-access/internal"
)

// User is the engine's view of a credential-store row. PasswordTemp carries
// the digest of an active temporary password; non-nil means the account is in
// the forced password-change state.
type User struct {
	ID              int64
	Username        string
	FirstName       string
	LastName        string
	Email           *string
	Phone           *string
	PasswordHash    string
	PasswordTemp    *string
	PasswordVersion int
	AccessVersion   int
	IsActive        bool
	UserGroupID     *int64
}

// Claims is the denormalized authorization bundle signed into a bearer token.
// Exp is an application-level string timestamp, deliberately separate from
// the codec's native expiry so claims stay decodable past expiration and the
// validator can report the precise rejection reason.
type Claims struct {
	ID              int64               `json:"id"`
	Name            string              `json:"name"`
	Email           *string             `json:"email"`
	Phone           *string             `json:"phone"`
	PasswordTemp    bool                `json:"password_temp"`
	PasswordVersion int                 `json:"password_version"`
	AccessVersion   int                 `json:"access_version"`
	UserGroup       *int64              `json:"user_group"`
	Apps            []string            `json:"apps"`
	Views           []string            `json:"views"`
	AppsViews       map[string][]string `json:"apps_views"`
	Exp             string              `json:"exp"`
}

// Principal is the authenticated identity used for the remainder of a
// request. It carries the claim payload as validated, not a fresh read.
type Principal = Claims

// AccessToken is the login/change-password response: the resolved claim
// bundle plus its signed form.
type AccessToken struct {
	Claims
	Token string `json:"access_token"`
}

// RejectionReason is the outcome of a failed token validation. Reasons are
// distinguishable internally for logging; most share a generic caller-facing
// message so a presented token leaks nothing about account state.
type RejectionReason string

const (
	RejectedBadSignature         RejectionReason = "bad_signature"
	RejectedUserNotFound         RejectionReason = "user_not_found"
	RejectedInactive             RejectionReason = "inactive"
	RejectedPasswordTemp         RejectionReason = "password_temp"
	RejectedStaleAccessVersion   RejectionReason = "stale_access_version"
	RejectedStalePasswordVersion RejectionReason = "stale_password_version"
	RejectedExpired              RejectionReason = "expired"
)

// TokenRejectedError is returned whenever a presented token fails
// validation, carrying the precise reason.
type TokenRejectedError struct {
	Reason RejectionReason
}

func (e *TokenRejectedError) Error() string {
	return "token rejected: " + string(e.Reason)
}

// AppErr maps the rejection onto the caller-facing taxonomy. Only the
// temp-password and stale-version cases get distinct prompts; everything
// else is a generic 401.
func (e *TokenRejectedError) AppErr() *internal.AppError {
	switch e.Reason {
	case RejectedPasswordTemp:
		return internal.NewUnauthorizedError("password change required", internal.ErrCodePasswordTemp)
	case RejectedStaleAccessVersion, RejectedStalePasswordVersion:
		return internal.NewUnauthorizedError("please sign in again", internal.ErrCodeStaleToken)
	default:
		return internal.NewUnauthorizedError("could not validate credentials", internal.ErrCodeTokenRejected)
	}
}

// AppRef is an app row as seen by the access resolver, in grant order.
type AppRef struct {
	ID   int64
	Name string
}

// PermissionRef is the permission linked to a function, as seen by the
// verifier.
type PermissionRef struct {
	ID       int64
	Name     string
	IsActive bool
}

// Repository is the credential-store surface the engine needs. Lookups
// return (nil, nil) when no row matches; errors are reserved for store
// faults.
type Repository interface {
	GetUserByID(id int64) (*User, error)
	GetUserByIdentifier(identifier string) (*User, error)

	ActiveAppsForUser(userID int64) ([]AppRef, error)
	ActiveViewNamesForUser(userID int64) ([]string, error)
	ActiveViewNamesForApp(appID int64) ([]string, error)

	PermissionForFunction(functionID int64) (*PermissionRef, error)
	GroupHasPermissionNamed(groupID int64, name string) (bool, error)
	UserHasPermissionNamed(userID int64, name string) (bool, error)

	// UpdatePassword stores the new digest, clears any temporary password
	// and increments password_version, all in one transaction.
	UpdatePassword(userID int64, passwordHash string) error
}

// ServiceAPI is what transport binds against.
type ServiceAPI interface {
	Login(dto LoginDTO) (*AccessToken, error)
	ValidateToken(bearer string) (*Principal, error)
	ValidateTempPasswordToken(bearer string) (*Principal, error)
	ChangePassword(userID int64, dto ChangePasswordDTO) (*AccessToken, error)
	VerifyPermission(functionID int64, principal *Principal) (bool, error)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(internal.ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, internal.ContextPrincipalKey, p)
}
