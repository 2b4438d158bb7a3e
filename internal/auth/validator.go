package auth

import (
	"fmt"
	"time"
)

// TokenValidator cross-checks a presented token against the live user row.
// Version counters are the revocation mechanism: there is no blacklist, so a
// bumped password_version or access_version invalidates every token issued
// before the bump.
type TokenValidator struct {
	codec *TokenCodec
	repo  Repository
	now   func() time.Time
}

func NewTokenValidator(codec *TokenCodec, repo Repository) *TokenValidator {
	return &TokenValidator{
		codec: codec,
		repo:  repo,
		now:   time.Now,
	}
}

func reject(reason RejectionReason) error {
	return &TokenRejectedError{Reason: reason}
}

// Validate runs the full state machine, in order: signature, user existence,
// active flag, temp-password lockout, access_version, password_version,
// application-level expiry. On success the principal carries the claim
// payload, not a fresh read.
func (v *TokenValidator) Validate(bearer string) (*Principal, error) {
	claims, err := v.codec.Decode(bearer)
	if err != nil {
		return nil, reject(RejectedBadSignature)
	}

	user, err := v.repo.GetUserByID(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", claims.ID, err)
	}
	if user == nil {
		return nil, reject(RejectedUserNotFound)
	}

	if !user.IsActive {
		return nil, reject(RejectedInactive)
	}

	if user.PasswordTemp != nil || claims.PasswordTemp {
		return nil, reject(RejectedPasswordTemp)
	}

	// Zero means the claim was absent; counters start at 1 so it can never
	// match a live row.
	if claims.AccessVersion != user.AccessVersion {
		return nil, reject(RejectedStaleAccessVersion)
	}

	if claims.PasswordVersion != user.PasswordVersion {
		return nil, reject(RejectedStalePasswordVersion)
	}

	exp, err := ParseExpiry(claims)
	if err != nil {
		return nil, reject(RejectedBadSignature)
	}
	if exp.Before(v.now().UTC()) {
		return nil, reject(RejectedExpired)
	}

	return claims, nil
}

// ValidateTempPassword is the narrow variant scoping the forced
// password-change endpoint: it accepts a token only while the account is
// still in the temp-password state, with the active flag and password
// version holding. Everything else about the token is irrelevant here.
func (v *TokenValidator) ValidateTempPassword(bearer string) (*Principal, error) {
	claims, err := v.codec.Decode(bearer)
	if err != nil {
		return nil, reject(RejectedBadSignature)
	}

	user, err := v.repo.GetUserByID(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", claims.ID, err)
	}
	if user == nil {
		return nil, reject(RejectedUserNotFound)
	}

	if !user.IsActive {
		return nil, reject(RejectedInactive)
	}

	if claims.PasswordVersion != user.PasswordVersion {
		return nil, reject(RejectedStalePasswordVersion)
	}

	// The change already happened (temp cleared) or the token was never
	// issued for the forced-change flow.
	if user.PasswordTemp == nil || !claims.PasswordTemp {
		return nil, reject(RejectedStalePasswordVersion)
	}

	return claims, nil
}
