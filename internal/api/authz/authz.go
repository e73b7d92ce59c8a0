package authz

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Member roles as issued by the identity provider.
const (
	RoleMember            = "MEMBER"
	RoleLeagueCoordinator = "LEAGUE_COORDINATOR"
	RoleAdmin             = "ADMIN"
)

// Member account statuses.
const (
	StatusActive   = "ACTIVE"
	StatusPending  = "PENDING"
	StatusInactive = "INACTIVE"
	StatusWaitlist = "WAITLIST"
)

// AuthMember is the caller identity resolved by the auth middleware.
// Authentication itself is an upstream concern; by the time a handler runs,
// this is the full trusted picture of who is calling.
type AuthMember struct {
	ID        string
	FirstName string
	LastName  string
	Role      string
	Status    string
}

type memberContextKey struct{}

func ContextWithMember(ctx context.Context, member *AuthMember) context.Context {
	return context.WithValue(ctx, memberContextKey{}, member)
}

// MemberFromContext retrieves the AuthMember stored in ctx.
// It returns nil if ctx is nil, if no member is stored, or if the stored
// value has a different type.
func MemberFromContext(ctx context.Context) *AuthMember {
	if ctx == nil {
		return nil
	}

	member, ok := ctx.Value(memberContextKey{}).(*AuthMember)
	if !ok {
		return nil
	}

	return member
}

// IsAdmin reports whether the given member holds the admin role.
func IsAdmin(member *AuthMember) bool {
	return member != nil && member.Role == RoleAdmin
}

// RequireMember returns the authenticated caller or ErrUnauthenticated.
func RequireMember(ctx context.Context) (*AuthMember, error) {
	member := MemberFromContext(ctx)
	if member == nil {
		return nil, ErrUnauthenticated
	}
	return member, nil
}

// RequireAdmin returns the caller if they hold the admin role.
func RequireAdmin(ctx context.Context) (*AuthMember, error) {
	member, err := RequireMember(ctx)
	if err != nil {
		return nil, err
	}
	if member.Role != RoleAdmin {
		return nil, ErrForbidden
	}
	return member, nil
}
