package schedule

import "github.com/crtc/courtbook/internal/api/authz"

// typePolicy is one row of the role × booking-type eligibility table.
type typePolicy struct {
	Allowed    bool
	WindowSkip bool
}

// eligibility makes the role/type rules exhaustive: every combination is
// listed rather than branched. A coordinator may skip the booking window only
// for LEAGUE bookings, an admin only for CLUB bookings; REGULAR bookings
// never skip the window.
var eligibility = map[string]map[ReservationType]typePolicy{
	authz.RoleMember: {
		TypeRegular: {Allowed: true},
		TypeLeague:  {},
		TypeClub:    {},
	},
	authz.RoleLeagueCoordinator: {
		TypeRegular: {Allowed: true},
		TypeLeague:  {Allowed: true, WindowSkip: true},
		TypeClub:    {},
	},
	authz.RoleAdmin: {
		TypeRegular: {Allowed: true},
		TypeLeague:  {},
		TypeClub:    {Allowed: true, WindowSkip: true},
	},
}

func policyFor(role string, rtype ReservationType) typePolicy {
	return eligibility[role][rtype]
}
