package schedule

import (
	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/db"
)

// CanManage reports whether member may cancel or edit the given reservation:
// the owner, any listed player (for REGULAR bookings), or any admin.
// Evaluated fresh on every action, never cached.
func CanManage(member *authz.AuthMember, reservation db.Reservation, players []db.ReservationPlayerRow) bool {
	if member == nil {
		return false
	}
	if member.Role == authz.RoleAdmin {
		return true
	}
	if reservation.MemberID == member.ID {
		return true
	}
	if reservation.Type == string(TypeRegular) {
		for _, player := range players {
			if player.MemberID == member.ID {
				return true
			}
		}
	}
	return false
}
