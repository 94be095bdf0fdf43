package league

import (
	"time"

	"github.com/google/uuid"
)

type PlayerStatus string

const (
	PlayerPending      PlayerStatus = "pending"
	PlayerApproved     PlayerStatus = "approved"
	PlayerRejected     PlayerStatus = "rejected"
	PlayerUnregistered PlayerStatus = "unregistered"
)

const DefaultRating = 1200.0

type Player struct {
	ID                 uuid.UUID    `db:"id"`
	Name               string       `db:"name"`
	PasswordHash       string       `db:"password_hash"`
	Rating             float64      `db:"rating"`
	Age                int          `db:"age"`
	Weight             float64      `db:"weight"`
	Status             PlayerStatus `db:"status"`
	RegistrationDate   time.Time    `db:"registration_date"`
	UnregistrationDate *time.Time   `db:"unregistration_date"`
}

// IsActive reports whether the player may still hold their name and log in.
// Only approved players may take part in challenges, matches or tournaments.
func (p *Player) IsActive() bool {
	return p.Status == PlayerPending || p.Status == PlayerApproved
}

func (p *Player) IsApproved() bool {
	return p.Status == PlayerApproved
}

// CurrentAge is the registration-time age plus full years elapsed since.
func (p *Player) CurrentAge(now time.Time) int {
	days := now.Sub(p.RegistrationDate).Hours() / 24
	return p.Age + int(days/365.25)
}
