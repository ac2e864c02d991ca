package domain

import "time"

// GameLock is the global lock singleton. Absence from the store means
// unlocked. Writes are last-write-wins across identities.
type GameLock struct {
	Locked bool      `json:"locked"`
	By     string    `json:"by,omitempty"`
	At     time.Time `json:"at"`
}

// CooldownMark records when an identity last toggled the lock. It is stored
// under a per-identity key with the cooldown TTL.
type CooldownMark struct {
	At time.Time `json:"at"`
}

// CooldownKey derives the store key for an identity's lock cooldown mark.
func CooldownKey(identity string) string {
	return "lockcd:" + identity
}
