package domain

import (
	"strconv"
	"time"
)

// Player is one connected player inside a server snapshot. It has no identity
// or lifecycle of its own; it exists only as part of the snapshot that
// reported it.
type Player struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Team        string `json:"team,omitempty"`
}

// Name returns the label players are sorted by: display name, falling back to
// username.
func (p Player) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// ServerSnapshot is one game process's point-in-time report of who is
// connected. Each publish overwrites the previous snapshot wholesale; a
// snapshot is live only while now − UpdatedAt is within the presence TTL.
type ServerSnapshot struct {
	PlaceID   int64     `json:"placeId"`
	JobID     string    `json:"jobId"`
	UpdatedAt time.Time `json:"updatedAt"`
	Players   []Player  `json:"players"`
}

// Key returns the store key this snapshot lives under.
func (s ServerSnapshot) Key() string {
	return ServerKey(s.PlaceID, s.JobID)
}

// ServerKey derives the snapshot store key for a place/job pair.
func ServerKey(placeID int64, jobID string) string {
	return "srv:" + strconv.FormatInt(placeID, 10) + ":" + jobID
}

// ServerIndex maps live snapshot keys to the time they were last published.
// It is a single shared store record, pruned of stale entries on rewrite.
type ServerIndex map[string]time.Time

// Prune removes entries whose snapshot has passed the TTL. Returns the number
// of entries dropped.
func (idx ServerIndex) Prune(now time.Time, ttl time.Duration) int {
	dropped := 0
	for key, seen := range idx {
		if now.Sub(seen) > ttl {
			delete(idx, key)
			dropped++
		}
	}
	return dropped
}

// AggregatedPlayer is a player as seen in the global presence view, annotated
// with the place they were observed in.
type AggregatedPlayer struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Team        string `json:"team,omitempty"`
	PlaceID     int64  `json:"placeId"`
}

// Name mirrors Player.Name for sort ordering.
func (p AggregatedPlayer) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}
