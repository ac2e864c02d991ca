package domain

import "time"

// Action is a moderation command verb.
type Action string

const (
	ActionKick  Action = "kick"
	ActionBan   Action = "ban"
	ActionUnban Action = "unban"
)

// Valid reports whether a is a known moderation action.
func (a Action) Valid() bool {
	switch a {
	case ActionKick, ActionBan, ActionUnban:
		return true
	}
	return false
}

// Status is the ledger lifecycle state of a moderation command.
type Status string

const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

// Field length caps applied at enqueue time.
const (
	MaxReasonLen      = 180
	MaxIssuedByLen    = 60
	MaxUsernameLen    = 40
	MaxDisplayNameLen = 60
)

// Clip truncates s to at most n bytes.
func Clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// ModerationCommand is an administrative intent awaiting pickup by a game
// process. It self-expires after the command TTL; issuance alone never
// changes ban state.
type ModerationCommand struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Action    Action    `json:"action"`
	UserID    int64     `json:"userId"`
	Reason    string    `json:"reason,omitempty"`
	IssuedBy  string    `json:"issuedBy,omitempty"`

	// Optional target labels carried for display only.
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Key returns the store key this command lives under.
func (c ModerationCommand) Key() string {
	return CommandKey(c.ID)
}

// CommandKey derives the store key for a command id.
func CommandKey(id string) string {
	return "cmd:" + id
}

// CommandIndex maps live command ids to their creation time. Entries older
// than the command TTL are dropped on poll, which is the only expiry
// mechanism for never-acknowledged commands.
type CommandIndex map[string]time.Time

// Prune removes entries older than the TTL. Returns the number dropped.
func (idx CommandIndex) Prune(now time.Time, ttl time.Duration) int {
	dropped := 0
	for id, created := range idx {
		if now.Sub(created) > ttl {
			delete(idx, id)
			dropped++
		}
	}
	return dropped
}

// LedgerEntry is one row of the bounded moderation log: the command as
// issued, plus its acknowledgment outcome once a game process reports back.
type LedgerEntry struct {
	ModerationCommand
	Status  Status     `json:"status"`
	AckedAt *time.Time `json:"ackedAt,omitempty"`
}

// BanRecord is the reconciled, acknowledgment-confirmed ban for one user.
type BanRecord struct {
	UserID        int64     `json:"userId"`
	Reason        string    `json:"reason,omitempty"`
	IssuedBy      string    `json:"issuedBy,omitempty"`
	BannedAt      time.Time `json:"bannedAt"`
	LastCommandID string    `json:"lastCommandId"`
}

// BanState maps user id to the ban currently in force. It is mutated only by
// confirmed ban/unban acknowledgments, never at issue time.
type BanState map[int64]BanRecord
