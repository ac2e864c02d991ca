// Package service implements the presence registry, the moderation command
// bus, the ledger/ban reconciler and the lock controller. All state lives in
// the injected key-value store; services hold no cross-request memory, so
// any number of replicas can serve the same fleet.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openblox/liveops/internal/store"
)

// Store keys for the shared singleton records.
const (
	keyServerIndex   = "server_index"
	keyCommandIndex  = "command_index"
	keyModerationLog = "moderation_log"
	keyBanState      = "ban_state"
	keyGameLock      = "game_lock"
)

// load reads and decodes a JSON record. Absent keys and records that fail to
// parse both report ok=false without error: a corrupt shared record is
// indistinguishable from a missing one and heals on the next write.
func load(ctx context.Context, st store.Store, key string, out any) (bool, error) {
	raw, err := st.Get(ctx, key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, nil
	}
	return true, nil
}

func save(ctx context.Context, st store.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return st.Put(ctx, key, raw)
}

func saveTTL(ctx context.Context, st store.Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return st.PutTTL(ctx, key, raw, ttl)
}
