package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActionValid(t *testing.T) {
	assert.True(t, ActionKick.Valid())
	assert.True(t, ActionBan.Valid())
	assert.True(t, ActionUnban.Valid())
	assert.False(t, Action("mute").Valid())
	assert.False(t, Action("").Valid())
}

func TestServerKey(t *testing.T) {
	assert.Equal(t, "srv:100:abc", ServerKey(100, "abc"))
}

func TestPlayerNameFallsBackToUsername(t *testing.T) {
	p := Player{Username: "builderman", DisplayName: ""}
	assert.Equal(t, "builderman", p.Name())

	p.DisplayName = "Builder"
	assert.Equal(t, "Builder", p.Name())
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", Clip("abc", 5))
	assert.Equal(t, "ab", Clip("abcd", 2))
}

func TestServerIndexPrune(t *testing.T) {
	now := time.Now()
	idx := ServerIndex{
		"srv:1:fresh": now.Add(-time.Minute),
		"srv:1:stale": now.Add(-5 * time.Minute),
	}

	dropped := idx.Prune(now, 3*time.Minute)

	assert.Equal(t, 1, dropped)
	assert.Contains(t, idx, "srv:1:fresh")
	assert.NotContains(t, idx, "srv:1:stale")
}

func TestCommandIndexPrune(t *testing.T) {
	now := time.Now()
	idx := CommandIndex{
		"live":    now.Add(-time.Minute),
		"expired": now.Add(-11 * time.Minute),
	}

	dropped := idx.Prune(now, 10*time.Minute)

	assert.Equal(t, 1, dropped)
	assert.Contains(t, idx, "live")
	assert.NotContains(t, idx, "expired")
}
