package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openblox/liveops/internal/auth"
	"github.com/openblox/liveops/internal/service"
	"github.com/openblox/liveops/internal/store"
)

const (
	processKey = "proc-secret"
	adminKey   = "adm-secret"
	operator   = "root-admin"
)

func newTestRouter(t *testing.T, historyAdmin bool) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()

	presence := service.NewPresenceService(st, 3*time.Minute, 15*time.Second, logger)
	ledger := service.NewLedgerService(st, 100, operator, logger)
	commands := service.NewCommandService(st, ledger, nil, 10*time.Minute, logger)
	lock := service.NewLockService(st, 30*time.Second, nil, logger)

	return NewRouter(Deps{
		Presence:             presence,
		Commands:             commands,
		Ledger:               ledger,
		Lock:                 lock,
		Secrets:              auth.Secrets{ProcessKey: processKey, AdminKey: adminKey},
		HistoryRequiresAdmin: historyAdmin,
		Logger:               logger,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func asProcess() map[string]string {
	return map[string]string{"X-API-Key": processKey}
}

func asAdmin() map[string]string {
	return map[string]string{"X-Admin-Key": adminKey}
}

func TestUpdateRequiresProcessSecret(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "POST", "/update", `{"placeId":100,"players":[]}`, nil)
	assert.Equal(t, 401, rec.Code)

	rec = do(t, h, "POST", "/update", `{"placeId":100,"players":[]}`, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, 401, rec.Code)
}

func TestUpdateValidation(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "POST", "/update", `{"jobId":"abc","players":[]}`, asProcess())
	assert.Equal(t, 400, rec.Code)

	rec = do(t, h, "POST", "/update", `{"placeId":100}`, asProcess())
	assert.Equal(t, 400, rec.Code)

	rec = do(t, h, "POST", "/update", `not json`, asProcess())
	assert.Equal(t, 400, rec.Code)
}

func TestPublishAndAggregateFlow(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "POST", "/update",
		`{"placeId":100,"jobId":"abc","players":[{"userId":1,"username":"alice","displayName":"Alice"}]}`,
		asProcess())
	require.Equal(t, 200, rec.Code)

	rec = do(t, h, "GET", "/players", "", nil)
	require.Equal(t, 200, rec.Code)

	var res struct {
		TotalPlayers int `json:"totalPlayers"`
		Players      []struct {
			UserID  int64 `json:"userId"`
			PlaceID int64 `json:"placeId"`
		} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 1, res.TotalPlayers)
	assert.Equal(t, int64(100), res.Players[0].PlaceID)
}

func TestModerateRequiresAdminSecret(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "POST", "/admin/moderate", `{"action":"kick","userId":1}`, nil)
	assert.Equal(t, 401, rec.Code)

	// The process secret is not valid on admin routes.
	rec = do(t, h, "POST", "/admin/moderate", `{"action":"kick","userId":1}`, asProcess())
	assert.Equal(t, 401, rec.Code)
}

func TestModerateValidation(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "POST", "/admin/moderate", `{"action":"obliterate","userId":1}`, asAdmin())
	assert.Equal(t, 400, rec.Code)

	rec = do(t, h, "POST", "/admin/moderate", `{"action":"ban","userId":0}`, asAdmin())
	assert.Equal(t, 400, rec.Code)
}

func TestBanLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter(t, false)

	// Enqueue a ban.
	rec := do(t, h, "POST", "/admin/moderate",
		`{"action":"ban","userId":42,"reason":"exploiting","issuedBy":"mod-1"}`, asAdmin())
	require.Equal(t, 200, rec.Code)
	var enq struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enq))
	require.NotEmpty(t, enq.ID)

	// A game process polls it.
	rec = do(t, h, "GET", "/commands", "", asProcess())
	require.Equal(t, 200, rec.Code)
	var poll struct {
		Commands []struct {
			ID     string `json:"id"`
			Action string `json:"action"`
		} `json:"commands"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &poll))
	require.Len(t, poll.Commands, 1)
	assert.Equal(t, enq.ID, poll.Commands[0].ID)

	// Not yet banned: issuance alone never changes ban state.
	rec = do(t, h, "GET", "/moderated", "", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	// Acknowledge success.
	rec = do(t, h, "POST", "/ack",
		`{"id":"`+enq.ID+`","ok":true,"action":"ban","userId":42}`, asProcess())
	require.Equal(t, 200, rec.Code)

	// Now banned.
	rec = do(t, h, "GET", "/moderated", "", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":42`)

	// Command is gone from subsequent polls.
	rec = do(t, h, "GET", "/commands", "", asProcess())
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"commands":[]`)

	// History shows the applied entry.
	rec = do(t, h, "GET", "/history?id="+enq.ID, "", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"applied"`)
}

func TestHistoryUnknownID(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "GET", "/history?id=no-such-id", "", nil)
	assert.Equal(t, 404, rec.Code)
}

func TestHistoryAdminPolicy(t *testing.T) {
	h := newTestRouter(t, true)

	rec := do(t, h, "GET", "/history", "", nil)
	assert.Equal(t, 401, rec.Code)

	rec = do(t, h, "GET", "/history", "", asAdmin())
	assert.Equal(t, 200, rec.Code)
}

func TestLockStateAndCooldown(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "GET", "/lockState", "", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"locked":false`)

	rec = do(t, h, "POST", "/admin/setLock", `{"locked":true,"identity":"admin-1"}`, asAdmin())
	require.Equal(t, 200, rec.Code)

	// Second toggle by the same identity inside the cooldown window.
	rec = do(t, h, "POST", "/admin/setLock", `{"locked":false,"identity":"admin-1"}`, asAdmin())
	require.Equal(t, 429, rec.Code)
	retryAfter := rec.Header().Get("Retry-After")
	require.NotEmpty(t, retryAfter)
	assert.NotEqual(t, "0", retryAfter)

	// A different identity is unaffected.
	rec = do(t, h, "POST", "/admin/setLock", `{"locked":false,"identity":"admin-2"}`, asAdmin())
	assert.Equal(t, 200, rec.Code)

	rec = do(t, h, "GET", "/lockState", "", nil)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"locked":false`)
}

func TestClearLogsRestrictedIdentity(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "POST", "/admin/clearLogs", `{"identity":"impostor"}`, asAdmin())
	assert.Equal(t, 403, rec.Code)

	rec = do(t, h, "POST", "/admin/clearLogs", `{"identity":"`+operator+`"}`, asAdmin())
	assert.Equal(t, 200, rec.Code)
}

func TestPreflightAnsweredWithoutAuth(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "OPTIONS", "/update", "", nil)
	assert.Equal(t, 204, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
}
