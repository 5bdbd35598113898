package tracker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiState struct {
	State struct {
		Players []struct {
			Name  string `json:"name"`
			Score int    `json:"score"`
			Phase int    `json:"phase"`
		} `json:"players"`
		DealerIndex int    `json:"dealerIndex"`
		Dealer      string `json:"dealer"`
		CanUndo     bool   `json:"canUndo"`
	} `json:"state"`
	Error string `json:"error"`
}

func newTestRouter(t *testing.T, guard func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewHTTPHandler(newTestTracker(t, nil), guard).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, apiState) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var out apiState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestHTTP_SetupAndRound(t *testing.T) {
	h := newTestRouter(t, nil)

	code, out := do(t, h, http.MethodPost, "/api/setup", `{"names":["Ann","Bob","Cy"],"dealer":"Ann"}`)
	require.Equal(t, http.StatusOK, code, out.Error)
	require.Len(t, out.State.Players, 3)

	code, out = do(t, h, http.MethodPost, "/api/rounds", `{"entries":[
		{"name":"Ann","score":"","passedPhase":true},
		{"name":"Bob","score":"20","passedPhase":false},
		{"name":"Cy","hand":["R7","W","S"],"passedPhase":true}
	]}`)
	require.Equal(t, http.StatusOK, code, out.Error)
	assert.Equal(t, 2, out.State.Players[0].Phase)
	assert.Equal(t, 20, out.State.Players[1].Score)
	assert.Equal(t, 45, out.State.Players[2].Score)
	assert.Equal(t, "Bob", out.State.Dealer)
	assert.True(t, out.State.CanUndo)

	code, out = do(t, h, http.MethodPost, "/api/rounds/undo", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ann", out.State.Dealer)
	assert.Equal(t, 0, out.State.Players[2].Score)
}

func TestHTTP_RoundValidation(t *testing.T) {
	h := newTestRouter(t, nil)
	code, _ := do(t, h, http.MethodPost, "/api/setup", `{"names":["Ann","Bob"],"dealer":"Bob"}`)
	require.Equal(t, http.StatusOK, code)

	code, out := do(t, h, http.MethodPost, "/api/rounds", `{"entries":[{"name":"Ann","score":"12a"}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out.Error, "whole number")

	code, _ = do(t, h, http.MethodPost, "/api/rounds", `{"entries":[{"name":"Ann","score":"0"},{"name":"Bob","score":""}]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodPost, "/api/rounds", `{"entries":[{"name":"Ann","hand":["X9"]}]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = do(t, h, http.MethodPost, "/api/rounds", `{"entries":[{"name":"Ann","hand":["W","W","W","W","W","W","W","W","W"]}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out.Error, "deck")
	assert.False(t, out.State.CanUndo)

	code, _ = do(t, h, http.MethodPost, "/api/rounds", `{"bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHTTP_PlayerManagement(t *testing.T) {
	h := newTestRouter(t, nil)
	code, _ := do(t, h, http.MethodPost, "/api/setup", `{"names":["Ann","Bob"],"dealer":"Bob"}`)
	require.Equal(t, http.StatusOK, code)

	code, out := do(t, h, http.MethodPost, "/api/players", `{"name":""}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Player 3", out.State.Players[2].Name)

	code, _ = do(t, h, http.MethodPost, "/api/players", `{"name":"Ann"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, out = do(t, h, http.MethodPatch, "/api/players/Player%203", `{"name":"Cy","score":"12"}`)
	require.Equal(t, http.StatusOK, code, out.Error)
	assert.Equal(t, "Cy", out.State.Players[2].Name)
	assert.Equal(t, 12, out.State.Players[2].Score)

	code, out = do(t, h, http.MethodPost, "/api/players/Cy/move", `{"direction":-1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Cy", out.State.Players[1].Name)

	code, out = do(t, h, http.MethodPut, "/api/players/names", `{"names":["Ann","Cyd","Bobby"]}`)
	require.Equal(t, http.StatusOK, code, out.Error)
	assert.Equal(t, "Bobby", out.State.Players[2].Name)

	code, out = do(t, h, http.MethodPut, "/api/dealer", `{"name":"Cyd"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, out.State.DealerIndex)

	code, out = do(t, h, http.MethodPost, "/api/dealer/next", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Bobby", out.State.Dealer)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/players/Bobby", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var removed struct {
		DealerRole string `json:"dealerRole"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
	assert.Equal(t, "current", removed.DealerRole)

	code, _ = do(t, h, http.MethodDelete, "/api/players/Bobby", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHTTP_SaveLoadReset(t *testing.T) {
	h := newTestRouter(t, nil)

	code, _ := do(t, h, http.MethodPost, "/api/load", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodPost, "/api/setup", `{"names":["Ann","Bob"],"dealer":"Bob"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodPost, "/api/save", "")
	require.Equal(t, http.StatusOK, code)

	code, out := do(t, h, http.MethodPost, "/api/new-game", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out.State.Players)

	code, out = do(t, h, http.MethodPost, "/api/load", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out.State.Players, 2)
	assert.Equal(t, "Bob", out.State.Dealer)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasSavedGame":true`)
}

func TestHTTP_GuardProtectsMutations(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusUnauthorized, "invalid session token")
		})
	}
	h := newTestRouter(t, deny)

	code, _ := do(t, h, http.MethodPost, "/api/setup", `{"names":["Ann","Bob"],"dealer":"Ann"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
