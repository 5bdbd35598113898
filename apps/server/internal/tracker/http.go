package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"phase10-tracker/card"
	"phase10-tracker/phase10"
)

type HTTPHandler struct {
	tracker *Tracker
	guard   func(http.Handler) http.Handler
}

type errorResponse struct {
	Error string `json:"error"`
}

type setupRequest struct {
	Names  []string `json:"names"`
	Dealer string   `json:"dealer"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type namesRequest struct {
	Names []string `json:"names"`
}

type moveRequest struct {
	Direction int `json:"direction"`
}

type editRequest struct {
	Name  *string `json:"name"`
	Score *string `json:"score"`
	Phase *string `json:"phase"`
}

type roundEntryRequest struct {
	Name        string `json:"name"`
	Score       string `json:"score"`
	PassedPhase bool   `json:"passedPhase"`
	// Hand lists the cards left in hand ("R7", "W", "S"). When set it
	// replaces Score with the card penalty total.
	Hand []string `json:"hand,omitempty"`
}

type roundRequest struct {
	Entries []roundEntryRequest `json:"entries"`
}

// NewHTTPHandler serves the tracker API. guard wraps every mutating route;
// nil leaves them open.
func NewHTTPHandler(t *Tracker, guard func(http.Handler) http.Handler) *HTTPHandler {
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	return &HTTPHandler{tracker: t, guard: guard}
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleState)

		r.Group(func(r chi.Router) {
			r.Use(h.guard)
			r.Post("/setup", h.handleSetup)
			r.Post("/players", h.handleAddPlayer)
			r.Put("/players/names", h.handleRenamePlayers)
			r.Delete("/players/{name}", h.handleRemovePlayer)
			r.Patch("/players/{name}", h.handleEditPlayer)
			r.Post("/players/{name}/move", h.handleMovePlayer)
			r.Put("/dealer", h.handleSetDealer)
			r.Post("/dealer/next", h.handleNextDealer)
			r.Post("/rounds", h.handleSubmitRound)
			r.Post("/rounds/undo", h.handleUndo)
			r.Post("/save", h.handleSave)
			r.Post("/load", h.handleLoad)
			r.Post("/new-game", h.handleReset)
			r.Post("/reset", h.handleReset)
		})
	})
}

func (h *HTTPHandler) handleState(w http.ResponseWriter, r *http.Request) {
	saved, err := h.tracker.HasSavedGame(r.Context())
	if err != nil {
		h.tracker.log.WithError(err).Warn("check save slot failed")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":        h.tracker.View(),
		"hasSavedGame": saved,
	})
}

func (h *HTTPHandler) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, h.tracker.StartGame(r.Context(), req.Names, req.Dealer))
}

func (h *HTTPHandler) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name, err := h.tracker.AddPlayer(r.Context(), req.Name)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"name":  name,
		"state": h.tracker.View(),
	})
}

func (h *HTTPHandler) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	role := h.tracker.DealerRole(name)
	if err := h.tracker.RemovePlayer(r.Context(), name); err != nil {
		h.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"removed":    name,
		"dealerRole": role,
		"state":      h.tracker.View(),
	})
}

func (h *HTTPHandler) handleEditPlayer(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.tracker.EditPlayer(r.Context(), chi.URLParam(r, "name"), PlayerEdit{
		Name:  req.Name,
		Score: req.Score,
		Phase: req.Phase,
	})
	h.respond(w, err)
}

func (h *HTTPHandler) handleRenamePlayers(w http.ResponseWriter, r *http.Request) {
	var req namesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, h.tracker.RenamePlayers(r.Context(), req.Names))
}

func (h *HTTPHandler) handleMovePlayer(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, h.tracker.MovePlayer(r.Context(), chi.URLParam(r, "name"), req.Direction))
}

func (h *HTTPHandler) handleSetDealer(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.respond(w, h.tracker.SetDealer(r.Context(), req.Name))
}

func (h *HTTPHandler) handleNextDealer(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.tracker.NextDealer(r.Context()))
}

func (h *HTTPHandler) handleSubmitRound(w http.ResponseWriter, r *http.Request) {
	var req roundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entries, err := roundEntries(req.Entries)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	res, err := h.tracker.SubmitRound(r.Context(), entries)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"completed": res.Completed,
		"gameOver":  res.GameOver(),
		"tieBreak":  res.TieBreak,
		"winner":    res.Winner,
		"state":     h.tracker.View(),
	})
}

func roundEntries(in []roundEntryRequest) ([]phase10.RoundEntry, error) {
	out := make([]phase10.RoundEntry, 0, len(in))
	for _, e := range in {
		var score int
		if len(e.Hand) > 0 {
			hand, err := card.ParseList(e.Hand)
			if err == nil {
				err = hand.CheckAgainstDeck()
			}
			if err != nil {
				return nil, phase10.ErrInvalidState(fmt.Sprintf("%s: %v", e.Name, err))
			}
			score = hand.PenaltyPoints()
		} else {
			v, err := phase10.ParseRoundScore(e.Score)
			if err != nil {
				return nil, err
			}
			score = v
		}
		out = append(out, phase10.RoundEntry{
			Name:        e.Name,
			Score:       score,
			PassedPhase: e.PassedPhase,
		})
	}
	return out, nil
}

func (h *HTTPHandler) handleUndo(w http.ResponseWriter, r *http.Request) {
	undone, err := h.tracker.UndoLastRound(r.Context())
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"undone": undone,
		"state":  h.tracker.View(),
	})
}

func (h *HTTPHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.tracker.Save(r.Context()))
}

func (h *HTTPHandler) handleLoad(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.tracker.Load(r.Context()))
}

func (h *HTTPHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.tracker.Reset(r.Context()))
}

func (h *HTTPHandler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state": h.tracker.View(),
	})
}

func (h *HTTPHandler) writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSavedGame):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, phase10.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, phase10.ErrPlayerExists),
		errors.Is(err, phase10.ErrDuplicateName),
		errors.Is(err, phase10.ErrTableFull):
		writeError(w, http.StatusConflict, err.Error())
	case phase10.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.tracker.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: strings.TrimSpace(msg)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
