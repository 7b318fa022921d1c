package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"orevein/internal/energy"
	"orevein/internal/events"
	"orevein/internal/mining"
	"orevein/internal/store"
)

type MiningHandlers struct {
	coord *mining.Coordinator
	hub   *events.Hub
}

func NewMiningHandlers(coord *mining.Coordinator, hub *events.Hub) *MiningHandlers {
	return &MiningHandlers{coord: coord, hub: hub}
}

type startRequest struct {
	SceneID string `json:"scene_id"`
}

func (h *MiningHandlers) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SceneID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		metricMiningStartTotal.Add(1)
		res, err := h.coord.Start(r.Context(), player.ID, req.SceneID)
		if err != nil {
			metricMiningStartErrors.Add(1)
			writeMiningError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, res)
	}
}

func (h *MiningHandlers) Estimate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		metricMiningEstimateTotal.Add(1)
		est, err := h.coord.Peek(r.Context(), player.ID)
		if err != nil {
			writeMiningError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, est)
	}
}

func (h *MiningHandlers) Stop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		metricMiningStopTotal.Add(1)
		summary, err := h.coord.Stop(r.Context(), player.ID)
		if err != nil {
			metricMiningStopErrors.Add(1)
			writeMiningError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, summary)
	}
}

// Events returns the player's buffered notifications newer than ?after=.
// Clients poll with the last event id they saw.
func (h *MiningHandlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		evs := h.hub.ReplayAfter(player.ID, r.URL.Query().Get("after"))
		if evs == nil {
			evs = []events.PlayerEvent{}
		}
		WriteJSON(w, http.StatusOK, map[string]any{"items": evs})
	}
}

func writeMiningError(w http.ResponseWriter, err error) {
	var short *mining.ShortfallError
	switch {
	case errors.Is(err, mining.ErrLevelTooLow):
		WriteHTTPError(w, http.StatusForbidden, "auto_mine_locked")
	case errors.Is(err, mining.ErrSceneLocked):
		WriteHTTPError(w, http.StatusForbidden, "scene_locked")
	case errors.As(err, &short), errors.Is(err, energy.ErrInsufficient):
		WriteHTTPError(w, http.StatusConflict, "insufficient_energy")
	case errors.Is(err, mining.ErrAlreadyActive):
		WriteHTTPError(w, http.StatusConflict, "session_already_active")
	case errors.Is(err, mining.ErrNoActiveSession):
		WriteHTTPError(w, http.StatusNotFound, "no_active_session")
	case errors.Is(err, store.ErrNotFound):
		WriteHTTPError(w, http.StatusNotFound, "not_found")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
